// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package pixfmt converts between RGBA8 read-back data and the packed pixel
// formats a renderer can hand back to its caller.
//
// Packed formats are named by channel order from the most significant bit,
// and stored little-endian: RGBA8888 is the 32-bit value 0xRRGGBBAA, so its
// bytes in memory are A, B, G, R.
package pixfmt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat is returned for the Unknown format and for values
// outside the defined set.
var ErrUnsupportedFormat = errors.New("pixfmt: unsupported format")

// Format identifies a packed pixel layout.
type Format int

const (
	Unknown Format = iota
	RGBA8888
	ABGR8888
	ARGB8888
	RGBA4444
	ABGR1555
	RGBA5551
	RGB565
)

var names = [...]string{
	Unknown:  "unknown",
	RGBA8888: "RGBA8888",
	ABGR8888: "ABGR8888",
	ARGB8888: "ARGB8888",
	RGBA4444: "RGBA4444",
	ABGR1555: "ABGR1555",
	RGBA5551: "RGBA5551",
	RGB565:   "RGB565",
}

// All lists every supported format.
var All = []Format{RGBA8888, ABGR8888, ARGB8888, RGBA4444, ABGR1555, RGBA5551, RGB565}

func (f Format) String() string {
	if f >= 0 && int(f) < len(names) {
		return names[f]
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	return f > Unknown && f <= RGB565
}

// Parse returns the format with the given name, ignoring case.
func Parse(s string) (Format, error) {
	for _, f := range All {
		if strings.EqualFold(s, f.String()) {
			return f, nil
		}
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// BytesPerPixel returns the storage size of one pixel.
func (f Format) BytesPerPixel() int {
	switch f {
	case RGBA8888, ABGR8888, ARGB8888:
		return 4
	case RGBA4444, ABGR1555, RGBA5551, RGB565:
		return 2
	}
	return 0
}

// HasAlpha reports whether the format stores an alpha channel.
func (f Format) HasAlpha() bool {
	return f.Valid() && f != RGB565
}

// Tolerance is the largest per-channel difference (R, G, B, A) between an
// 8-bit value and its value after a round trip through f.
func (f Format) Tolerance() [4]uint8 {
	switch f {
	case RGBA4444:
		return [4]uint8{9, 9, 9, 9}
	case ABGR1555, RGBA5551:
		return [4]uint8{5, 5, 5, 128}
	case RGB565:
		return [4]uint8{5, 3, 5, 255}
	}
	return [4]uint8{}
}
