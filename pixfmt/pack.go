// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pixfmt

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/exp/constraints"
)

// quantize reduces an 8-bit value to max+1 levels with rounding.
func quantize[T constraints.Unsigned](v uint8, max T) T {
	return T((uint32(v)*uint32(max) + 127) / 255)
}

// expand maps a quantized value back to 8 bits with rounding.
func expand[T constraints.Unsigned](q, max T) uint8 {
	return uint8((uint32(q)*255 + uint32(max)/2) / uint32(max))
}

// Encode stores one straight-alpha RGBA8 pixel in f at dst.
func (f Format) Encode(dst []byte, r, g, b, a uint8) {
	switch f {
	case RGBA8888:
		binary.LittleEndian.PutUint32(dst, uint32(r)<<24|uint32(g)<<16|uint32(b)<<8|uint32(a))
	case ABGR8888:
		binary.LittleEndian.PutUint32(dst, uint32(a)<<24|uint32(b)<<16|uint32(g)<<8|uint32(r))
	case ARGB8888:
		binary.LittleEndian.PutUint32(dst, uint32(a)<<24|uint32(r)<<16|uint32(g)<<8|uint32(b))
	case RGBA4444:
		var m uint16 = 15
		v := quantize(r, m)<<12 | quantize(g, m)<<8 | quantize(b, m)<<4 | quantize(a, m)
		binary.LittleEndian.PutUint16(dst, v)
	case ABGR1555:
		var m uint16 = 31
		v := quantize(a, uint16(1))<<15 | quantize(b, m)<<10 | quantize(g, m)<<5 | quantize(r, m)
		binary.LittleEndian.PutUint16(dst, v)
	case RGBA5551:
		var m uint16 = 31
		v := quantize(r, m)<<11 | quantize(g, m)<<6 | quantize(b, m)<<1 | quantize(a, uint16(1))
		binary.LittleEndian.PutUint16(dst, v)
	case RGB565:
		v := quantize(r, uint16(31))<<11 | quantize(g, uint16(63))<<5 | quantize(b, uint16(31))
		binary.LittleEndian.PutUint16(dst, v)
	}
}

// Decode loads one pixel stored in f at src.
func (f Format) Decode(src []byte) (r, g, b, a uint8) {
	switch f {
	case RGBA8888:
		v := binary.LittleEndian.Uint32(src)
		return uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)
	case ABGR8888:
		v := binary.LittleEndian.Uint32(src)
		return uint8(v), uint8(v >> 8), uint8(v >> 16), uint8(v >> 24)
	case ARGB8888:
		v := binary.LittleEndian.Uint32(src)
		return uint8(v >> 16), uint8(v >> 8), uint8(v), uint8(v >> 24)
	case RGBA4444:
		v := binary.LittleEndian.Uint16(src)
		var m uint16 = 15
		return expand(v>>12&m, m), expand(v>>8&m, m), expand(v>>4&m, m), expand(v&m, m)
	case ABGR1555:
		v := binary.LittleEndian.Uint16(src)
		var m uint16 = 31
		return expand(v&m, m), expand(v>>5&m, m), expand(v>>10&m, m), expand(v>>15, uint16(1))
	case RGBA5551:
		v := binary.LittleEndian.Uint16(src)
		var m uint16 = 31
		return expand(v>>11&m, m), expand(v>>6&m, m), expand(v>>1&m, m), expand(v&1, uint16(1))
	case RGB565:
		v := binary.LittleEndian.Uint16(src)
		return expand(v>>11, uint16(31)), expand(v>>5&63, uint16(63)), expand(v&31, uint16(31)), 255
	}
	return 0, 0, 0, 0
}

// FromRGBA converts tightly packed RGBA8 bytes (R, G, B, A in memory) to f.
func FromRGBA(f Format, rgba []byte) ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
	if len(rgba)%4 != 0 {
		return nil, fmt.Errorf("pixfmt: RGBA data length %d is not a multiple of 4", len(rgba))
	}
	n := len(rgba) / 4
	bpp := f.BytesPerPixel()
	out := make([]byte, n*bpp)
	for i := 0; i < n; i++ {
		p := rgba[i*4 : i*4+4]
		f.Encode(out[i*bpp:], p[0], p[1], p[2], p[3])
	}
	return out, nil
}

// ToRGBA converts pixels stored in f to tightly packed RGBA8 bytes.
func ToRGBA(f Format, data []byte) ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
	bpp := f.BytesPerPixel()
	if len(data)%bpp != 0 {
		return nil, fmt.Errorf("pixfmt: %v data length %d is not a multiple of %d", f, len(data), bpp)
	}
	n := len(data) / bpp
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		r, g, b, a := f.Decode(data[i*bpp:])
		out[i*4], out[i*4+1], out[i*4+2], out[i*4+3] = r, g, b, a
	}
	return out, nil
}

// Convert re-encodes pixels from one format to another.
func Convert(dst, src Format, data []byte) ([]byte, error) {
	if dst == src && dst.Valid() {
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}
	rgba, err := ToRGBA(src, data)
	if err != nil {
		return nil, err
	}
	return FromRGBA(dst, rgba)
}
