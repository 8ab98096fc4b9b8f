// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"fmt"

	"github.com/gogpu/rdraw"
)

// buffer is CPU memory standing in for GPU-visible vertex memory.
type buffer struct {
	dev       *Device
	id        uint64
	elemSize  int
	elemCount int
	usage     rdraw.BufferUsage
	data      []float32
	locked    bool
	destroyed bool
}

var _ rdraw.DeviceBuffer = (*buffer)(nil)

func (b *buffer) Lock() ([]float32, error) {
	if b.destroyed {
		return nil, fmt.Errorf("%w: lock of buffer %d", ErrUseAfterFree, b.id)
	}
	b.locked = true
	return b.data, nil
}

func (b *buffer) Unlock() {
	b.locked = false
}

func (b *buffer) ElemSize() int { return b.elemSize }
func (b *buffer) Len() int      { return b.elemCount }

func (b *buffer) bytes() int { return b.elemSize * b.elemCount }

// Destroy frees the buffer. A second Destroy is recorded as a fault.
func (b *buffer) Destroy() {
	b.dev.destroyBuffer(b)
}

// vec2 returns element i as an x/y pair.
func (b *buffer) vec2(i int) (float32, float32) {
	stride := b.elemSize / 4
	return b.data[i*stride], b.data[i*stride+1]
}
