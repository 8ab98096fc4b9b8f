// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/rdraw"
	"github.com/gogpu/wgpu/hal"
	"honnef.co/go/safeish"
)

// buffer is a GPU vertex buffer with a CPU shadow copy. Lock hands out the
// shadow; Unlock uploads it through the queue.
type buffer struct {
	dev       *Device
	id        uint64
	elemSize  int
	elemCount int
	usage     rdraw.BufferUsage
	raw       hal.Buffer
	shadow    []float32

	locked    bool
	destroyed bool
}

var _ rdraw.DeviceBuffer = (*buffer)(nil)

func (b *buffer) Lock() ([]float32, error) {
	b.dev.mu.Lock()
	defer b.dev.mu.Unlock()
	if b.destroyed {
		return nil, fmt.Errorf("%w: lock of buffer %d", ErrBufferDestroyed, b.id)
	}
	b.locked = true
	return b.shadow, nil
}

func (b *buffer) Unlock() {
	b.dev.mu.Lock()
	defer b.dev.mu.Unlock()
	if !b.locked || b.destroyed {
		return
	}
	b.locked = false
	b.dev.queue.WriteBuffer(b.raw, 0, safeish.SliceCast[[]byte](b.shadow))
}

func (b *buffer) ElemSize() int { return b.elemSize }

func (b *buffer) Len() int { return b.elemCount }

// Destroy retires the buffer. The GPU buffer is freed after the next
// Finish, since recorded commands may still reference it.
func (b *buffer) Destroy() {
	b.dev.destroyBuffer(b)
}

func (b *buffer) bytes() uint64 {
	return uint64(b.elemSize) * uint64(b.elemCount)
}
