package rdraw

import (
	"fmt"
)

// bufferState tracks the CPU access state of a TransientBuffer.
type bufferState int

const (
	bufferIdle bufferState = iota
	bufferLocked
	bufferReleased
)

func (s bufferState) String() string {
	switch s {
	case bufferIdle:
		return "idle"
	case bufferLocked:
		return "locked"
	case bufferReleased:
		return "released"
	}
	return "unknown"
}

// TransientBuffer is vertex memory owned by a single draw. It stays alive
// until the frame that allocated it is flushed.
type TransientBuffer struct {
	dev   DeviceBuffer
	usage BufferUsage
	state bufferState
	view  []float32
}

// Device returns the backend buffer.
func (b *TransientBuffer) Device() DeviceBuffer {
	return b.dev
}

// Usage returns the usage flags the buffer was allocated with.
func (b *TransientBuffer) Usage() BufferUsage {
	return b.usage
}

// Len returns the element count.
func (b *TransientBuffer) Len() int {
	return b.dev.Len()
}

// Lock maps the buffer for writing. Every Lock must be paired with Unlock
// on the same buffer.
func (b *TransientBuffer) Lock() ([]float32, error) {
	switch b.state {
	case bufferLocked:
		return nil, ErrBufferLocked
	case bufferReleased:
		return nil, ErrBufferReleased
	}
	view, err := b.dev.Lock()
	if err != nil {
		return nil, fmt.Errorf("lock buffer: %w", err)
	}
	b.state = bufferLocked
	b.view = view
	return view, nil
}

// Unlock hands the buffer back to the device. The slice returned by Lock
// must not be used afterwards.
func (b *TransientBuffer) Unlock() error {
	switch b.state {
	case bufferIdle:
		return fmt.Errorf("rdraw: unlock of %s buffer", b.state)
	case bufferReleased:
		return ErrBufferReleased
	}
	b.dev.Unlock()
	b.view = nil
	b.state = bufferIdle
	return nil
}

// Write copies data into the buffer inside one Lock/Unlock scope.
func (b *TransientBuffer) Write(data []float32) error {
	view, err := b.Lock()
	if err != nil {
		return err
	}
	copy(view, data)
	return b.Unlock()
}

// release destroys the device buffer. It is called once, by the frame manager.
func (b *TransientBuffer) release() bool {
	if b.state == bufferReleased {
		return false
	}
	if b.state == bufferLocked {
		b.dev.Unlock()
		b.view = nil
	}
	b.dev.Destroy()
	b.state = bufferReleased
	return true
}

// Allocator hands out fresh transient buffers and registers each one with
// the frame that will release it.
type Allocator struct {
	device Device
	frame  *FrameManager
}

// NewAllocator creates an allocator that registers buffers on frame.
func NewAllocator(device Device, frame *FrameManager) *Allocator {
	return &Allocator{device: device, frame: frame}
}

// Allocate returns a buffer of elemCount elements of elemSize bytes.
// Memory is never reused within a frame.
func (a *Allocator) Allocate(elemSize, elemCount int, usage BufferUsage) (*TransientBuffer, error) {
	if elemSize <= 0 || elemCount <= 0 {
		return nil, fmt.Errorf("%w: buffer %d x %d bytes", ErrInvalidArgument, elemCount, elemSize)
	}
	db, err := a.device.NewBuffer(elemSize, elemCount, usage)
	if err != nil {
		return nil, fmt.Errorf("allocate %d x %d byte buffer: %w", elemCount, elemSize, err)
	}
	buf := &TransientBuffer{dev: db, usage: usage}
	a.frame.Track(buf)
	Logger().Debug("rdraw: buffer allocated",
		"elemSize", elemSize, "elemCount", elemCount, "frame", a.frame.Frame())
	return buf, nil
}

// vertexUsage is the usage of every attribute buffer the renderer allocates.
const vertexUsage = BufferUsageVertex | BufferUsageCPUWrite

// allocateVertices allocates and fills a position or texcoord buffer.
func (a *Allocator) allocateVertices(data []float32) (*TransientBuffer, error) {
	buf, err := a.Allocate(vertexFloats*4, len(data)/vertexFloats, vertexUsage)
	if err != nil {
		return nil, err
	}
	if err := buf.Write(data); err != nil {
		return nil, err
	}
	return buf, nil
}
