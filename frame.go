package rdraw

import "fmt"

// FrameStats reports release-list activity.
type FrameStats struct {
	Frame    uint64
	Pending  int
	Tracked  uint64
	Released uint64
}

// FrameManager owns every transient buffer allocated in the current frame
// and releases them once the device has retired the frame's commands.
type FrameManager struct {
	pending  []*TransientBuffer
	frame    uint64
	tracked  uint64
	released uint64
}

// NewFrameManager returns an empty frame manager.
func NewFrameManager() *FrameManager {
	return &FrameManager{}
}

// Track adds buf to the release list of the current frame.
func (f *FrameManager) Track(buf *TransientBuffer) {
	f.pending = append(f.pending, buf)
	f.tracked++
}

// Frame returns the number of completed flushes.
func (f *FrameManager) Frame() uint64 {
	return f.frame
}

// Pending returns the number of buffers waiting for release.
func (f *FrameManager) Pending() int {
	return len(f.pending)
}

// Stats returns a snapshot of the counters.
func (f *FrameManager) Stats() FrameStats {
	return FrameStats{
		Frame:    f.frame,
		Pending:  len(f.pending),
		Tracked:  f.tracked,
		Released: f.released,
	}
}

// Flush waits for dev to retire all submitted work and then releases every
// tracked buffer exactly once. If the wait fails nothing is released.
func (f *FrameManager) Flush(dev Device) error {
	if err := dev.Finish(); err != nil {
		return fmt.Errorf("finish frame %d: %w", f.frame, err)
	}
	f.releaseAll()
	f.frame++
	return nil
}

func (f *FrameManager) releaseAll() {
	for i, buf := range f.pending {
		if buf.release() {
			f.released++
		} else {
			Logger().Warn("rdraw: buffer already released", "frame", f.frame, "index", i)
		}
		f.pending[i] = nil
	}
	f.pending = f.pending[:0]
}
