package backend

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/rdraw"
)

// stubDevice is the smallest rdraw.Device for registry tests.
type stubDevice struct{ name string }

func (s *stubDevice) Name() string { return s.name }
func (s *stubDevice) NewBuffer(int, int, rdraw.BufferUsage) (rdraw.DeviceBuffer, error) {
	return nil, rdraw.ErrOutOfMemory
}
func (s *stubDevice) BindTarget(rdraw.ColorBuffer) error                  { return nil }
func (s *stubDevice) SetViewport(x, y, w, h float32)                      {}
func (s *stubDevice) SetScissor(image.Rectangle)                          {}
func (s *stubDevice) SetBlendState(rdraw.BlendState)                      {}
func (s *stubDevice) BindShader(rdraw.ShaderKind)                         {}
func (s *stubDevice) BindTexture(int, *rdraw.Surface, rdraw.Sampler)      {}
func (s *stubDevice) BindAttributeBuffer(int, rdraw.DeviceBuffer)         {}
func (s *stubDevice) SetUniform(rdraw.ShaderStage, int, [4]float32)       {}
func (s *stubDevice) Draw(rdraw.Primitive, int, int) error                { return nil }
func (s *stubDevice) Clear(rdraw.Color) error                             { return nil }
func (s *stubDevice) Finish() error                                       { return nil }
func (s *stubDevice) ReadPixels(*rdraw.Surface, image.Rectangle, []byte) error { return nil }
func (s *stubDevice) Release()                                            {}

// withRegistry swaps in an empty registry for the duration of the test.
func withRegistry(t *testing.T) {
	t.Helper()
	registryMu.Lock()
	saved := factories
	factories = make(map[string]Factory)
	registryMu.Unlock()
	t.Cleanup(func() {
		registryMu.Lock()
		factories = saved
		registryMu.Unlock()
	})
}

func TestRegisterAndOpen(t *testing.T) {
	withRegistry(t)

	Register("stub", func() (rdraw.Device, error) { return &stubDevice{name: "stub"}, nil })
	if !IsRegistered("stub") {
		t.Fatal("IsRegistered(stub) = false, want true")
	}
	dev, err := Open("stub")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if dev.Name() != "stub" {
		t.Errorf("Name() = %q, want %q", dev.Name(), "stub")
	}

	Unregister("stub")
	if _, err := Open("stub"); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Open() after Unregister error = %v, want ErrBackendNotAvailable", err)
	}
}

func TestDefaultPriority(t *testing.T) {
	withRegistry(t)

	Register(Software, func() (rdraw.Device, error) { return &stubDevice{name: Software}, nil })
	Register(WGPU, func() (rdraw.Device, error) { return &stubDevice{name: WGPU}, nil })

	dev, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if dev.Name() != WGPU {
		t.Errorf("Default() = %q, want %q", dev.Name(), WGPU)
	}
}

func TestDefaultFallsBackWhenGPUFails(t *testing.T) {
	withRegistry(t)

	gpuErr := errors.New("no adapter")
	Register(WGPU, func() (rdraw.Device, error) { return nil, gpuErr })
	Register(Software, func() (rdraw.Device, error) { return &stubDevice{name: Software}, nil })

	dev, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if dev.Name() != Software {
		t.Errorf("Default() = %q, want %q", dev.Name(), Software)
	}
}

func TestDefaultUnprioritized(t *testing.T) {
	withRegistry(t)

	Register("custom", func() (rdraw.Device, error) { return &stubDevice{name: "custom"}, nil })
	dev, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if dev.Name() != "custom" {
		t.Errorf("Default() = %q, want %q", dev.Name(), "custom")
	}
}

func TestDefaultNothingRegistered(t *testing.T) {
	withRegistry(t)

	if _, err := Default(); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Default() error = %v, want ErrBackendNotAvailable", err)
	}
}

func TestAvailableSorted(t *testing.T) {
	withRegistry(t)

	Register("b", func() (rdraw.Device, error) { return nil, nil })
	Register("a", func() (rdraw.Device, error) { return nil, nil })
	got := Available()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Available() = %v, want [a b]", got)
	}
}
