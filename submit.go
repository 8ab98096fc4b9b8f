package rdraw

import (
	"fmt"
)

// drawCall is a fully assembled draw: its buffers are written and its
// blend state already translated.
type drawCall struct {
	primitive Primitive
	count     int
	shader    ShaderKind
	position  *TransientBuffer
	texCoord  *TransientBuffer
	texture   Texture
	color     Color
	blend     BlendState
}

// Submitter binds state for a draw and issues it.
type Submitter struct {
	device  Device
	targets *TargetManager

	draws uint64
}

// NewSubmitter creates a submitter drawing into the targets' binding.
func NewSubmitter(device Device, targets *TargetManager) *Submitter {
	return &Submitter{device: device, targets: targets}
}

// Submit issues dc. The target binding is re-applied first because another
// user of the device may have changed it since the previous draw.
func (s *Submitter) Submit(dc *drawCall) error {
	if dc.position == nil {
		return fmt.Errorf("%w: draw without positions", ErrInvalidArgument)
	}
	if dc.shader == ShaderTextured && (dc.texture == nil || dc.texCoord == nil) {
		return fmt.Errorf("%w: textured draw without texture", ErrInvalidArgument)
	}
	if err := s.targets.Sync(); err != nil {
		return err
	}
	b := s.targets.Binding()

	s.device.BindShader(dc.shader)
	if dc.shader == ShaderTextured {
		s.device.BindTexture(0, dc.texture.Surface(), dc.texture.Sampler())
	}

	s.device.BindAttributeBuffer(AttribPosition, dc.position.Device())
	if dc.texCoord != nil {
		s.device.BindAttributeBuffer(AttribTexCoord, dc.texCoord.Device())
	}

	s.device.SetUniform(StageVertex, UniformTargetSize, b.TargetSize)
	if dc.shader == ShaderTextured {
		s.device.SetUniform(StageVertex, UniformTextureSize, [4]float32{
			float32(dc.texture.Width()), float32(dc.texture.Height()), 0, 0,
		})
	}
	s.device.SetUniform(StagePixel, UniformColor, dc.color.Vec4())

	s.device.SetBlendState(dc.blend)

	if err := s.device.Draw(dc.primitive, dc.count, 1); err != nil {
		return fmt.Errorf("draw %s: %w", dc.primitive, err)
	}
	s.draws++
	return nil
}

// Draws returns the number of submitted draws.
func (s *Submitter) Draws() uint64 {
	return s.draws
}
