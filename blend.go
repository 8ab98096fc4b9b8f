package rdraw

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// LogicOp is the raster logic operation applied after blending.
type LogicOp int

// LogicOpCopy writes the blended color unchanged.
const LogicOpCopy LogicOp = 0

// BlendState is the fixed-function blend configuration of a draw.
type BlendState struct {
	LogicOp     LogicOp
	BlendEnable bool
	Color       gputypes.BlendComponent
	Alpha       gputypes.BlendComponent
	WriteMask   gputypes.ColorWriteMask
}

var copyComponent = gputypes.BlendComponent{
	SrcFactor: gputypes.BlendFactorOne,
	DstFactor: gputypes.BlendFactorZero,
	Operation: gputypes.BlendOperationAdd,
}

// TranslateBlendMode maps a symbolic blend mode to device blend state.
//
//	mode   rgb                      alpha
//	None   src                      src
//	Blend  src*srcA + dst*(1-srcA)  src + dst*(1-srcA)
//	Add    src*srcA + dst           dst
//	Mod    src*dst                  dst
//
// Unknown modes return ErrUnsupportedBlendMode.
func TranslateBlendMode(mode BlendMode) (BlendState, error) {
	bs := BlendState{
		LogicOp:   LogicOpCopy,
		WriteMask: gputypes.ColorWriteMaskAll,
	}
	switch mode {
	case BlendModeNone:
		bs.Color = copyComponent
		bs.Alpha = copyComponent
	case BlendModeBlend:
		bs.BlendEnable = true
		bs.Color = component(gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOneMinusSrcAlpha)
		bs.Alpha = component(gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrcAlpha)
	case BlendModeAdd:
		bs.BlendEnable = true
		bs.Color = component(gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOne)
		bs.Alpha = component(gputypes.BlendFactorZero, gputypes.BlendFactorOne)
	case BlendModeMod:
		bs.BlendEnable = true
		bs.Color = component(gputypes.BlendFactorDst, gputypes.BlendFactorZero)
		bs.Alpha = component(gputypes.BlendFactorZero, gputypes.BlendFactorOne)
	default:
		return BlendState{}, fmt.Errorf("%w: %v", ErrUnsupportedBlendMode, mode)
	}
	return bs, nil
}

func component(src, dst gputypes.BlendFactor) gputypes.BlendComponent {
	return gputypes.BlendComponent{SrcFactor: src, DstFactor: dst, Operation: gputypes.BlendOperationAdd}
}

// GPUBlend returns the pipeline blend state, or nil when blending is off.
func (bs BlendState) GPUBlend() *gputypes.BlendState {
	if !bs.BlendEnable {
		return nil
	}
	return &gputypes.BlendState{Color: bs.Color, Alpha: bs.Alpha}
}
