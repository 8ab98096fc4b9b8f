package rdraw

import (
	"fmt"
	"image"
)

// CommandKind selects the operation of a DrawCommand.
type CommandKind int

const (
	CmdClear CommandKind = iota
	CmdPoints
	CmdLines
	CmdFillRects
	CmdCopy
	CmdCopyRotated
)

var commandNames = [...]string{
	CmdClear:       "clear",
	CmdPoints:      "points",
	CmdLines:       "lines",
	CmdFillRects:   "fill-rects",
	CmdCopy:        "copy",
	CmdCopyRotated: "copy-rotated",
}

func (k CommandKind) String() string {
	if k >= 0 && int(k) < len(commandNames) {
		return commandNames[k]
	}
	return fmt.Sprintf("CommandKind(%d)", int(k))
}

// DrawCommand is one recorded drawing operation. Only the fields used by
// Kind are read.
type DrawCommand struct {
	Kind CommandKind

	// Color is the clear color for CmdClear.
	Color Color

	Points []FPoint
	Rects  []FRect

	Texture Texture
	// Src is the source region; empty selects the whole texture.
	Src image.Rectangle
	Dst FRect

	Angle float64
	// Center is the pivot relative to Dst; nil selects its centre.
	Center *FPoint
	Flip   Flip
}

// Do executes cmd.
func (r *GPURenderer) Do(cmd DrawCommand) error {
	switch cmd.Kind {
	case CmdClear:
		return r.Clear(cmd.Color)
	case CmdPoints:
		return r.DrawPoints(cmd.Points)
	case CmdLines:
		return r.DrawLines(cmd.Points)
	case CmdFillRects:
		return r.FillRects(cmd.Rects)
	case CmdCopy:
		return r.Copy(cmd.Texture, cmd.Src, cmd.Dst)
	case CmdCopyRotated:
		return r.CopyRotated(cmd.Texture, cmd.Src, cmd.Dst, cmd.Angle, cmd.Center, cmd.Flip)
	}
	return fmt.Errorf("%w: command %v", ErrInvalidArgument, cmd.Kind)
}
