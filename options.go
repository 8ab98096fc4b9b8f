package rdraw

// Option configures a GPURenderer during creation.
//
// Example:
//
//	// Headless renderer drawing into a texture
//	r, err := rdraw.New(dev)
//
//	// Renderer presenting to a window
//	r, err := rdraw.New(dev, rdraw.WithWindow(win), rdraw.WithDrawColor(rdraw.Black))
type Option func(*options)

type options struct {
	window    Window
	drawColor Color
	drawBlend BlendMode
}

func defaultOptions() options {
	return options{
		drawColor: White,
		drawBlend: BlendModeNone,
	}
}

// WithWindow sets the presentation surface. The window surface becomes the
// initial render target and Present forwards to the window.
func WithWindow(w Window) Option {
	return func(o *options) {
		o.window = w
	}
}

// WithDrawColor sets the initial color of points, lines and rectangles.
func WithDrawColor(c Color) Option {
	return func(o *options) {
		o.drawColor = c
	}
}

// WithDrawBlendMode sets the initial blend mode for points, lines and rects.
func WithDrawBlendMode(m BlendMode) Option {
	return func(o *options) {
		o.drawBlend = m
	}
}
