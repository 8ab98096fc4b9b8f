// Package backend keeps the registry of rdraw device factories.
//
// Backend packages register themselves from init() functions, so importing
// a backend is enough to make it selectable:
//
//	import (
//	    "github.com/gogpu/rdraw/backend"
//	    _ "github.com/gogpu/rdraw/backend/software"
//	    _ "github.com/gogpu/rdraw/backend/wgpu"
//	)
//
// # Device Selection
//
// Default opens the best available device (wgpu, then software). Open
// requests a specific backend by name:
//
//	dev, err := backend.Default()
//
//	dev, err := backend.Open(backend.Software)
//
// # Usage with a Renderer
//
//	r, err := rdraw.New(dev, rdraw.WithWindow(win))
package backend
