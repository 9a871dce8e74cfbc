// Package surface defines the drawing target of the tank renderer.
//
// A [Surface] is a resizable 2D canvas with the handful of primitives the
// tank layout needs. Implementations:
//   - [Raster]: anti-aliased RGBA image backed by fogleman/gg
//   - [SVG]: vector document
//   - [Recorder]: display list that can be replayed onto another surface
//
// Surfaces are bound to renderers by handle through a [Registry], the way a
// page binds a canvas element by id.
package surface

import (
	"image/color"
	"maps"
	"slices"
	"sync"

	"github.com/stlplant/tankview/pkg/errors"
)

// Align is the horizontal anchor of a text run.
type Align int

const (
	AlignCenter Align = iota
	AlignLeft
)

// TextStyle describes how a text run is drawn. Y coordinates passed with a
// TextStyle are baselines.
type TextStyle struct {
	Size  float64
	Bold  bool
	Align Align
	Color color.Color
}

// Surface is a resizable drawing target. Coordinates are pixels with the
// origin at the top-left corner.
type Surface interface {
	Size() (w, h float64)
	Resize(w, h float64)
	Clear(bg color.Color)
	FillRect(x, y, w, h float64, c color.Color)
	StrokeRect(x, y, w, h, lineWidth float64, c color.Color)
	Line(x1, y1, x2, y2, lineWidth float64, c color.Color)
	Text(s string, x, y float64, st TextStyle)
}

// Registry maps handles to surfaces. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	surfaces map[string]Surface
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{surfaces: make(map[string]Surface)}
}

// Register binds s to handle, replacing any previous binding.
func (r *Registry) Register(handle string, s Surface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.surfaces[handle] = s
}

// Remove drops the binding for handle.
func (r *Registry) Remove(handle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.surfaces, handle)
}

// Lookup returns the surface bound to handle.
func (r *Registry) Lookup(handle string) (Surface, error) {
	if r == nil {
		return nil, errors.New(errors.ErrCodeSurfaceNotFound, "surface %q not found: no registry", handle)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.surfaces[handle]
	if !ok || s == nil {
		return nil, errors.New(errors.ErrCodeSurfaceNotFound, "surface %q not found", handle)
	}
	return s, nil
}

// Handles returns the registered handles in sorted order.
func (r *Registry) Handles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.surfaces))
}

func nrgba(c color.Color) color.NRGBA {
	if c == nil {
		return color.NRGBA{A: 255}
	}
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}
