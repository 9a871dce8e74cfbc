package tank

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/stlplant/tankview/pkg/errors"
	"github.com/stlplant/tankview/pkg/model"
	"github.com/stlplant/tankview/pkg/observability"
	"github.com/stlplant/tankview/pkg/render/tank/layout"
	"github.com/stlplant/tankview/pkg/render/tank/sink"
	"github.com/stlplant/tankview/pkg/render/tank/surface"
	"github.com/stlplant/tankview/pkg/theme"
)

const (
	// containerInset is subtracted from the container on both axes before
	// the surface is sized.
	containerInset = 4

	defaultResizeDelay = 100 * time.Millisecond
)

// Cursor is the pointer shape to show over the surface.
type Cursor string

const (
	CursorDefault Cursor = "default"
	CursorPointer Cursor = "pointer"
)

// DrawOptions adjusts a single [Renderer.DrawLayout] call.
type DrawOptions struct {
	// HoveredTankID highlights that tank's button.
	HoveredTankID *int
	// ShowGrid overrides the configured grid flag for this paint only.
	ShowGrid *bool
}

// Renderer draws tank lines onto a bound surface. Create one with [New].
type Renderer struct {
	// OnTankEdit is called when a click lands on a tank's "Edit" button.
	OnTankEdit func(model.Tank)
	// OnLayoutDrawn is called after a non-empty line has been drawn.
	OnLayoutDrawn func([]model.Tank, *model.Line)

	mu          sync.Mutex
	dst         surface.Surface
	themes      *theme.Registry
	theme       string
	opts        layout.Options
	logger      *log.Logger
	resizeDelay time.Duration

	containerW, containerH float64

	frame   *surface.Recorder
	last    layout.Layout
	tanks   []model.Tank
	line    *model.Line
	hovered *int
	drawn   bool

	timer  *time.Timer
	closed bool
}

// New binds a renderer to the surface registered under handle. The
// surface's current size is taken as the container size.
func New(reg *surface.Registry, handle string, opts ...Option) (*Renderer, error) {
	dst, err := reg.Lookup(handle)
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		dst:         dst,
		themes:      theme.NewRegistry(),
		opts:        layout.DefaultOptions(),
		logger:      log.New(io.Discard),
		resizeDelay: defaultResizeDelay,
		frame:       surface.NewRecorder(0, 0),
	}
	r.theme = r.opts.Theme
	for _, opt := range opts {
		opt(r)
	}
	r.containerW, r.containerH = dst.Size()
	r.logger.Debug("renderer bound", "handle", handle, "width", r.containerW, "height", r.containerH)
	return r, nil
}

// DrawLayout lays out tanks for line and paints them. An empty tank list
// paints the empty-state message and registers no buttons. Calling it
// again with the same input repaints the same frame.
func (r *Renderer) DrawLayout(tanks []model.Tank, line *model.Line, do DrawOptions) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.tanks = slices.Clone(tanks)
	r.line = line
	r.hovered = cloneID(do.HoveredTankID)
	r.buildLocked(do.ShowGrid)
	r.paintLocked()
	notify := r.drawnCallbackLocked()
	r.mu.Unlock()

	notify()
}

// Redraw repaints the last layout with a different hovered tank without
// recomputing geometry.
func (r *Renderer) Redraw(hoveredTankID *int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || !r.drawn {
		return
	}
	r.hovered = cloneID(hoveredTankID)
	r.paintLocked()
}

// PointerMove updates the hover state for a pointer at (x, y) and returns
// the cursor to show. The surface is repainted only when the hovered tank
// changes.
func (r *Renderer) PointerMove(x, y float64) Cursor {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, hit := layout.HitTest(r.last.Buttons, x, y)
	switch {
	case hit && (r.hovered == nil || *r.hovered != b.TankID):
		id := b.TankID
		r.hovered = &id
		r.paintLocked()
	case !hit && r.hovered != nil:
		r.hovered = nil
		r.paintLocked()
	}
	if hit {
		return CursorPointer
	}
	return CursorDefault
}

// Click reports the tank whose button contains (x, y) and passes it to
// OnTankEdit.
func (r *Renderer) Click(x, y float64) (model.Tank, bool) {
	r.mu.Lock()
	b, hit := layout.HitTest(r.last.Buttons, x, y)
	cb := r.OnTankEdit
	r.mu.Unlock()

	if !hit {
		return model.Tank{}, false
	}
	r.logger.Debug("edit tank", "id", b.TankID)
	if cb != nil {
		cb(b.Tank)
	}
	return b.Tank, true
}

// SetTheme switches to a registered palette and repaints. Unknown names
// leave the renderer and its frame untouched and return false.
func (r *Renderer) SetTheme(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.themes.Palette(name); !ok {
		r.logger.Debug("unknown theme ignored", "theme", name)
		return false
	}
	r.theme = name
	if r.drawn && !r.closed {
		// label sizes depend on the palette's base font size
		r.buildLocked(nil)
		r.paintLocked()
	}
	return true
}

// Theme returns the active theme name.
func (r *Renderer) Theme() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.theme
}

// Resize records a new container size and schedules a re-layout after the
// debounce window. Calls within the window coalesce into one re-layout.
func (r *Renderer) Resize(w, h float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.containerW, r.containerH = w, h
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.resizeDelay, r.relayout)
}

func (r *Renderer) relayout() {
	r.mu.Lock()
	if r.closed || !r.drawn {
		r.mu.Unlock()
		return
	}
	r.buildLocked(nil)
	r.paintLocked()
	notify := r.drawnCallbackLocked()
	r.mu.Unlock()

	notify()
}

// ExportImage encodes the current frame. Supported formats are png (the
// default), jpeg, gif, tiff, bmp and svg.
func (r *Renderer) ExportImage(format string) ([]byte, error) {
	r.mu.Lock()
	drawn := r.drawn
	r.mu.Unlock()
	if !drawn {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nothing has been drawn yet")
	}

	ctx := context.Background()
	hooks := observability.Render()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()
	data, err := sink.ExportFrame(r.frame, format)
	hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
	return data, err
}

// Export encodes the frame like [Renderer.ExportImage], or the layout
// itself for the json and msgpack formats.
func (r *Renderer) Export(format string) ([]byte, error) {
	switch sink.NormalizeFormat(format) {
	case sink.FormatJSON:
		return sink.RenderJSON(r.Layout())
	case sink.FormatMsgpack:
		return sink.RenderMsgpack(r.Layout())
	}
	return r.ExportImage(format)
}

// Layout returns the last computed layout.
func (r *Renderer) Layout() layout.Layout {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := r.last
	l.Tanks = slices.Clone(l.Tanks)
	l.Buttons = slices.Clone(l.Buttons)
	return l
}

// Buttons returns a copy of the registered "Edit" hit-regions in
// registration order.
func (r *Renderer) Buttons() []layout.Button {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.last.Buttons)
}

// Hovered returns the id of the highlighted tank, if any.
func (r *Renderer) Hovered() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hovered == nil {
		return 0, false
	}
	return *r.hovered, true
}

// Frame returns the display list of the current frame.
func (r *Renderer) Frame() []surface.Op {
	return r.frame.Ops()
}

// Close stops any pending re-layout. Later calls are no-ops.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Renderer) buildLocked(showGrid *bool) {
	opts := r.opts
	opts.Theme = r.theme
	opts.FontSize = r.themes.PaletteOrDefault(r.theme).FontSize
	if showGrid != nil {
		opts.ShowGrid = *showGrid
	}
	vp := layout.Viewport{
		Width:  max(0, r.containerW-containerInset),
		Height: max(0, r.containerH-containerInset),
	}

	ctx := context.Background()
	hooks := observability.Render()
	preset := presetName(opts)
	hooks.OnLayoutStart(ctx, preset, len(r.tanks))
	start := time.Now()
	r.last = layout.Build(r.tanks, vp, opts)
	hooks.OnLayoutComplete(ctx, preset, r.last.Scale, time.Since(start))

	r.drawn = true
	if r.hovered != nil {
		if _, ok := findButton(r.last.Buttons, *r.hovered); !ok {
			r.hovered = nil
		}
	}
}

func (r *Renderer) paintLocked() {
	pal := r.themes.PaletteOrDefault(r.theme)
	sink.Paint(r.frame, r.last, pal, sink.WithHoveredPtr(r.hovered))
	r.frame.Replay(r.dst)
}

// drawnCallbackLocked captures OnLayoutDrawn and its arguments so the call
// can happen after the lock is released.
func (r *Renderer) drawnCallbackLocked() func() {
	cb := r.OnLayoutDrawn
	if cb == nil || r.last.IsEmpty() {
		return func() {}
	}
	tanks := slices.Clone(r.tanks)
	line := r.line
	return func() { cb(tanks, line) }
}

func findButton(buttons []layout.Button, tankID int) (layout.Button, bool) {
	for _, b := range buttons {
		if b.TankID == tankID {
			return b, true
		}
	}
	return layout.Button{}, false
}

func presetName(o layout.Options) string {
	if o.Labels == layout.LabelName {
		return layout.PresetBasic
	}
	return layout.PresetDetailed
}

func cloneID(id *int) *int {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
