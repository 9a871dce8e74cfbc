package tank

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/stlplant/tankview/pkg/render/tank/layout"
	"github.com/stlplant/tankview/pkg/theme"
)

// Option configures a [Renderer].
type Option func(*Renderer)

// WithLayout replaces the layout options, typically with [layout.Basic] or
// [layout.Detailed]. The preset's theme becomes the renderer's theme unless
// [WithTheme] follows.
func WithLayout(o layout.Options) Option {
	return func(r *Renderer) {
		r.opts = o
		if o.Theme != "" {
			r.theme = o.Theme
		}
	}
}

// WithTheme selects the palette. Unknown names fall back to the default
// palette at draw time.
func WithTheme(name string) Option { return func(r *Renderer) { r.theme = name } }

// WithThemes sets the registry palettes are looked up in.
func WithThemes(reg *theme.Registry) Option {
	return func(r *Renderer) {
		if reg != nil {
			r.themes = reg
		}
	}
}

func WithGrid(show bool) Option        { return func(r *Renderer) { r.opts.ShowGrid = show } }
func WithEditButtons(show bool) Option { return func(r *Renderer) { r.opts.ShowEditButtons = show } }
func WithMargin(px float64) Option     { return func(r *Renderer) { r.opts.Margin = px } }
func WithPadding(px float64) Option    { return func(r *Renderer) { r.opts.Padding = px } }

func WithScaleBounds(lo, hi float64) Option {
	return func(r *Renderer) { r.opts.MinScale, r.opts.MaxScale = lo, hi }
}

// WithFontSizeMultiplier scales the name and dimension fonts of the
// name-only label mode.
func WithFontSizeMultiplier(m float64) Option {
	return func(r *Renderer) { r.opts.FontSizeMultiplier = m }
}

// WithResizeDelay sets the debounce window of [Renderer.Resize].
func WithResizeDelay(d time.Duration) Option {
	return func(r *Renderer) {
		if d >= 0 {
			r.resizeDelay = d
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}
