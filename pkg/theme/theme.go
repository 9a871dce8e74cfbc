// Package theme is the single source of color and typography for tankview.
//
// Two kinds of theme live here:
//   - [Palette]: colors for the tank layout canvas (tanks, grid, buttons)
//   - [Banner]: colors and context label for the page header
//
// Components receive a [*Registry] instead of restating palettes. The
// built-in registry can be extended or overridden from a YAML file with
// [Load].
package theme

import (
	"maps"
	"slices"
	"sync"
)

// Canvas palette names.
const (
	Default     = "default"
	Sales       = "sales"
	Engineering = "engineering"
)

// Header-only context names.
const (
	Training   = "training"
	Simulation = "simulation"
)

// Palette colors the tank layout canvas. Colors are CSS-style strings
// accepted by [ParseColor].
type Palette struct {
	Name        string  `yaml:"-" json:"name"`
	Tank        string  `yaml:"tank" json:"tank"`
	TankBorder  string  `yaml:"tank_border" json:"tank_border"`
	Text        string  `yaml:"text" json:"text"`
	Grid        string  `yaml:"grid" json:"grid"`
	Button      string  `yaml:"button" json:"button"`
	ButtonHover string  `yaml:"button_hover" json:"button_hover"`
	FontSize    float64 `yaml:"font_size" json:"font_size"`
}

// Banner colors the page header for one work context.
type Banner struct {
	Name        string `yaml:"-" json:"name"`
	Label       string `yaml:"label" json:"label"`
	Primary     string `yaml:"primary" json:"primary"`
	PrimaryDark string `yaml:"primary_dark" json:"primary_dark"`
	Text        string `yaml:"text" json:"text"`
}

// Registry holds the palettes and banners known to the application.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	palettes map[string]Palette
	banners  map[string]Banner
}

var builtinPalettes = map[string]Palette{
	Default: {
		Tank: "#4a90e2", TankBorder: "#2c5282", Text: "#ffffff", Grid: "#e0e0e0",
		Button: "#007bff", ButtonHover: "#0056b3", FontSize: 14,
	},
	Sales: {
		Tank: "#113a4c", TankBorder: "#000000", Text: "#ffffff", Grid: "#e0e0e0",
		Button: "#113a4c", ButtonHover: "#000000", FontSize: 18,
	},
	Engineering: {
		Tank: "#28a745", TankBorder: "#155724", Text: "#ffffff", Grid: "#e0e0e0",
		Button: "#28a745", ButtonHover: "#1e7e34", FontSize: 12,
	},
}

var builtinBanners = map[string]Banner{
	Sales:       {Label: "Sales", Primary: "#113a4c", PrimaryDark: "#0d2a3a", Text: "#ffffff"},
	Engineering: {Label: "Design", Primary: "#9de2e7", PrimaryDark: "#7dd5db", Text: "#000000"},
	Training:    {Label: "Training", Primary: "#ff7331", PrimaryDark: "#e65a1c", Text: "#ffffff"},
	Simulation:  {Label: "Simulation", Primary: "#e5dddf", PrimaryDark: "#d9d0d3", Text: "#000000"},
	Default:     {Label: "System", Primary: "#113a4c", PrimaryDark: "#0d2a3a", Text: "#ffffff"},
}

// NewRegistry returns a registry holding the built-in themes.
func NewRegistry() *Registry {
	r := &Registry{
		palettes: make(map[string]Palette, len(builtinPalettes)),
		banners:  make(map[string]Banner, len(builtinBanners)),
	}
	for name, p := range builtinPalettes {
		p.Name = name
		r.palettes[name] = p
	}
	for name, b := range builtinBanners {
		b.Name = name
		r.banners[name] = b
	}
	return r
}

// Palette returns the named canvas palette.
func (r *Registry) Palette(name string) (Palette, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.palettes[name]
	return p, ok
}

// PaletteOrDefault returns the named palette, or the default palette when
// the name is unknown.
func (r *Registry) PaletteOrDefault(name string) Palette {
	if p, ok := r.Palette(name); ok {
		return p
	}
	p, _ := r.Palette(Default)
	return p
}

// Banner returns the named header banner, or the default banner when the
// name is unknown.
func (r *Registry) Banner(name string) Banner {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if b, ok := r.banners[name]; ok {
		return b
	}
	return r.banners[Default]
}

// HasBanner reports whether a banner with the given name exists.
func (r *Registry) HasBanner(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.banners[name]
	return ok
}

// SetPalette adds or replaces a palette. Empty fields are filled from the
// palette it replaces, or from the default palette for new names.
func (r *Registry) SetPalette(name string, p Palette) {
	r.mu.Lock()
	defer r.mu.Unlock()
	base, ok := r.palettes[name]
	if !ok {
		base = r.palettes[Default]
	}
	p = mergePalette(base, p)
	p.Name = name
	r.palettes[name] = p
}

// SetBanner adds or replaces a banner, filling empty fields like SetPalette.
func (r *Registry) SetBanner(name string, b Banner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	base, ok := r.banners[name]
	if !ok {
		base = r.banners[Default]
	}
	b = mergeBanner(base, b)
	b.Name = name
	r.banners[name] = b
}

// PaletteNames returns the sorted palette names.
func (r *Registry) PaletteNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.palettes))
}

// BannerNames returns the sorted banner names.
func (r *Registry) BannerNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.banners))
}

func mergePalette(base, p Palette) Palette {
	pick := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	out := Palette{
		Tank:        pick(p.Tank, base.Tank),
		TankBorder:  pick(p.TankBorder, base.TankBorder),
		Text:        pick(p.Text, base.Text),
		Grid:        pick(p.Grid, base.Grid),
		Button:      pick(p.Button, base.Button),
		ButtonHover: p.ButtonHover,
		FontSize:    p.FontSize,
	}
	if out.ButtonHover == "" {
		if p.Button != "" {
			out.ButtonHover = Darken(out.Button, 0.25)
		} else {
			out.ButtonHover = base.ButtonHover
		}
	}
	if out.FontSize <= 0 {
		out.FontSize = base.FontSize
	}
	return out
}

func mergeBanner(base, b Banner) Banner {
	if b.Label == "" {
		b.Label = base.Label
	}
	if b.PrimaryDark == "" {
		if b.Primary != "" {
			b.PrimaryDark = Darken(b.Primary, 0.15)
		} else {
			b.PrimaryDark = base.PrimaryDark
		}
	}
	if b.Primary == "" {
		b.Primary = base.Primary
	}
	if b.Text == "" {
		b.Text = base.Text
	}
	return b
}
