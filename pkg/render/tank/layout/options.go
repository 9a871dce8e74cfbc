package layout

import (
	"strings"

	"github.com/stlplant/tankview/pkg/errors"
)

// Preset names accepted by [Preset].
const (
	PresetBasic    = "basic"
	PresetDetailed = "detailed"
)

// LabelMode selects which tank fields are written inside the rectangle.
type LabelMode int

const (
	// LabelName writes the tank name in a large font and the dimensions below.
	LabelName LabelMode = iota
	// LabelNumberName writes the tank number above the name.
	LabelNumberName
)

// GridRule chooses the background grid cell from the scale.
type GridRule struct {
	Fine        float64 // cell in mm when scale > FineAbove
	Normal      float64 // cell in mm otherwise
	Coarse      float64 // cell in mm when scale < CoarseBelow
	FineAbove   float64
	CoarseBelow float64
	// CoarseAtOrBelow also picks the coarse cell when scale == CoarseBelow.
	CoarseAtOrBelow bool
	MinStep         float64 // the grid is drawn only when a cell is wider than this many px
	LineWidth       float64
	Label           bool // annotate the cell size in the bottom-right corner
}

// ButtonRule sizes and places the per-tank "Edit" button.
type ButtonRule struct {
	Width, Height  float64 // fixed size in px; zero means proportional to the tank
	Offset         float64 // gap below the tank; zero means Options.Padding
	FontSize       float64 // zero means proportional to the button height
	Bold           bool    // always bold; otherwise bold only when hovered
	HoverLineWidth float64
	MinTankWidth   float64 // the tank must be wider than this (px) to get a button
	MinTankLength  float64
}

// Options parameterizes the layout. Use [Basic] or [Detailed] as a
// starting point.
type Options struct {
	Theme           string
	ShowGrid        bool
	ShowEditButtons bool

	Margin   float64
	Padding  float64
	MinScale float64
	MaxScale float64

	// ReservedBand is the vertical space (px) kept free for buttons and labels.
	ReservedBand float64
	// TrailingGap counts the last tank's spacing in the total width.
	TrailingGap bool
	// SmallFleetBoost enlarges lines of up to three tanks.
	SmallFleetBoost bool
	// ScrollOnOverflow lets the surface grow wider than the viewport.
	ScrollOnOverflow bool
	// ScrollExtra is added to the grown width.
	ScrollExtra float64
	// MaxWidth caps the grown width; zero means no cap. A layout that needs
	// more is cut off and marked Clipped.
	MaxWidth float64

	DefaultWidth   float64
	DefaultLength  float64
	DefaultSpacing float64

	Labels             LabelMode
	FontSize           float64 // palette base font size, used by LabelName
	FontSizeMultiplier float64 // used by LabelName

	// Dimension text needs a rectangle larger than these (px).
	DimsMinWidth  float64
	DimsMinLength float64
	// DimsWithButtons draws dimensions only when edit buttons are shown.
	DimsWithButtons bool

	Grid   GridRule
	Button ButtonRule

	EmptyTitle string
	EmptyHint  string
}

// Basic returns the preset used on the basic line layout page.
func Basic() Options {
	return Options{
		Theme:              "sales",
		ShowGrid:           true,
		ShowEditButtons:    true,
		Margin:             20,
		Padding:            10,
		MinScale:           0.1,
		MaxScale:           5,
		ReservedBand:       100,
		TrailingGap:        true,
		ScrollOnOverflow:   true,
		ScrollExtra:        100,
		DefaultWidth:       1000,
		DefaultLength:      1000,
		DefaultSpacing:     100,
		Labels:             LabelName,
		FontSize:           18,
		FontSizeMultiplier: 1.5,
		DimsMinWidth:       80,
		DimsMinLength:      80,
		Grid: GridRule{
			Fine: 500, Normal: 1000, Coarse: 2000,
			FineAbove: 0.5, CoarseBelow: 0.2, CoarseAtOrBelow: true,
			MinStep: 5, LineWidth: 1,
		},
		Button: ButtonRule{
			Width: 80, Height: 32, Offset: 15, FontSize: 14, Bold: true,
			HoverLineWidth: 1, MinTankWidth: 60, MinTankLength: 60,
		},
		EmptyTitle: "No tanks found for this line",
		EmptyHint:  "Create tanks to see the layout here",
	}
}

// Detailed returns the preset used on the plant layout designer.
func Detailed() Options {
	return Options{
		Theme:           "default",
		ShowGrid:        true,
		ShowEditButtons: true,
		Margin:          20,
		Padding:         10,
		MinScale:        0.1,
		MaxScale:        5,
		ReservedBand:    60,
		SmallFleetBoost: true,
		DefaultWidth:    1000,
		DefaultLength:   1000,
		Labels:          LabelNumberName,
		FontSize:        14,
		DimsMinWidth:    40,
		DimsMinLength:   50,
		DimsWithButtons: true,
		Grid: GridRule{
			Fine: 500, Normal: 1000, Coarse: 2000,
			FineAbove: 2, CoarseBelow: 0.5,
			MinStep: 5, LineWidth: 0.5, Label: true,
		},
		Button: ButtonRule{
			HoverLineWidth: 2, MinTankWidth: 40, MinTankLength: 50,
		},
		EmptyTitle: "No tanks found for this line",
		EmptyHint:  "Tank layout will appear here when line contains tanks",
	}
}

// DefaultOptions returns the detailed preset, which excludes the trailing gap.
func DefaultOptions() Options { return Detailed() }

// Preset returns the named preset.
func Preset(name string) (Options, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PresetBasic, "fixed":
		return Basic(), nil
	case PresetDetailed, "", "backup":
		return Detailed(), nil
	default:
		return Options{}, errors.New(errors.ErrCodeInvalidPreset, "unknown preset %q (want %s or %s)", name, PresetBasic, PresetDetailed)
	}
}

// normalized replaces unusable values with the detailed preset's.
func (o Options) normalized() Options {
	def := Detailed()
	if o.MinScale <= 0 {
		o.MinScale = def.MinScale
	}
	if o.MaxScale <= 0 {
		o.MaxScale = def.MaxScale
	}
	if o.MaxScale < o.MinScale {
		o.MaxScale = o.MinScale
	}
	if o.Margin < 0 {
		o.Margin = 0
	}
	if o.ReservedBand < 0 {
		o.ReservedBand = 0
	}
	if o.MaxWidth < 0 {
		o.MaxWidth = 0
	}
	if o.DefaultWidth <= 0 {
		o.DefaultWidth = def.DefaultWidth
	}
	if o.DefaultLength <= 0 {
		o.DefaultLength = def.DefaultLength
	}
	if o.DefaultSpacing < 0 {
		o.DefaultSpacing = 0
	}
	if o.FontSize <= 0 {
		o.FontSize = def.FontSize
	}
	if o.FontSizeMultiplier <= 0 {
		o.FontSizeMultiplier = 1
	}
	if o.Grid.Normal <= 0 {
		o.Grid = def.Grid
	}
	if o.Grid.LineWidth <= 0 {
		o.Grid.LineWidth = 1
	}
	if o.Button.HoverLineWidth <= 0 {
		o.Button.HoverLineWidth = 1
	}
	if o.EmptyTitle == "" {
		o.EmptyTitle = def.EmptyTitle
	}
	if o.EmptyHint == "" {
		o.EmptyHint = def.EmptyHint
	}
	return o
}
