package layout

import (
	"fmt"
	"strconv"

	"github.com/stlplant/tankview/pkg/model"
)

// Rect is an axis-aligned rectangle in surface pixels. X/Y is the top-left
// corner.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// CenterX returns the horizontal center of r.
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// CenterY returns the vertical center of r.
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// Bottom returns the lower edge of r.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Text is a horizontally centered label. Y is the baseline.
type Text struct {
	Value string  `json:"value" msgpack:"value"`
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	Size  float64 `json:"size" msgpack:"size"`
	Bold  bool    `json:"bold,omitempty" msgpack:"bold,omitempty"`
	Muted bool    `json:"muted,omitempty" msgpack:"muted,omitempty"`
}

// Placement is one drawn tank.
type Placement struct {
	Index       int        `json:"index" msgpack:"index"`
	Tank        model.Tank `json:"tank" msgpack:"tank"`
	Rect        Rect       `json:"rect" msgpack:"rect"`
	BorderWidth float64    `json:"border_width" msgpack:"border_width"`
	Labels      []Text     `json:"labels" msgpack:"labels"`
}

// Button is an "Edit" hit-region. It is valid only for the layout that
// produced it.
type Button struct {
	TankID         int        `json:"tank_id" msgpack:"tank_id"`
	Index          int        `json:"index" msgpack:"index"`
	Rect           Rect       `json:"rect" msgpack:"rect"`
	Label          Text       `json:"label" msgpack:"label"`
	Bold           bool       `json:"bold,omitempty" msgpack:"bold,omitempty"`
	HoverLineWidth float64    `json:"hover_line_width" msgpack:"hover_line_width"`
	Tank           model.Tank `json:"-" msgpack:"-"`
}

// Grid describes the background grid.
type Grid struct {
	Visible   bool    `json:"visible" msgpack:"visible"`
	Cell      float64 `json:"cell_mm" msgpack:"cell_mm"`
	Step      float64 `json:"step_px" msgpack:"step_px"`
	LineWidth float64 `json:"line_width" msgpack:"line_width"`
	Label     string  `json:"label,omitempty" msgpack:"label,omitempty"`
}

// Empty holds the two lines shown when there is nothing to draw.
type Empty struct {
	Title Text `json:"title" msgpack:"title"`
	Hint  Text `json:"hint" msgpack:"hint"`
}

// Layout is the full geometry of one paint.
type Layout struct {
	Width      float64     `json:"width" msgpack:"width"`
	Height     float64     `json:"height" msgpack:"height"`
	Margin     float64     `json:"margin" msgpack:"margin"`
	Scale      float64     `json:"scale" msgpack:"scale"`
	TotalWidth float64     `json:"total_width_mm" msgpack:"total_width_mm"`
	StartX     float64     `json:"start_x" msgpack:"start_x"`
	CenterY    float64     `json:"center_y" msgpack:"center_y"`
	Grid       Grid        `json:"grid" msgpack:"grid"`
	Tanks      []Placement `json:"tanks" msgpack:"tanks"`
	Buttons    []Button    `json:"buttons" msgpack:"buttons"`
	Empty      *Empty      `json:"empty,omitempty" msgpack:"empty,omitempty"`
	// Clipped is set when the line needed more than Options.MaxWidth.
	Clipped bool `json:"clipped,omitempty" msgpack:"clipped,omitempty"`
}

// IsEmpty reports whether the layout shows the empty state.
func (l Layout) IsEmpty() bool { return l.Empty != nil }

// Build lays out tanks in order inside vp.
//
// With ScrollOnOverflow the returned Width may exceed vp.Width so that the
// whole line fits at the chosen scale. Missing tank fields fall back to the
// option defaults; Build never fails.
func Build(tanks []model.Tank, vp Viewport, opts Options) Layout {
	opts = opts.normalized()
	l := Layout{
		Width:  max(vp.Width, 0),
		Height: max(vp.Height, 0),
		Margin: opts.Margin,
		Scale:  1,
	}

	if len(tanks) == 0 {
		if opts.ScrollOnOverflow {
			l.Width = max(l.Width, 2*opts.Margin+opts.ScrollExtra)
		}
		l.Empty = emptyState(l.Width, l.Height, opts)
		return l
	}

	l.Scale = ComputeScale(tanks, vp, opts)
	l.TotalWidth = TotalWidth(tanks, opts)
	scaled := l.TotalWidth * l.Scale
	if opts.ScrollOnOverflow {
		l.Width = max(l.Width, scaled+2*opts.Margin+opts.ScrollExtra)
		if opts.MaxWidth > 0 && l.Width > opts.MaxWidth {
			l.Width = max(opts.MaxWidth, vp.Width)
			l.Clipped = true
		}
	}

	availW := l.Width - 2*opts.Margin
	availH := l.Height - 2*opts.Margin - opts.ReservedBand
	l.StartX = opts.Margin + max(0, (availW-scaled)/2)
	l.CenterY = opts.Margin + availH/2

	if opts.ShowGrid {
		l.Grid = buildGrid(l.Scale, opts.Grid)
	}

	l.Tanks = make([]Placement, 0, len(tanks))
	x := l.StartX
	for i, t := range tanks {
		w := t.Width.Or(opts.DefaultWidth) * l.Scale
		h := t.Length.Or(opts.DefaultLength) * l.Scale
		rect := Rect{X: x, Y: l.CenterY - h/2, W: w, H: h}

		p := Placement{
			Index:       i,
			Tank:        t,
			Rect:        rect,
			BorderWidth: max(1, l.Scale*0.5),
		}
		showButton := opts.ShowEditButtons &&
			w > opts.Button.MinTankWidth && h > opts.Button.MinTankLength
		p.Labels = labels(t, rect, l.Scale, showButton, opts)
		l.Tanks = append(l.Tanks, p)

		if showButton {
			l.Buttons = append(l.Buttons, editButton(i, t, rect, opts))
		}

		x += (t.Width.Or(opts.DefaultWidth) + t.Gap().Or(opts.DefaultSpacing)) * l.Scale
	}
	return l
}

func buildGrid(scale float64, rule GridRule) Grid {
	cell := GridCell(scale, rule)
	step := cell * scale
	g := Grid{Cell: cell, Step: step, LineWidth: rule.LineWidth}
	if step <= rule.MinStep {
		return g
	}
	g.Visible = true
	if rule.Label {
		g.Label = "Grid: " + formatCell(cell)
	}
	return g
}

func formatCell(mm float64) string {
	if mm >= 1000 {
		return strconv.FormatFloat(mm/1000, 'f', -1, 64) + "m"
	}
	return strconv.FormatFloat(mm, 'f', -1, 64) + "mm"
}

func labels(t model.Tank, r Rect, scale float64, withButton bool, opts Options) []Text {
	cx, cy := r.CenterX(), r.CenterY()

	switch opts.Labels {
	case LabelNumberName:
		base := clamp(scale*12, 10, 16)
		detail := clamp(scale*8, 8, 12)
		out := []Text{{Value: t.NumberLabel("?"), X: cx, Y: cy - base/2, Size: base, Bold: true}}
		if t.Name != "" {
			out = append(out, Text{Value: t.Name, X: cx, Y: cy + base/2, Size: max(base-2, 8)})
		}
		if showDims(r, withButton, opts) {
			out = append(out, Text{
				Value: fmt.Sprintf("%s×%smm", dim(t.Width), dim(t.Length)),
				X:     cx,
				Y:     r.Bottom() - detail,
				Size:  detail,
				Muted: true,
			})
		}
		return out

	default:
		base := scale * opts.FontSize * opts.FontSizeMultiplier
		name := clamp(base, 16, 28)
		detail := clamp(base*0.8, 12, 18)
		out := []Text{{Value: t.NameLabel("no name"), X: cx, Y: cy - name/3, Size: name, Bold: true}}
		if showDims(r, withButton, opts) {
			out = append(out, Text{
				Value: fmt.Sprintf("%s × %s mm", dim(t.Width), dim(t.Length)),
				X:     cx,
				Y:     cy + name/2,
				Size:  detail,
			})
		}
		return out
	}
}

func showDims(r Rect, withButton bool, opts Options) bool {
	if opts.DimsWithButtons && !withButton {
		return false
	}
	return r.W > opts.DimsMinWidth && r.H > opts.DimsMinLength
}

func dim(m model.MM) string {
	if !m.Set() {
		return "?"
	}
	return m.String()
}

func editButton(i int, t model.Tank, tank Rect, opts Options) Button {
	rule := opts.Button
	w, h := rule.Width, rule.Height
	if w <= 0 || h <= 0 {
		w = clamp(tank.W*0.6, 30, 60)
		h = clamp(tank.H*0.1, 15, 25)
	}
	offset := rule.Offset
	if offset <= 0 {
		offset = opts.Padding
	}
	font := rule.FontSize
	if font <= 0 {
		font = clamp(h*0.6, 8, 12)
	}

	r := Rect{X: tank.CenterX() - w/2, Y: tank.Bottom() + offset, W: w, H: h}
	return Button{
		TankID: t.ID,
		Index:  i,
		Rect:   r,
		Label: Text{
			Value: "Edit",
			X:     r.CenterX(),
			Y:     r.CenterY() + font/3,
			Size:  font,
			Bold:  rule.Bold,
		},
		Bold:           rule.Bold,
		HoverLineWidth: rule.HoverLineWidth,
		Tank:           t,
	}
}

func emptyState(w, h float64, opts Options) *Empty {
	return &Empty{
		Title: Text{Value: opts.EmptyTitle, X: w / 2, Y: h/2 - 10, Size: 20},
		Hint:  Text{Value: opts.EmptyHint, X: w / 2, Y: h/2 + 20, Size: 14},
	}
}
