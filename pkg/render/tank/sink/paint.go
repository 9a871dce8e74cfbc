package sink

import (
	"image/color"

	"github.com/stlplant/tankview/pkg/render/tank/layout"
	"github.com/stlplant/tankview/pkg/render/tank/surface"
	"github.com/stlplant/tankview/pkg/theme"
)

var (
	background  = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	mutedText   = color.NRGBA{R: 0x66, G: 0x66, B: 0x66, A: 255}
	faintText   = color.NRGBA{R: 0x99, G: 0x99, B: 0x99, A: 255}
	buttonText  = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	labelPlaque = color.NRGBA{R: 255, G: 255, B: 255, A: 230}
)

// PaintOption configures [Paint].
type PaintOption func(*painter)

type painter struct {
	hovered    int
	hasHovered bool
}

// WithHovered highlights the button of the tank with the given id.
func WithHovered(tankID int) PaintOption {
	return func(p *painter) { p.hovered, p.hasHovered = tankID, true }
}

// WithHoveredPtr is WithHovered for an optional id; nil highlights nothing.
func WithHoveredPtr(tankID *int) PaintOption {
	return func(p *painter) {
		if tankID != nil {
			p.hovered, p.hasHovered = *tankID, true
		}
	}
}

type colors struct {
	tank, border, text, grid, button, hover color.NRGBA
}

func resolve(p theme.Palette) colors {
	return colors{
		tank:   theme.MustColor(p.Tank),
		border: theme.MustColor(p.TankBorder),
		text:   theme.MustColor(p.Text),
		grid:   theme.MustColor(p.Grid),
		button: theme.MustColor(p.Button),
		hover:  theme.MustColor(p.ButtonHover),
	}
}

// Paint resizes dst to the layout and draws it.
func Paint(dst surface.Surface, l layout.Layout, pal theme.Palette, opts ...PaintOption) {
	var p painter
	for _, opt := range opts {
		opt(&p)
	}
	c := resolve(pal)

	dst.Resize(l.Width, l.Height)
	dst.Clear(background)

	if l.Empty != nil {
		dst.Text(l.Empty.Title.Value, l.Empty.Title.X, l.Empty.Title.Y,
			surface.TextStyle{Size: l.Empty.Title.Size, Color: mutedText})
		dst.Text(l.Empty.Hint.Value, l.Empty.Hint.X, l.Empty.Hint.Y,
			surface.TextStyle{Size: l.Empty.Hint.Size, Color: faintText})
		return
	}

	if l.Grid.Visible {
		paintGrid(dst, l, c.grid)
	}

	for _, t := range l.Tanks {
		r := t.Rect
		dst.FillRect(r.X, r.Y, r.W, r.H, c.tank)
		dst.StrokeRect(r.X, r.Y, r.W, r.H, t.BorderWidth, c.border)
		for _, txt := range t.Labels {
			col := c.text
			if txt.Muted {
				col = mutedText
			}
			dst.Text(txt.Value, txt.X, txt.Y, surface.TextStyle{Size: txt.Size, Bold: txt.Bold, Color: col})
		}
	}

	for _, b := range l.Buttons {
		hovered := p.hasHovered && p.hovered == b.TankID
		fill := c.button
		if hovered {
			fill = c.hover
		}
		r := b.Rect
		dst.FillRect(r.X, r.Y, r.W, r.H, fill)
		dst.StrokeRect(r.X, r.Y, r.W, r.H, b.LineWidth(hovered), fill)
		txt := b.LabelFor(hovered)
		dst.Text(txt.Value, txt.X, txt.Y, surface.TextStyle{Size: txt.Size, Bold: txt.Bold, Color: buttonText})
	}
}

func paintGrid(dst surface.Surface, l layout.Layout, c color.NRGBA) {
	g, m := l.Grid, l.Margin
	if g.Step <= 0 {
		return
	}
	for x := m; x <= l.Width-m; x += g.Step {
		dst.Line(x, m, x, l.Height-m, g.LineWidth, c)
	}
	for y := m; y <= l.Height-m; y += g.Step {
		dst.Line(m, y, l.Width-m, y, g.LineWidth, c)
	}

	if g.Label == "" {
		return
	}
	x, y := l.Width-m-80, l.Height-m-20
	dst.FillRect(x-5, y-15, 75, 20, labelPlaque)
	dst.StrokeRect(x-5, y-15, 75, 20, 1, c)
	dst.Text(g.Label, x, y-1, surface.TextStyle{Size: 10, Align: surface.AlignLeft, Color: mutedText})
}
