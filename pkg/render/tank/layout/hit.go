package layout

// HitTest returns the first button containing (x, y). Buttons are tested
// in registration order.
func HitTest(buttons []Button, x, y float64) (Button, bool) {
	for _, b := range buttons {
		if b.Rect.Contains(x, y) {
			return b, true
		}
	}
	return Button{}, false
}

// LabelFor returns the button label, bold when hovered or when the
// rule always uses bold text.
func (b Button) LabelFor(hovered bool) Text {
	t := b.Label
	t.Bold = b.Bold || hovered
	return t
}

// LineWidth returns the border width for the button in its hover state.
func (b Button) LineWidth(hovered bool) float64 {
	if hovered {
		return b.HoverLineWidth
	}
	return 1
}
