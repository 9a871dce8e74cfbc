package surface

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image/color"
	"sync"
)

const svgFontFamily = `-apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif`

// SVG is a Surface that builds an SVG document. Clear discards everything
// drawn so far.
type SVG struct {
	mu   sync.Mutex
	w, h float64
	body bytes.Buffer
}

// NewSVG creates an SVG surface of the given size.
func NewSVG(w, h float64) *SVG {
	return &SVG{w: w, h: h}
}

func (s *SVG) Size() (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w, s.h
}

func (s *SVG) Resize(w, h float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w, s.h = w, h
}

func (s *SVG) Clear(bg color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.body.Reset()
	fmt.Fprintf(&s.body, `  <rect x="0" y="0" width="%.2f" height="%.2f" %s/>`+"\n", s.w, s.h, paint("fill", bg))
}

func (s *SVG) FillRect(x, y, w, h float64, c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(&s.body, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" %s/>`+"\n", x, y, w, h, paint("fill", c))
}

func (s *SVG) StrokeRect(x, y, w, h, lineWidth float64, c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(&s.body, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" %s stroke-width="%.2f"/>`+"\n",
		x, y, w, h, paint("stroke", c), lineWidth)
}

func (s *SVG) Line(x1, y1, x2, y2, lineWidth float64, c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(&s.body, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" %s stroke-width="%.2f"/>`+"\n",
		x1, y1, x2, y2, paint("stroke", c), lineWidth)
}

func (s *SVG) Text(str string, x, y float64, st TextStyle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	anchor := "middle"
	if st.Align == AlignLeft {
		anchor = "start"
	}
	weight := "normal"
	if st.Bold {
		weight = "bold"
	}
	fmt.Fprintf(&s.body, `  <text x="%.2f" y="%.2f" font-family="%s" font-size="%.2f" font-weight="%s" text-anchor="%s" %s>%s</text>`+"\n",
		x, y, svgFontFamily, st.Size, weight, anchor, paint("fill", st.Color), escapeXML(str))
}

// Bytes returns the complete SVG document.
func (s *SVG) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		s.w, s.h, s.w, s.h)
	buf.Write(s.body.Bytes())
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func paint(attr string, c color.Color) string {
	n := nrgba(c)
	out := fmt.Sprintf(`%s="#%02x%02x%02x"`, attr, n.R, n.G, n.B)
	if n.A < 255 {
		out += fmt.Sprintf(` %s-opacity="%.2f"`, attr, float64(n.A)/255)
	}
	return out
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

var _ Surface = (*SVG)(nil)
