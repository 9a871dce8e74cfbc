package surface

import (
	"image/color"
	"slices"
	"sync"
)

// OpKind identifies a recorded drawing primitive.
type OpKind string

const (
	OpClear  OpKind = "clear"
	OpFill   OpKind = "fill"
	OpStroke OpKind = "stroke"
	OpLine   OpKind = "line"
	OpText   OpKind = "text"
)

// Op is one recorded primitive. Rect ops use X/Y/W/H, lines use X/Y to
// X2/Y2.
type Op struct {
	Kind      OpKind      `json:"kind"`
	X         float64     `json:"x,omitempty"`
	Y         float64     `json:"y,omitempty"`
	W         float64     `json:"w,omitempty"`
	H         float64     `json:"h,omitempty"`
	X2        float64     `json:"x2,omitempty"`
	Y2        float64     `json:"y2,omitempty"`
	LineWidth float64     `json:"line_width,omitempty"`
	Color     color.NRGBA `json:"color"`
	Text      string      `json:"text,omitempty"`
	Size      float64     `json:"size,omitempty"`
	Bold      bool        `json:"bold,omitempty"`
	Align     Align       `json:"align,omitempty"`
}

// Recorder is a Surface that keeps a display list of everything drawn
// since the last Clear. It is safe for concurrent use.
type Recorder struct {
	mu   sync.Mutex
	w, h float64
	ops  []Op
}

// NewRecorder creates a recorder of the given size.
func NewRecorder(w, h float64) *Recorder {
	return &Recorder{w: w, h: h}
}

func (r *Recorder) Size() (float64, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.w, r.h
}

func (r *Recorder) Resize(w, h float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.w, r.h = w, h
}

// Clear starts a new frame.
func (r *Recorder) Clear(bg color.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops[:0], Op{Kind: OpClear, Color: nrgba(bg)})
}

func (r *Recorder) FillRect(x, y, w, h float64, c color.Color) {
	r.add(Op{Kind: OpFill, X: x, Y: y, W: w, H: h, Color: nrgba(c)})
}

func (r *Recorder) StrokeRect(x, y, w, h, lineWidth float64, c color.Color) {
	r.add(Op{Kind: OpStroke, X: x, Y: y, W: w, H: h, LineWidth: lineWidth, Color: nrgba(c)})
}

func (r *Recorder) Line(x1, y1, x2, y2, lineWidth float64, c color.Color) {
	r.add(Op{Kind: OpLine, X: x1, Y: y1, X2: x2, Y2: y2, LineWidth: lineWidth, Color: nrgba(c)})
}

func (r *Recorder) Text(s string, x, y float64, st TextStyle) {
	r.add(Op{Kind: OpText, X: x, Y: y, Text: s, Size: st.Size, Bold: st.Bold, Align: st.Align, Color: nrgba(st.Color)})
}

func (r *Recorder) add(op Op) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

// Ops returns a copy of the current display list.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.ops)
}

// Texts returns the text runs of the current frame in drawing order.
func (r *Recorder) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, op := range r.ops {
		if op.Kind == OpText {
			out = append(out, op.Text)
		}
	}
	return out
}

// Replay resizes dst to the recorder's size and draws the display list
// onto it.
func (r *Recorder) Replay(dst Surface) {
	r.mu.Lock()
	w, h := r.w, r.h
	ops := slices.Clone(r.ops)
	r.mu.Unlock()

	dst.Resize(w, h)
	for _, op := range ops {
		switch op.Kind {
		case OpClear:
			dst.Clear(op.Color)
		case OpFill:
			dst.FillRect(op.X, op.Y, op.W, op.H, op.Color)
		case OpStroke:
			dst.StrokeRect(op.X, op.Y, op.W, op.H, op.LineWidth, op.Color)
		case OpLine:
			dst.Line(op.X, op.Y, op.X2, op.Y2, op.LineWidth, op.Color)
		case OpText:
			dst.Text(op.Text, op.X, op.Y, TextStyle{Size: op.Size, Bold: op.Bold, Align: op.Align, Color: op.Color})
		}
	}
}

var _ Surface = (*Recorder)(nil)

// Rect returns the geometry of op, ignoring paint attributes.
func (op Op) Rect() [6]float64 {
	return [6]float64{op.X, op.Y, op.W, op.H, op.X2, op.Y2}
}
