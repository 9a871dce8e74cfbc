package surface

import (
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Raster is an RGBA Surface backed by a gg context. Text uses the Go fonts
// so output does not depend on system font installation.
type Raster struct {
	mu    sync.Mutex
	dc    *gg.Context
	w, h  float64
	faces map[faceKey]font.Face
}

type faceKey struct {
	size float64
	bold bool
}

var (
	fontsOnce   sync.Once
	regularFont *opentype.Font
	boldFont    *opentype.Font
	fontsErr    error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if regularFont, fontsErr = opentype.Parse(goregular.TTF); fontsErr != nil {
			return
		}
		boldFont, fontsErr = opentype.Parse(gobold.TTF)
	})
	return fontsErr
}

// NewRaster creates a raster surface of the given size.
func NewRaster(w, h float64) *Raster {
	r := &Raster{faces: make(map[faceKey]font.Face)}
	r.resize(w, h)
	return r
}

func (r *Raster) Size() (float64, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.w, r.h
}

// Resize replaces the backing image. Existing pixels are discarded.
func (r *Raster) Resize(w, h float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resize(w, h)
}

func (r *Raster) resize(w, h float64) {
	r.w, r.h = max(w, 1), max(h, 1)
	r.dc = gg.NewContext(int(math.Ceil(r.w)), int(math.Ceil(r.h)))
}

func (r *Raster) Clear(bg color.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dc.SetColor(nrgba(bg))
	r.dc.Clear()
}

func (r *Raster) FillRect(x, y, w, h float64, c color.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dc.SetColor(nrgba(c))
	r.dc.DrawRectangle(x, y, w, h)
	r.dc.Fill()
}

func (r *Raster) StrokeRect(x, y, w, h, lineWidth float64, c color.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dc.SetColor(nrgba(c))
	r.dc.SetLineWidth(lineWidth)
	r.dc.DrawRectangle(x, y, w, h)
	r.dc.Stroke()
}

func (r *Raster) Line(x1, y1, x2, y2, lineWidth float64, c color.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dc.SetColor(nrgba(c))
	r.dc.SetLineWidth(lineWidth)
	r.dc.DrawLine(x1, y1, x2, y2)
	r.dc.Stroke()
}

// Text draws s with its baseline at y. Text is skipped if the fonts
// cannot be loaded.
func (r *Raster) Text(s string, x, y float64, st TextStyle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	face, err := r.face(st.Size, st.Bold)
	if err != nil {
		return
	}
	r.dc.SetFontFace(face)
	r.dc.SetColor(nrgba(st.Color))
	ax := 0.5
	if st.Align == AlignLeft {
		ax = 0
	}
	r.dc.DrawStringAnchored(s, x, y, ax, 0)
}

func (r *Raster) face(size float64, bold bool) (font.Face, error) {
	key := faceKey{size: math.Round(size*4) / 4, bold: bold}
	if f, ok := r.faces[key]; ok {
		return f, nil
	}
	if err := loadFonts(); err != nil {
		return nil, err
	}
	src := regularFont
	if bold {
		src = boldFont
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    max(key.size, 1),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	r.faces[key] = f
	return f, nil
}

// Image returns the current frame.
func (r *Raster) Image() image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dc.Image()
}

var _ Surface = (*Raster)(nil)
