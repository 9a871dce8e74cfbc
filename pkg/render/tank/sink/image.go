package sink

import (
	"bytes"
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/stlplant/tankview/pkg/errors"
	"github.com/stlplant/tankview/pkg/render/tank/layout"
	"github.com/stlplant/tankview/pkg/render/tank/surface"
	"github.com/stlplant/tankview/pkg/theme"
)

// Output formats.
const (
	FormatPNG     = "png"
	FormatJPEG    = "jpeg"
	FormatGIF     = "gif"
	FormatTIFF    = "tiff"
	FormatBMP     = "bmp"
	FormatSVG     = "svg"
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// jpegQuality matches the default quality of browser canvas exports.
const jpegQuality = 92

// NormalizeFormat lower-cases format, strips a leading dot, maps aliases
// and defaults to PNG.
func NormalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	switch f {
	case "":
		return FormatPNG
	case "jpg":
		return FormatJPEG
	case "tif":
		return FormatTIFF
	case "mpk", "msgp":
		return FormatMsgpack
	}
	return f
}

// IsRaster reports whether format is encoded from a raster image.
func IsRaster(format string) bool {
	_, err := imaging.FormatFromExtension(NormalizeFormat(format))
	return err == nil
}

// ContentType returns the MIME type for format.
func ContentType(format string) string {
	switch NormalizeFormat(format) {
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	case FormatGIF:
		return "image/gif"
	case FormatTIFF:
		return "image/tiff"
	case FormatBMP:
		return "image/bmp"
	case FormatSVG:
		return "image/svg+xml"
	case FormatJSON:
		return "application/json"
	case FormatMsgpack:
		return "application/msgpack"
	default:
		return "application/octet-stream"
	}
}

// Encode writes img to w in the given raster format.
func Encode(w io.Writer, img image.Image, format string) error {
	f, err := imaging.FormatFromExtension(NormalizeFormat(format))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "unsupported image format %q", format)
	}
	if err := imaging.Encode(w, img, f, imaging.JPEGQuality(jpegQuality)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", format)
	}
	return nil
}

// RenderSVG paints l as an SVG document.
func RenderSVG(l layout.Layout, pal theme.Palette, opts ...PaintOption) []byte {
	s := surface.NewSVG(l.Width, l.Height)
	Paint(s, l, pal, opts...)
	return s.Bytes()
}

// RenderRaster paints l onto a new raster surface.
func RenderRaster(l layout.Layout, pal theme.Palette, opts ...PaintOption) image.Image {
	r := surface.NewRaster(l.Width, l.Height)
	Paint(r, l, pal, opts...)
	return r.Image()
}

// RenderImage paints l and encodes it in any supported format, including
// SVG, JSON and msgpack.
func RenderImage(l layout.Layout, pal theme.Palette, format string, opts ...PaintOption) ([]byte, error) {
	switch f := NormalizeFormat(format); f {
	case FormatSVG:
		return RenderSVG(l, pal, opts...), nil
	case FormatJSON:
		return RenderJSON(l)
	case FormatMsgpack:
		return RenderMsgpack(l)
	default:
		if !IsRaster(f) {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
		}
		var buf bytes.Buffer
		if err := Encode(&buf, RenderRaster(l, pal, opts...), f); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}

// ExportFrame re-encodes a recorded frame as SVG or a raster format.
func ExportFrame(frame *surface.Recorder, format string) ([]byte, error) {
	f := NormalizeFormat(format)
	if f == FormatSVG {
		w, h := frame.Size()
		s := surface.NewSVG(w, h)
		frame.Replay(s)
		return s.Bytes(), nil
	}
	if !IsRaster(f) {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported image format %q", format)
	}
	w, h := frame.Size()
	r := surface.NewRaster(w, h)
	frame.Replay(r)
	var buf bytes.Buffer
	if err := Encode(&buf, r.Image(), f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
