package theme

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/stlplant/tankview/pkg/errors"
)

var namedColors = map[string]string{
	"white":   "#ffffff",
	"black":   "#000000",
	"red":     "#ff0000",
	"green":   "#008000",
	"blue":    "#0000ff",
	"gray":    "#808080",
	"grey":    "#808080",
	"orange":  "#ffa500",
	"yellow":  "#ffff00",
	"silver":  "#c0c0c0",
	"navy":    "#000080",
	"teal":    "#008080",
	"maroon":  "#800000",
	"purple":  "#800080",
	"fuchsia": "#ff00ff",
	"lime":    "#00ff00",
	"olive":   "#808000",
	"aqua":    "#00ffff",
}

// ParseColor parses "#rgb", "#rrggbb", "rgb(r,g,b)", "rgba(r,g,b,a)" and a
// small set of CSS color names.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[s]; ok {
		s = hex
	}
	if strings.HasPrefix(s, "rgb") {
		return parseRGBFunc(s)
	}
	if !isHexColor(s) {
		return color.NRGBA{}, errors.New(errors.ErrCodeInvalidTheme, "invalid color %q (want #rgb or #rrggbb)", s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, errors.Wrap(errors.ErrCodeInvalidTheme, err, "invalid color %q", s)
	}
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// MustColor is like ParseColor but falls back to opaque black.
func MustColor(s string) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		return color.NRGBA{A: 255}
	}
	return c
}

// Darken returns hex darkened towards black by t in [0,1]. Invalid input is
// returned unchanged.
func Darken(hex string, t float64) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	return c.BlendLab(colorful.Color{R: 0, G: 0, B: 0}, t).Clamped().Hex()
}

// IsWhite reports whether s names pure white.
func IsWhite(s string) bool {
	c, err := ParseColor(s)
	return err == nil && c.R == 255 && c.G == 255 && c.B == 255
}

// isHexColor reports whether s is exactly "#rgb" or "#rrggbb".
func isHexColor(s string) bool {
	if (len(s) != 4 && len(s) != 7) || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return false
		}
	}
	return true
}

func parseRGBFunc(s string) (color.NRGBA, error) {
	var args string
	switch {
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		args = s[len("rgba(") : len(s)-1]
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		args = s[len("rgb(") : len(s)-1]
	default:
		return color.NRGBA{}, errors.New(errors.ErrCodeInvalidTheme, "invalid color %q", s)
	}
	parts := strings.Split(args, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.NRGBA{}, errors.New(errors.ErrCodeInvalidTheme, "invalid color %q", s)
	}
	var ch [3]uint8
	for i := range 3 {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return color.NRGBA{}, errors.New(errors.ErrCodeInvalidTheme, "invalid color %q", s)
		}
		ch[i] = uint8(v)
	}
	alpha := 1.0
	if len(parts) == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return color.NRGBA{}, errors.New(errors.ErrCodeInvalidTheme, "invalid color %q", s)
		}
		alpha = a
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: uint8(alpha*255 + 0.5)}, nil
}
