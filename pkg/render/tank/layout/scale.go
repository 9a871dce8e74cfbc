package layout

import "github.com/stlplant/tankview/pkg/model"

const (
	smallFleetSize  = 3
	smallFleetBoost = 1.5
)

// Viewport is the drawable area in pixels.
type Viewport struct {
	Width, Height float64
}

// TankWidth returns the tank width in mm, or the default.
func TankWidth(t model.Tank, opts Options) float64 {
	return t.Width.Or(opts.normalized().DefaultWidth)
}

// TankLength returns the tank length in mm, or the default.
func TankLength(t model.Tank, opts Options) float64 {
	return t.Length.Or(opts.normalized().DefaultLength)
}

// TankGap returns the gap after the tank in mm, or the default.
func TankGap(t model.Tank, opts Options) float64 {
	return t.Gap().Or(opts.DefaultSpacing)
}

// TotalWidth returns the summed widths and gaps of tanks in mm. The last
// tank's gap counts only when opts.TrailingGap is set.
func TotalWidth(tanks []model.Tank, opts Options) float64 {
	opts = opts.normalized()
	var total float64
	for i, t := range tanks {
		total += t.Width.Or(opts.DefaultWidth)
		if i < len(tanks)-1 || opts.TrailingGap {
			total += t.Gap().Or(opts.DefaultSpacing)
		}
	}
	return total
}

// MaxLength returns the longest tank length in mm.
func MaxLength(tanks []model.Tank, opts Options) float64 {
	opts = opts.normalized()
	var longest float64
	for _, t := range tanks {
		longest = max(longest, t.Length.Or(opts.DefaultLength))
	}
	return longest
}

// ComputeScale returns the millimeter-to-pixel factor for drawing tanks in
// vp. The result always lies in [MinScale, MaxScale]. An empty list scales
// 1:1.
func ComputeScale(tanks []model.Tank, vp Viewport, opts Options) float64 {
	opts = opts.normalized()
	if len(tanks) == 0 {
		return 1
	}

	total := TotalWidth(tanks, opts)
	longest := MaxLength(tanks, opts)
	availW := vp.Width - 2*opts.Margin
	availH := vp.Height - 2*opts.Margin - opts.ReservedBand
	if availW <= 0 || availH <= 0 || total <= 0 || longest <= 0 {
		return opts.MinScale
	}

	scale := clamp(min(availW/total, availH/longest), opts.MinScale, opts.MaxScale)
	if opts.SmallFleetBoost && len(tanks) <= smallFleetSize && scale < 1 {
		scale = min(scale*smallFleetBoost, opts.MaxScale)
	}
	return scale
}

// GridCell returns the grid cell size in mm for scale.
func GridCell(scale float64, rule GridRule) float64 {
	switch {
	case scale > rule.FineAbove:
		return rule.Fine
	case scale < rule.CoarseBelow, rule.CoarseAtOrBelow && scale == rule.CoarseBelow:
		return rule.Coarse
	default:
		return rule.Normal
	}
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
