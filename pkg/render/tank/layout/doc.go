// Package layout computes the geometry of a tank line drawing.
//
// Given an ordered list of tanks and a viewport, [Build] chooses a
// millimeter-to-pixel scale, places the tanks left to right on a shared
// horizontal axis, sizes their labels, selects a background grid cell and
// registers one "Edit" hit-region per tank that is large enough to carry a
// button. The result is a plain [Layout] value; painting it is the job of
// the sink package and interaction is the job of the tank renderer.
//
// # Scale
//
// The scale is the largest value that fits both the summed tank widths
// (plus gaps) into the available width and the longest tank into the
// available height:
//
//	scale = min((W - 2·margin) / totalWidth, (H - 2·margin - band) / maxLength)
//
// clamped to [MinScale, MaxScale]. With SmallFleetBoost, lines of three
// tanks or fewer that would render below 1:1 are enlarged by 1.5.
//
// # Presets
//
// Two presentation presets share the algorithm and differ only in
// [Options]: [Basic] (large labels, fixed-size buttons, trailing gap
// counted, horizontal growth on overflow) and [Detailed] (number and name
// labels, proportional buttons, grid label, small-fleet boost).
package layout
