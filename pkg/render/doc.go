// Package render groups the tank-line renderer and its supporting packages.
//
//   - [tank]: the renderer bound to a surface, with hover and click handling
//   - [tank/layout]: presets and the geometry of tanks and buttons
//   - [tank/surface]: raster and recording drawing targets
//   - [tank/sink]: PNG, JPEG, SVG, JSON and msgpack encoders
//
// The customer topology graph lives in a separate package, [topology],
// because it is rendered through Graphviz rather than a surface.
//
// [tank]: github.com/stlplant/tankview/pkg/render/tank
// [tank/layout]: github.com/stlplant/tankview/pkg/render/tank/layout
// [tank/surface]: github.com/stlplant/tankview/pkg/render/tank/surface
// [tank/sink]: github.com/stlplant/tankview/pkg/render/tank/sink
// [topology]: github.com/stlplant/tankview/pkg/topology
package render
