// Package sink turns a computed [layout.Layout] into pixels or bytes.
//
// # Painting
//
// [Paint] draws a layout onto any [surface.Surface]: background, grid,
// tanks with their labels, and the "Edit" buttons. Hover state is a paint
// option, not part of the layout, so highlighting a button never moves
// anything.
//
//	sink.Paint(dst, l, palette, sink.WithHovered(tankID))
//
// # Output Formats
//
//   - SVG: [RenderSVG]
//   - PNG, JPEG, GIF, TIFF, BMP: [RenderImage] via a raster surface
//   - JSON and msgpack: [RenderJSON], [RenderMsgpack] (geometry and hit-regions)
//
// [ExportFrame] re-encodes an already painted frame recorded by a
// [surface.Recorder].
package sink
