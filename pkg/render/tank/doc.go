// Package tank draws a production line's tanks onto a bound surface and
// handles pointer interaction with the per-tank "Edit" buttons.
//
// A [Renderer] is created against a surface handle in a
// [surface.Registry]. [Renderer.DrawLayout] computes a [layout.Layout] for
// the tanks, paints it into an internal frame and replays the frame onto
// the bound surface. Hover repaints reuse the last layout; only
// [Renderer.DrawLayout], theme switches and container resizes recompute
// geometry.
//
//	reg := surface.NewRegistry()
//	reg.Register("tankLayoutCanvas", surface.NewRaster(1200, 600))
//
//	r, err := tank.New(reg, "tankLayoutCanvas", tank.WithLayout(layout.Basic()))
//	if err != nil {
//	    return err
//	}
//	r.OnTankEdit = func(t model.Tank) { openEditor(t.ID) }
//	r.DrawLayout(tanks, line, tank.DrawOptions{})
//
//	if r.PointerMove(x, y) == tank.CursorPointer { ... }
//	png, err := r.ExportImage("png")
//
// The renderer is safe for concurrent use. Callbacks run without the
// renderer's lock held, so they may call back into it.
package tank
