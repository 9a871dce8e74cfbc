// Package pkg holds the libraries behind tankview, a viewer for the tanks of
// surface-treatment production lines.
//
// # Overview
//
// The packages split into four areas:
//
//  1. Domain types: [model] (customers, plants, lines, tanks) and [theme].
//  2. Rendering: [render/tank] with its layout, surface and sink
//     subpackages, the page [header] and the customer [topology] graph.
//  3. Backend access: the REST [api] client on top of [httputil], plus the
//     operator [selection] state.
//  4. Infrastructure: [cache], [config], [errors], [observability] and
//     [buildinfo].
//
// # Data Flow
//
//	REST backend or tank file
//	         ↓
//	    [api] client (lines, tanks, groups)
//	         ↓
//	    [render/tank] (layout, paint, hit test)
//	         ↓
//	    PNG/JPEG/SVG/JSON/msgpack output
//
// The CLI in internal/cli and the HTTP server in internal/server both drive
// this flow; cmd/tankview is the binary.
//
// [model]: github.com/stlplant/tankview/pkg/model
// [theme]: github.com/stlplant/tankview/pkg/theme
// [render/tank]: github.com/stlplant/tankview/pkg/render/tank
// [header]: github.com/stlplant/tankview/pkg/header
// [topology]: github.com/stlplant/tankview/pkg/topology
// [api]: github.com/stlplant/tankview/pkg/api
// [httputil]: github.com/stlplant/tankview/pkg/httputil
// [selection]: github.com/stlplant/tankview/pkg/selection
// [cache]: github.com/stlplant/tankview/pkg/cache
// [config]: github.com/stlplant/tankview/pkg/config
// [errors]: github.com/stlplant/tankview/pkg/errors
// [observability]: github.com/stlplant/tankview/pkg/observability
// [buildinfo]: github.com/stlplant/tankview/pkg/buildinfo
package pkg
