// Package topology draws the structure of a customer's plants as a
// Graphviz diagram.
//
// # Overview
//
// A [Tree] holds one customer with its plants, their production lines,
// the tank groups of each line and the tanks in each group. [Fetch] builds
// a tree from any [Source]; [APISource] adapts the backend client.
//
//	tree, err := topology.Fetch(ctx, topology.APISource(client), customer, topology.FetchOptions{})
//	dot := topology.ToDOT(tree, topology.Options{Detailed: true})
//	svg, err := topology.RenderSVG(ctx, dot)
//
// # DOT Format
//
// The generated DOT uses a left-to-right layout (rankdir=LR) so lines read
// like the physical tank rows. Tanks without a group hang directly off
// their line. Tank nodes take their fill and border colors from a
// [theme.Palette].
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is needed.
package topology
