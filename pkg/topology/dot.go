package topology

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/stlplant/tankview/pkg/errors"
	"github.com/stlplant/tankview/pkg/model"
	"github.com/stlplant/tankview/pkg/theme"
)

// Output formats of [Render].
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds tank dimensions and revision status to labels.
	Detailed bool
	// Palette colors tank nodes. The zero value uses the default palette.
	Palette theme.Palette
}

// ToDOT converts a tree to Graphviz DOT source.
func ToDOT(t *Tree, opts Options) string {
	pal := opts.Palette
	if pal.Tank == "" {
		pal = theme.NewRegistry().PaletteOrDefault(theme.Default)
	}
	tankFill := dotColor(pal.Tank, "white")
	tankBorder := dotColor(pal.TankBorder, "black")
	groupFill := dotColor(pal.Button, "lightgrey")

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	cust := fmt.Sprintf("c%d", t.Customer.ID)
	fmt.Fprintf(&buf, "  %q [label=%q, shape=folder, fontsize=18];\n", cust, customerLabel(t))

	for _, p := range t.Plants {
		pid := fmt.Sprintf("p%d", p.ID)
		fmt.Fprintf(&buf, "  %q [label=%q, shape=box3d];\n", pid, plantLabel(p, opts.Detailed))
		fmt.Fprintf(&buf, "  %q -> %q;\n", cust, pid)

		for _, l := range p.Lines {
			lid := fmt.Sprintf("l%d", l.ID)
			fmt.Fprintf(&buf, "  %q [label=%q, shape=cds];\n", lid, fmt.Sprintf("Line %d", l.LineNumber))
			fmt.Fprintf(&buf, "  %q -> %q;\n", pid, lid)

			for _, g := range l.Groups {
				gid := fmt.Sprintf("g%d", g.ID)
				fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=%q];\n", gid, groupLabel(g), groupFill)
				fmt.Fprintf(&buf, "  %q -> %q;\n", lid, gid)
				for _, tk := range g.Members {
					writeTank(&buf, gid, tk, opts.Detailed, tankFill, tankBorder)
				}
			}
			for _, tk := range l.Loose {
				writeTank(&buf, lid, tk, opts.Detailed, tankFill, tankBorder)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeTank(buf *bytes.Buffer, parent string, tk model.Tank, detailed bool, fill, border string) {
	id := fmt.Sprintf("t%d", tk.ID)
	fmt.Fprintf(buf, "  %q [label=%q, fillcolor=%q, color=%q];\n", id, tankLabel(tk, detailed), fill, border)
	fmt.Fprintf(buf, "  %q -> %q;\n", parent, id)
}

func customerLabel(t *Tree) string {
	if t.Customer.Name == "" {
		return fmt.Sprintf("Customer %d", t.Customer.ID)
	}
	return t.Customer.Name
}

func plantLabel(p Plant, detailed bool) string {
	label := p.Name
	if p.Revision > 0 || p.RevisionName != "" {
		label += fmt.Sprintf("\nrev %d", p.Revision)
		if p.RevisionName != "" {
			label += " " + p.RevisionName
		}
	}
	if detailed && p.RevisionStatus != "" {
		label += fmt.Sprintf("\n(%s)", p.RevisionStatus)
	}
	return label
}

func groupLabel(g Group) string {
	if g.Number != nil {
		return fmt.Sprintf("%d %s", *g.Number, g.Name)
	}
	return g.Name
}

func tankLabel(tk model.Tank, detailed bool) string {
	label := strings.TrimSpace(tk.NumberLabel("") + " " + tk.NameLabel(""))
	if label == "" {
		label = fmt.Sprintf("Tank %d", tk.ID)
	}
	if detailed && tk.Width.Set() && tk.Length.Set() {
		label += fmt.Sprintf("\n%s × %s mm", tk.Width, tk.Length)
	}
	return label
}

func dotColor(s, fallback string) string {
	c, err := theme.ParseColor(s)
	if err != nil || s == "" {
		return fallback
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render topology")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// Render converts t to format, either [FormatDOT] or [FormatSVG].
func Render(ctx context.Context, t *Tree, format string, opts Options) ([]byte, error) {
	dot := ToDOT(t, opts)
	switch strings.ToLower(format) {
	case FormatDOT, "gv":
		return []byte(dot), nil
	case FormatSVG, "":
		return RenderSVG(ctx, dot)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported topology format %q (want dot or svg)", format)
	}
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root element, whose pt units do
// not scale in browsers, with a pixel-sized one.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
