package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stlplant/tankview/pkg/config"
	"github.com/stlplant/tankview/pkg/errors"
	"github.com/stlplant/tankview/pkg/model"
	"github.com/stlplant/tankview/pkg/render/tank"
	"github.com/stlplant/tankview/pkg/render/tank/layout"
	"github.com/stlplant/tankview/pkg/render/tank/sink"
	"github.com/stlplant/tankview/pkg/render/tank/surface"
)

// canvasHandle is the surface handle the CLI binds renderers to.
const canvasHandle = "tankLayoutCanvas"

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string  // output file path
	lineID    int     // fetch tanks of this line from the API
	preset    string  // layout preset: basic or detailed
	theme     string  // palette name
	width     float64 // container width in pixels
	height    float64 // container height in pixels
	format    string  // png, jpeg, gif, tiff, bmp, svg, json, msgpack
	hover     int     // tank id drawn hovered
	at        string  // "x,y" pointer position for hit testing
	noGrid    bool    // hide the background grid
	noButtons bool    // hide the edit buttons
	noCache   bool    // bypass the API response cache
}

// renderCommand creates the render command for drawing tank lines.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [tanks.json]",
		Short: "Render a tank line to an image",
		Long: `Render a tank line to an image.

Tanks are read from a JSON file (an array of tanks or {"line": ..., "tanks": [...]},
"-" for stdin) or fetched from the backend with --line.

With --at x,y the pointer is moved to that position before export: a hit
highlights the tank's edit button and reports the tank that would be edited.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			if input == "" && opts.lineID == 0 {
				return errors.New(errors.ErrCodeInvalidInput, "need a tanks file or --line")
			}
			cfg, err := c.config()
			if err != nil {
				return err
			}
			applyRenderDefaults(cmd, &opts, cfg)
			return c.runRender(cmd.Context(), input, opts, cfg)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.<format> or line-<id>.<format>)")
	cmd.Flags().IntVar(&opts.lineID, "line", 0, "fetch the tanks of this line from the backend")
	cmd.Flags().StringVar(&opts.preset, "preset", "", "layout preset: detailed (default), basic")
	cmd.Flags().StringVar(&opts.theme, "theme", "", "palette: default, sales, engineering or a custom name")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "container width (default from config)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "container height (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: png, jpeg, gif, tiff, bmp, svg, json, msgpack")
	cmd.Flags().IntVar(&opts.hover, "hover", 0, "draw the edit button of this tank id hovered")
	cmd.Flags().StringVar(&opts.at, "at", "", "pointer position x,y to hit test")
	cmd.Flags().BoolVar(&opts.noGrid, "no-grid", false, "hide the background grid")
	cmd.Flags().BoolVar(&opts.noButtons, "no-buttons", false, "hide the edit buttons")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the API response cache")

	return cmd
}

// applyRenderDefaults fills unset flags from the config file.
func applyRenderDefaults(cmd *cobra.Command, opts *renderOpts, cfg config.Config) {
	if opts.preset == "" {
		opts.preset = cfg.Render.Preset
	}
	if opts.theme == "" {
		opts.theme = cfg.Render.Theme
	}
	if opts.width <= 0 {
		opts.width = float64(cfg.Render.Width)
	}
	if opts.height <= 0 {
		opts.height = float64(cfg.Render.Height)
	}
	if opts.format == "" {
		opts.format = cfg.Render.Format
	}
	if !cmd.Flags().Changed("no-grid") && !cfg.Render.Grid {
		opts.noGrid = true
	}
	if !cmd.Flags().Changed("no-buttons") && !cfg.Render.EditButtons {
		opts.noButtons = true
	}
}

// runRender loads the tanks, draws them and writes the output file.
func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts, cfg config.Config) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	tf, err := c.loadTanks(ctx, input, opts.lineID, opts.noCache, cfg)
	if err != nil {
		return err
	}

	r, err := c.newRenderer(opts, cfg)
	if err != nil {
		return err
	}
	defer r.Close()

	var edited *model.Tank
	r.OnTankEdit = func(t model.Tank) { edited = &t }

	var hovered *int
	if opts.hover != 0 {
		hovered = &opts.hover
	}
	r.DrawLayout(tf.Tanks, tf.Line, tank.DrawOptions{HoveredTankID: hovered})

	if opts.at != "" {
		x, y, err := parsePoint(opts.at)
		if err != nil {
			return err
		}
		cursor := r.PointerMove(x, y)
		r.Click(x, y)
		if edited != nil {
			printInfo("Pointer at %s hits tank %d (%s), cursor %s", opts.at, edited.ID, edited.NameLabel("unnamed"), cursor)
		} else {
			printInfo("Pointer at %s hits no edit button", opts.at)
		}
	}

	format := sink.NormalizeFormat(opts.format)
	data, err := r.Export(format)
	if err != nil {
		return err
	}

	path := opts.output
	if path == "" {
		path = defaultOutput(input, opts.lineID, format)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}

	l := r.Layout()
	prog.done("Rendered " + describeSource(input, opts.lineID))
	printSuccess("Render complete")
	printFile(path)
	if l.IsEmpty() {
		printStats("empty line", l.Empty.Title.Value)
	} else {
		printStats(
			plural(len(l.Tanks), "tank"),
			plural(len(l.Buttons), "button"),
			fmt.Sprintf("scale %.4f px/mm", l.Scale),
			fmt.Sprintf("%.0f×%.0f px", l.Width, l.Height),
		)
	}
	return nil
}

// newRenderer binds a tank renderer to an in-memory canvas sized to the
// container plus the renderer's inset.
func (c *CLI) newRenderer(opts renderOpts, cfg config.Config) (*tank.Renderer, error) {
	preset, err := layout.Preset(opts.preset)
	if err != nil {
		return nil, err
	}
	themes, err := c.themes(cfg)
	if err != nil {
		return nil, err
	}
	if opts.theme != "" {
		if _, ok := themes.Palette(opts.theme); !ok {
			return nil, errors.New(errors.ErrCodeInvalidTheme, "unknown theme %q (known: %s)", opts.theme, strings.Join(themes.PaletteNames(), ", "))
		}
	}

	reg := surface.NewRegistry()
	reg.Register(canvasHandle, surface.NewRecorder(opts.width+4, opts.height+4))

	ropts := []tank.Option{
		tank.WithLayout(preset),
		tank.WithThemes(themes),
		tank.WithGrid(!opts.noGrid),
		tank.WithEditButtons(!opts.noButtons),
		tank.WithLogger(c.Logger),
	}
	if opts.theme != "" {
		ropts = append(ropts, tank.WithTheme(opts.theme))
	}
	return tank.New(reg, canvasHandle, ropts...)
}

// loadTanks reads tanks from input or, when lineID is set, from the backend.
func (c *CLI) loadTanks(ctx context.Context, input string, lineID int, noCache bool, cfg config.Config) (tankFile, error) {
	if lineID == 0 {
		return readTanks(input)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	client, err := c.newClient(ctx, cfg, noCache)
	if err != nil {
		return tankFile{}, err
	}
	return fetchLine(ctx, client, lineID)
}

func defaultOutput(input string, lineID int, format string) string {
	ext := "." + format
	if input == "" || input == "-" {
		return "line-" + strconv.Itoa(lineID) + ext
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	if base+ext == input {
		return base + ".layout" + ext
	}
	return base + ext
}

func describeSource(input string, lineID int) string {
	if lineID != 0 {
		return "line " + strconv.Itoa(lineID)
	}
	if input == "-" {
		return "stdin"
	}
	return filepath.Base(input)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
