package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/stlplant/tankview/pkg/config"
	"github.com/stlplant/tankview/pkg/errors"
	"github.com/stlplant/tankview/pkg/render/tank/layout"
	"github.com/stlplant/tankview/pkg/render/tank/sink"
)

// layoutCommand creates the layout command for inspecting tank geometry.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		opts    renderOpts
		asJSON  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "layout [tanks.json]",
		Short: "Print the computed tank placements and edit buttons",
		Long: `Print the computed tank placements and edit buttons.

The layout is computed the same way 'render' computes it, without drawing.
Use --json for the full layout document.`,
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
			opts.noCache = noCache
			return c.runLayout(cmd.Context(), input, opts, cfg, asJSON)
		},
	}

	cmd.Flags().IntVar(&opts.lineID, "line", 0, "fetch the tanks of this line from the backend")
	cmd.Flags().StringVar(&opts.preset, "preset", "", "layout preset: detailed (default), basic")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "viewport width (default from config)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "viewport height (default from config)")
	cmd.Flags().BoolVar(&opts.noButtons, "no-buttons", false, "lay out without edit buttons")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the layout as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the API response cache")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input string, opts renderOpts, cfg config.Config, asJSON bool) error {
	tf, err := c.loadTanks(ctx, input, opts.lineID, opts.noCache, cfg)
	if err != nil {
		return err
	}
	lo, err := layout.Preset(opts.preset)
	if err != nil {
		return err
	}
	lo.ShowEditButtons = !opts.noButtons

	l := layout.Build(tf.Tanks, layout.Viewport{Width: opts.width, Height: opts.height}, lo)

	if asJSON {
		data, err := sink.RenderJSON(l)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if l.IsEmpty() {
		printInfo("%s", l.Empty.Title.Value)
		printDetail("%s", l.Empty.Hint.Value)
		return nil
	}

	printKeyValue("Viewport", fmt.Sprintf("%.0f×%.0f px", l.Width, l.Height))
	printKeyValue("Scale", fmt.Sprintf("%.4f px/mm", l.Scale))
	printKeyValue("Line width", fmt.Sprintf("%.0f mm", l.TotalWidth))
	if l.Grid.Visible {
		printKeyValue("Grid", l.Grid.Label)
	}
	printNewline()

	rows := make([][]string, 0, len(l.Tanks))
	for _, p := range l.Tanks {
		rows = append(rows, []string{
			strconv.Itoa(p.Index),
			strconv.Itoa(p.Tank.ID),
			p.Tank.NumberLabel("-"),
			p.Tank.NameLabel("-"),
			fmt.Sprintf("%.1f", p.Rect.X),
			fmt.Sprintf("%.1f", p.Rect.Y),
			fmt.Sprintf("%.1f", p.Rect.W),
			fmt.Sprintf("%.1f", p.Rect.H),
		})
	}
	printTable([]string{"#", "ID", "No.", "Name", "X", "Y", "W", "H"}, rows)

	if len(l.Buttons) > 0 {
		rows = rows[:0]
		for _, b := range l.Buttons {
			rows = append(rows, []string{
				strconv.Itoa(b.TankID),
				fmt.Sprintf("%.1f,%.1f", b.Rect.X, b.Rect.Y),
				fmt.Sprintf("%.1f×%.1f", b.Rect.W, b.Rect.H),
			})
		}
		printTable([]string{"Tank", "Button at", "Size"}, rows)
	}
	printStats(plural(len(l.Tanks), "tank"), plural(len(l.Buttons), "button"))
	return nil
}
