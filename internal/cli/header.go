package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stlplant/tankview/pkg/errors"
	"github.com/stlplant/tankview/pkg/header"
)

// headerCommand creates the header command for rendering page banners.
func (c *CLI) headerCommand() *cobra.Command {
	var (
		opts   header.Options
		output string
		asJSON bool
		pages  bool
	)

	cmd := &cobra.Command{
		Use:   "header",
		Short: "Render a page header as HTML",
		Long: `Render a page header as HTML.

The page selects title, subtitle and icon from the page table; the theme
selects the banner colors (sales, engineering, training, simulation).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pages {
				for _, p := range header.Pages() {
					entry, _ := header.Lookup(p)
					printKeyValue(p, entry.Title)
				}
				return nil
			}

			cfg, err := c.config()
			if err != nil {
				return err
			}
			if opts.Themes, err = c.themes(cfg); err != nil {
				return err
			}
			view, err := header.Resolve(opts)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if asJSON {
				enc := json.NewEncoder(&buf)
				enc.SetIndent("", "  ")
				err = enc.Encode(view)
			} else {
				err = header.Render(&buf, view)
			}
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "render header")
			}

			if output == "" {
				_, err := out.Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "write %s", output)
			}
			printSuccess("Header for %s", strings.TrimSpace(view.Title))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Page, "page", "", "page file name (e.g. sales.html)")
	cmd.Flags().StringVar(&opts.Theme, "theme", "", "work context: sales, engineering, training, simulation")
	cmd.Flags().StringVar(&opts.Title, "title", "", "override the page title")
	cmd.Flags().StringVar(&opts.Subtitle, "subtitle", "", "override the subtitle")
	cmd.Flags().StringVar(&opts.Icon, "icon", "", "override the Bootstrap icon class")
	cmd.Flags().StringVar(&opts.BackURL, "back", "", "explicit back button URL")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the resolved header as JSON")
	cmd.Flags().BoolVar(&pages, "pages", false, "list the known pages")

	return cmd
}
