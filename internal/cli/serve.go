package cli

import (
	"github.com/spf13/cobra"

	"github.com/stlplant/tankview/internal/server"
	"github.com/stlplant/tankview/pkg/api"
	"github.com/stlplant/tankview/pkg/errors"
	"github.com/stlplant/tankview/pkg/selection"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		offline bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the renderer, header and selection over HTTP",
		Long: `Serve the renderer, header and selection over HTTP.

Routes:
  GET    /healthz
  POST   /render?format=&preset=&theme=&width=&height=&hover=&grid=&buttons=
  POST   /layout                      (msgpack with Accept: application/msgpack)
  POST   /hit?x=&y=
  GET    /header?page=&theme=
  GET    /selection                   (slot from the X-Selection-Key header)
  PUT    /selection/{customer|plant|revision}
  DELETE /selection
  GET    /lines/{id}/layout.{format}
  GET    /customers/{id}/topology.{svg|dot}

With --offline the backend routes answer 501 and revisions are not checked
against the backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			ctx := cmd.Context()

			themes, err := c.themes(cfg)
			if err != nil {
				return err
			}
			renders, err := c.newCache(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer renders.Close()

			var client *api.Client
			if !offline {
				if client, err = c.newClient(ctx, cfg, false); err != nil {
					return err
				}
			}
			store, err := newSelectionStore(cfg)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "open selection store")
			}
			defer store.Close()

			opts := []server.Option{
				server.WithLogger(c.Logger),
				server.WithThemes(themes),
				server.WithCache(renders, cfg.Cache.TTL.Duration),
				server.WithRenderDefaults(cfg.Render),
			}
			var lister selection.RevisionLister
			if client != nil {
				opts = append(opts, server.WithClient(client))
				lister = client.Plants.Revisions
			}
			opts = append(opts, server.WithSelectionStore(store, lister))

			printInfo("Serving on %s", cfg.Server.Addr)
			if client != nil {
				printDetail("Backend: %s", client.BaseURL())
			}
			if err := server.New(opts...).ListenAndServe(ctx, cfg.Server); err != nil {
				return err
			}
			printSuccess("Server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&offline, "offline", false, "do not connect to the backend")

	return cmd
}
