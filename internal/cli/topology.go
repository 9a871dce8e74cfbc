package cli

import (
	"context"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/stlplant/tankview/pkg/cache"
	"github.com/stlplant/tankview/pkg/errors"
	"github.com/stlplant/tankview/pkg/topology"
)

// topologyCommand creates the topology command for plant structure diagrams.
func (c *CLI) topologyCommand() *cobra.Command {
	var (
		customerID int
		plantID    int
		activeOnly bool
		detailed   bool
		format     string
		output     string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "topology",
		Short: "Draw a customer's plants, lines, tank groups and tanks",
		Long: `Draw a customer's plants, lines, tank groups and tanks as a Graphviz
diagram. Defaults to the selected customer.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			prog := newProgress(loggerFromContext(ctx))

			cfg, err := c.config()
			if err != nil {
				return err
			}
			backend, err := c.newCache(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			defer backend.Close()
			client, err := c.newClient(ctx, cfg, noCache)
			if err != nil {
				return err
			}

			if customerID == 0 {
				svc, store, err := c.newSelection(cfg, nil)
				if err != nil {
					return err
				}
				sel, err := svc.Current(ctx)
				store.Close()
				if err != nil {
					return err
				}
				if sel.Customer == nil {
					return errors.New(errors.ErrCodeInvalidSelection, "no customer selected (use --customer or '%s select')", appName)
				}
				customerID = sel.Customer.ID
			}

			key := cache.NewDefaultKeyer().TopologyKey(customerID, plantID, format+":"+strconv.FormatBool(detailed)+":"+strconv.FormatBool(activeOnly))
			data, hit, err := backend.Get(ctx, key)
			if err != nil || !hit {
				s := startSpinner(ctx, "Loading plant structure...")
				cust, err := client.Customers.Get(ctx, customerID)
				if err != nil {
					s.Stop()
					return err
				}
				tree, err := topology.Fetch(ctx, topology.APISource(client), cust, topology.FetchOptions{PlantID: plantID, ActiveOnly: activeOnly})
				if err != nil {
					s.Stop()
					return err
				}
				s.setMessage("Drawing " + strconv.Itoa(tree.TankCount()) + " tanks...")
				data, err = topology.Render(ctx, tree, format, topology.Options{Detailed: detailed})
				s.Stop()
				if err != nil {
					return err
				}
				if err := backend.Set(ctx, key, data, cfg.API.CacheTTL.Duration); err != nil {
					c.Logger.Debug("topology cache write failed", "err", err)
				}
			}

			if output == "" {
				output = "customer-" + strconv.Itoa(customerID) + "." + format
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "write %s", output)
			}
			prog.done("Topology of customer " + strconv.Itoa(customerID))
			printSuccess("Topology complete")
			printFile(output)
			return nil
		},
	}

	cmd.Flags().IntVar(&customerID, "customer", 0, "customer id (default: selected customer)")
	cmd.Flags().IntVar(&plantID, "plant", 0, "limit to one plant")
	cmd.Flags().BoolVar(&activeOnly, "active-only", false, "only active plant revisions")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "add tank dimensions and revision status")
	cmd.Flags().StringVarP(&format, "format", "f", topology.FormatSVG, "output format: svg, dot")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: customer-<id>.<format>)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
