package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/stlplant/tankview/pkg/api"
	"github.com/stlplant/tankview/pkg/errors"
	"github.com/stlplant/tankview/pkg/model"
	"github.com/stlplant/tankview/pkg/selection"
)

// listCommand creates the list command for browsing backend records.
func (c *CLI) listCommand() *cobra.Command {
	var (
		noCache    bool
		customerID int
		plantID    int
		lineID     int
		activeOnly bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List customers, plants, lines and tanks",
		Long: `List customers, plants, lines and tanks.

Plants, lines and tanks default to the current selection; use --customer,
--plant and --line to pick others.`,
	}
	cmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "disable the API response cache")

	run := func(fn func(context.Context, *api.Client, selection.Selection) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			cfg, err := c.config()
			if err != nil {
				return err
			}
			client, err := c.newClient(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			svc, store, err := c.newSelection(cfg, nil)
			if err != nil {
				return err
			}
			defer store.Close()
			sel, err := svc.Current(ctx)
			if err != nil {
				return err
			}
			return fn(ctx, client, sel)
		}
	}

	customers := &cobra.Command{
		Use:   "customers",
		Short: "List customers",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, client *api.Client, _ selection.Selection) error {
			var list []model.Customer
			err := withSpinner(ctx, "Loading customers...", func() (err error) {
				list, err = client.Customers.List(ctx)
				return err
			})
			if err != nil {
				return err
			}
			rows := make([][]string, len(list))
			for i, cu := range list {
				rows[i] = []string{strconv.Itoa(cu.ID), cu.Name, cu.Town, cu.Country}
			}
			printTable([]string{"ID", "Name", "Town", "Country"}, rows)
			printStats(plural(len(list), "customer"))
			return nil
		}),
	}

	plants := &cobra.Command{
		Use:   "plants",
		Short: "List the plants of a customer",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, client *api.Client, sel selection.Selection) error {
			id := customerID
			if id == 0 && sel.Customer != nil {
				id = sel.Customer.ID
			}
			if id == 0 {
				return errors.New(errors.ErrCodeInvalidSelection, "no customer selected (use --customer or '%s select')", appName)
			}
			var list []model.Plant
			err := withSpinner(ctx, "Loading plants...", func() (err error) {
				list, err = client.Plants.ForCustomer(ctx, id, activeOnly)
				return err
			})
			if err != nil {
				return err
			}
			rows := make([][]string, len(list))
			for i, p := range list {
				active := ""
				if p.IsActiveRevision {
					active = "✓"
				}
				rows[i] = []string{strconv.Itoa(p.ID), p.Name, strconv.Itoa(p.Revision), string(p.RevisionStatus), active, joinNonEmpty(p.Town, p.Country)}
			}
			printTable([]string{"ID", "Name", "Rev", "Status", "Active", "Location"}, rows)
			printStats(plural(len(list), "plant"))
			return nil
		}),
	}
	plants.Flags().IntVar(&customerID, "customer", 0, "customer id (default: selected customer)")
	plants.Flags().BoolVar(&activeOnly, "active-only", false, "only active revisions")

	lines := &cobra.Command{
		Use:   "lines",
		Short: "List the production lines of a plant",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, client *api.Client, sel selection.Selection) error {
			id := plantID
			if id == 0 {
				id = selectedPlantID(sel)
			}
			if id == 0 {
				return errors.New(errors.ErrCodeInvalidSelection, "no plant selected (use --plant or '%s select')", appName)
			}
			var list []model.Line
			err := withSpinner(ctx, "Loading lines...", func() (err error) {
				list, err = client.Plants.Lines(ctx, id)
				return err
			})
			if err != nil {
				return err
			}
			rows := make([][]string, len(list))
			for i, l := range list {
				rows[i] = []string{strconv.Itoa(l.ID), strconv.Itoa(l.LineNumber)}
			}
			printTable([]string{"ID", "Line"}, rows)
			printStats(plural(len(list), "line"))
			if len(list) > 0 {
				printNextStep("Render", appName+" render --line "+strconv.Itoa(list[0].ID))
			}
			return nil
		}),
	}
	lines.Flags().IntVar(&plantID, "plant", 0, "plant id (default: selected revision, then plant)")

	tanks := &cobra.Command{
		Use:   "tanks",
		Short: "List the tanks of a line",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, client *api.Client, _ selection.Selection) error {
			if lineID == 0 {
				return errors.New(errors.ErrCodeInvalidInput, "--line is required")
			}
			var list []model.Tank
			err := withSpinner(ctx, "Loading tanks...", func() (err error) {
				list, err = client.Lines.Tanks(ctx, lineID)
				return err
			})
			if err != nil {
				return err
			}
			rows := make([][]string, len(list))
			for i, t := range list {
				rows[i] = []string{
					strconv.Itoa(t.ID), t.NumberLabel("-"), t.NameLabel("-"),
					t.Width.String(), t.Length.String(), t.Depth.String(), t.Gap().String(),
				}
			}
			printTable([]string{"ID", "No.", "Name", "Width", "Length", "Depth", "Gap"}, rows)
			printStats(plural(len(list), "tank"))
			return nil
		}),
	}
	tanks.Flags().IntVar(&lineID, "line", 0, "line id")

	cmd.AddCommand(customers, plants, lines, tanks)
	return cmd
}

// selectedPlantID prefers the selected revision, which is itself a plant
// record, over the selected plant.
func selectedPlantID(sel selection.Selection) int {
	switch {
	case sel.Revision != nil:
		return sel.Revision.ID
	case sel.Plant != nil:
		return sel.Plant.ID
	}
	return 0
}
