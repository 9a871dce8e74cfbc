package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/stlplant/tankview/pkg/api"
	"github.com/stlplant/tankview/pkg/errors"
	"github.com/stlplant/tankview/pkg/model"
	"github.com/stlplant/tankview/pkg/selection"
)

// selectSession bundles what the select subcommands need.
type selectSession struct {
	client *api.Client
	svc    *selection.Service
	store  selection.Store
}

func (s *selectSession) Close() error { return s.store.Close() }

// openSelect connects the API client and the selection store. The client is
// skipped when offline is set.
func (c *CLI) openSelect(ctx context.Context, offline bool) (*selectSession, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	var client *api.Client
	if !offline {
		// selections must see current backend state
		if client, err = c.newClient(ctx, cfg, true); err != nil {
			return nil, err
		}
	}
	svc, store, err := c.newSelection(cfg, client)
	if err != nil {
		return nil, err
	}
	return &selectSession{client: client, svc: svc, store: store}, nil
}

// selectCommand creates the select command and its subcommands.
func (c *CLI) selectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Choose the working customer, plant and revision",
		Long: `Choose the working customer, plant and revision.

Without a subcommand an interactive picker walks through customers, their
plants and the plant's draft revisions. Changing the customer clears the
plant and revision; changing the plant clears the revision.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSelectInteractive(cmd.Context())
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSelect(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer s.Close()
			sel, err := s.svc.Current(cmd.Context())
			if err != nil {
				return err
			}
			printSelection(sel)
			return nil
		},
	})

	cmd.AddCommand(c.selectByIDCommand("customer", func(ctx context.Context, s *selectSession, id int) (selection.Selection, error) {
		cust, err := s.client.Customers.Get(ctx, id)
		if err != nil {
			return selection.Selection{}, err
		}
		return s.svc.SelectCustomer(ctx, cust)
	}))
	cmd.AddCommand(c.selectByIDCommand("plant", func(ctx context.Context, s *selectSession, id int) (selection.Selection, error) {
		plant, err := s.client.Plants.Get(ctx, id)
		if err != nil {
			return selection.Selection{}, err
		}
		return s.svc.SelectPlant(ctx, plant)
	}))
	cmd.AddCommand(c.selectByIDCommand("revision", func(ctx context.Context, s *selectSession, id int) (selection.Selection, error) {
		rev, err := findRevision(ctx, s, id)
		if err != nil {
			return selection.Selection{}, err
		}
		return s.svc.SelectRevision(ctx, rev)
	}))

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the current selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSelect(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.svc.Clear(cmd.Context()); err != nil {
				return err
			}
			printSuccess("Selection cleared")
			return nil
		},
	})

	return cmd
}

func (c *CLI) selectByIDCommand(kind string, apply func(context.Context, *selectSession, int) (selection.Selection, error)) *cobra.Command {
	return &cobra.Command{
		Use:   kind + " <id>",
		Short: "Select a " + kind + " by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(kind, args[0])
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			s, err := c.openSelect(ctx, false)
			if err != nil {
				return err
			}
			defer s.Close()

			sel, err := apply(ctx, s, id)
			if err != nil {
				return err
			}
			printSuccess("Selected %s %d", kind, id)
			printSelection(sel)
			return nil
		},
	}
}

// findRevision looks up revision id among the revisions of the selected
// plant.
func findRevision(ctx context.Context, s *selectSession, id int) (model.PlantRevision, error) {
	sel, err := s.svc.Current(ctx)
	if err != nil {
		return model.PlantRevision{}, err
	}
	if sel.Plant == nil {
		return model.PlantRevision{}, errors.New(errors.ErrCodeInvalidSelection, "select a plant before selecting a revision")
	}
	revs, err := s.client.Plants.Revisions(ctx, sel.Plant.ID)
	if err != nil {
		return model.PlantRevision{}, err
	}
	i := slices.IndexFunc(revs, func(r model.PlantRevision) bool { return r.ID == id })
	if i < 0 {
		return model.PlantRevision{}, errors.New(errors.ErrCodeNotFound, "revision %d not found for plant %q", id, sel.Plant.Name)
	}
	return revs[i], nil
}

func (c *CLI) runSelectInteractive(ctx context.Context) error {
	s, err := c.openSelect(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	var customers []model.Customer
	err = withSpinner(ctx, "Loading customers...", func() error {
		customers, err = s.client.Customers.List(ctx)
		return err
	})
	if err != nil {
		return err
	}
	items := make([]pickerItem, len(customers))
	for i, cu := range customers {
		items[i] = pickerItem{ID: cu.ID, Title: cu.Name, Detail: joinNonEmpty(cu.Town, cu.Country)}
	}
	chosen, ok, err := runPicker("Select Customer", items)
	if err != nil || !ok {
		return err
	}
	cust := customers[slices.IndexFunc(customers, func(x model.Customer) bool { return x.ID == chosen.ID })]
	if _, err := s.svc.SelectCustomer(ctx, cust); err != nil {
		return err
	}

	var plants []model.Plant
	err = withSpinner(ctx, "Loading plants...", func() error {
		plants, err = s.client.Customers.Plants(ctx, cust.ID)
		return err
	})
	if err != nil {
		return err
	}
	items = make([]pickerItem, len(plants))
	for i, p := range plants {
		items[i] = pickerItem{ID: p.ID, Title: p.Name, Detail: plantDetail(p)}
	}
	chosen, ok, err = runPicker("Select Plant of "+cust.Name, items)
	if err != nil || !ok {
		return err
	}
	plant := plants[slices.IndexFunc(plants, func(x model.Plant) bool { return x.ID == chosen.ID })]
	if _, err := s.svc.SelectPlant(ctx, plant); err != nil {
		return err
	}

	var revs []model.PlantRevision
	err = withSpinner(ctx, "Loading revisions...", func() error {
		revs, err = s.client.Plants.Revisions(ctx, plant.ID)
		return err
	})
	if err != nil {
		return err
	}
	drafts := selection.DraftRevisions(revs)
	if len(drafts) == 0 {
		printWarning("Plant %q has no draft revision", plant.Name)
		sel, err := s.svc.Current(ctx)
		if err != nil {
			return err
		}
		printSelection(sel)
		return nil
	}
	items = make([]pickerItem, len(drafts))
	for i, r := range drafts {
		items[i] = pickerItem{ID: r.ID, Title: revisionTitle(r), Detail: r.CreatedBy}
	}
	chosen, ok, err = runPicker("Select Draft Revision", items)
	if err != nil || !ok {
		return err
	}
	rev := drafts[slices.IndexFunc(drafts, func(x model.PlantRevision) bool { return x.ID == chosen.ID })]
	sel, err := s.svc.SelectRevision(ctx, rev)
	if err != nil {
		return err
	}
	printSuccess("Selection saved")
	printSelection(sel)
	return nil
}

func printSelection(sel selection.Selection) {
	if sel.IsEmpty() {
		printInfo("Nothing selected")
		printNextStep("Choose one", appName+" select")
		return
	}
	none := StyleDim.Render("none")
	customer, plant, revision := none, none, none
	if sel.Customer != nil {
		customer = fmt.Sprintf("%s (%d)", sel.Customer.Name, sel.Customer.ID)
	}
	if sel.Plant != nil {
		plant = fmt.Sprintf("%s (%d)", sel.Plant.Name, sel.Plant.ID)
	}
	if sel.Revision != nil {
		revision = fmt.Sprintf("%s (%d)", revisionTitle(*sel.Revision), sel.Revision.ID)
	}
	printKeyValue("Customer", customer)
	printKeyValue("Plant", plant)
	printKeyValue("Revision", revision)
	if !sel.UpdatedAt.IsZero() {
		printDetail("Updated %s", sel.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
}

func revisionTitle(r model.PlantRevision) string {
	title := "rev " + strconv.Itoa(r.Revision)
	if r.RevisionName != "" {
		title += " " + r.RevisionName
	}
	return title
}

func plantDetail(p model.Plant) string {
	detail := joinNonEmpty(p.Town, p.Country)
	if p.Revision > 0 {
		detail = joinNonEmpty(detail, "rev "+strconv.Itoa(p.Revision))
	}
	if p.RevisionStatus != "" {
		detail = joinNonEmpty(detail, string(p.RevisionStatus))
	}
	return detail
}

func joinNonEmpty(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += p
	}
	return out
}
