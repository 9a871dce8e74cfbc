package topology

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/stlplant/tankview/pkg/api"
	"github.com/stlplant/tankview/pkg/errors"
	"github.com/stlplant/tankview/pkg/model"
)

// workers bounds concurrent line fetches.
const workers = 8

// Tree is a customer with everything below it.
type Tree struct {
	Customer model.Customer `json:"customer"`
	Plants   []Plant        `json:"plants"`
}

type Plant struct {
	model.Plant
	Lines []Line `json:"lines"`
}

type Line struct {
	model.Line
	Groups []Group `json:"groups,omitempty"`
	// Loose holds tanks that belong to no listed group.
	Loose []model.Tank `json:"loose,omitempty"`
}

type Group struct {
	model.TankGroup
	Members []model.Tank `json:"members"`
}

// TankCount returns the number of tanks in the tree.
func (t *Tree) TankCount() int {
	n := 0
	for _, p := range t.Plants {
		for _, l := range p.Lines {
			n += len(l.Loose)
			for _, g := range l.Groups {
				n += len(g.Members)
			}
		}
	}
	return n
}

// Source provides the records a tree is built from.
type Source interface {
	Plants(ctx context.Context, customerID int, activeOnly bool) ([]model.Plant, error)
	Lines(ctx context.Context, plantID int) ([]model.Line, error)
	TankGroups(ctx context.Context, lineID int) ([]model.TankGroup, error)
	Tanks(ctx context.Context, lineID int) ([]model.Tank, error)
}

type apiSource struct{ c *api.Client }

// APISource reads the tree from the backend.
func APISource(c *api.Client) Source { return apiSource{c} }

func (s apiSource) Plants(ctx context.Context, customerID int, activeOnly bool) ([]model.Plant, error) {
	return s.c.Plants.ForCustomer(ctx, customerID, activeOnly)
}

func (s apiSource) Lines(ctx context.Context, plantID int) ([]model.Line, error) {
	return s.c.Lines.List(ctx, plantID)
}

func (s apiSource) TankGroups(ctx context.Context, lineID int) ([]model.TankGroup, error) {
	return s.c.Lines.TankGroups(ctx, lineID)
}

func (s apiSource) Tanks(ctx context.Context, lineID int) ([]model.Tank, error) {
	return s.c.Lines.Tanks(ctx, lineID)
}

// FetchOptions narrows what [Fetch] loads.
type FetchOptions struct {
	// PlantID limits the tree to one plant. Zero loads every plant.
	PlantID int
	// ActiveOnly skips plant revisions that are not active.
	ActiveOnly bool
}

// Fetch builds the tree of customer from src. Lines are loaded
// concurrently; the first error cancels the rest.
func Fetch(ctx context.Context, src Source, customer model.Customer, opts FetchOptions) (*Tree, error) {
	plants, err := src.Plants(ctx, customer.ID, opts.ActiveOnly)
	if err != nil {
		return nil, err
	}
	if opts.PlantID != 0 {
		plants = slices.DeleteFunc(plants, func(p model.Plant) bool { return p.ID != opts.PlantID })
		if len(plants) == 0 {
			return nil, errors.New(errors.ErrCodeNotFound, "plant %d not found for customer %q", opts.PlantID, customer.Name)
		}
	}

	tree := &Tree{Customer: customer, Plants: make([]Plant, len(plants))}
	var jobs []*Line
	for i, p := range plants {
		lines, err := src.Lines(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		slices.SortFunc(lines, func(a, b model.Line) int { return cmp.Compare(a.LineNumber, b.LineNumber) })
		tree.Plants[i] = Plant{Plant: p, Lines: make([]Line, len(lines))}
		for j, l := range lines {
			tree.Plants[i].Lines[j].Line = l
			jobs = append(jobs, &tree.Plants[i].Lines[j])
		}
	}

	if err := fillLines(ctx, src, jobs); err != nil {
		return nil, err
	}
	return tree, nil
}

func fillLines(ctx context.Context, src Source, lines []*Line) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	queue := make(chan *Line)

	for range min(workers, len(lines)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for l := range queue {
				if err := fillLine(ctx, src, l); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
						cancel()
					}
					mu.Unlock()
				}
			}
		}()
	}

	for _, l := range lines {
		if ctx.Err() != nil {
			break
		}
		queue <- l
	}
	close(queue)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

func fillLine(ctx context.Context, src Source, l *Line) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	groups, err := src.TankGroups(ctx, l.ID)
	if err != nil {
		return err
	}
	tanks, err := src.Tanks(ctx, l.ID)
	if err != nil {
		return err
	}

	index := make(map[int]int, len(groups))
	l.Groups = make([]Group, len(groups))
	for i, g := range groups {
		g.Tanks = nil
		l.Groups[i] = Group{TankGroup: g}
		index[g.ID] = i
	}
	for _, t := range tanks {
		if i, ok := index[t.TankGroupID]; ok && t.TankGroupID != 0 {
			l.Groups[i].Members = append(l.Groups[i].Members, t)
			continue
		}
		l.Loose = append(l.Loose, t)
	}
	return nil
}
