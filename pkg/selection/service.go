package selection

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/stlplant/tankview/pkg/errors"
	"github.com/stlplant/tankview/pkg/model"
)

// RevisionLister returns the revisions of a plant. *api.Client's
// Plants.Revisions satisfies it.
type RevisionLister func(ctx context.Context, plantID int) ([]model.PlantRevision, error)

// Service reads and changes a selection. It is safe for concurrent use;
// writes are serialized.
type Service struct {
	store     Store
	key       string
	revisions RevisionLister
	logger    *log.Logger
	now       func() time.Time

	mu     sync.Mutex
	subsMu sync.Mutex
	subs   map[int]func(Selection)
	nextID int
}

// ServiceOption configures a [Service].
type ServiceOption func(*Service)

// WithKey stores the selection under key instead of [DefaultKey].
func WithKey(key string) ServiceOption {
	return func(s *Service) {
		if key != "" {
			s.key = key
		}
	}
}

// WithRevisionLister verifies selected revisions against the revisions the
// backend reports for the selected plant.
func WithRevisionLister(l RevisionLister) ServiceOption {
	return func(s *Service) { s.revisions = l }
}

func WithLogger(l *log.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a service over store.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		key:    DefaultKey,
		logger: log.New(io.Discard),
		now:    time.Now,
		subs:   make(map[int]func(Selection)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key.
func (s *Service) Key() string { return s.key }

// Current returns the stored selection, or an empty one.
func (s *Service) Current(ctx context.Context) (Selection, error) {
	sel, _, err := s.store.Load(ctx, s.key)
	if err != nil {
		return Selection{}, errors.Wrap(errors.ErrCodeInternal, err, "load selection")
	}
	return sel, nil
}

// SelectCustomer selects c. A different customer clears the plant and
// revision.
func (s *Service) SelectCustomer(ctx context.Context, c model.Customer) (Selection, error) {
	if c.ID <= 0 {
		return Selection{}, errors.New(errors.ErrCodeInvalidSelection, "customer has no id")
	}
	return s.update(ctx, func(sel *Selection) error {
		if sel.Customer == nil || sel.Customer.ID != c.ID {
			sel.Plant = nil
			sel.Revision = nil
		}
		sel.Customer = &c
		return nil
	})
}

// SelectPlant selects p, which must belong to the selected customer. A
// different plant clears the revision.
func (s *Service) SelectPlant(ctx context.Context, p model.Plant) (Selection, error) {
	if p.ID <= 0 {
		return Selection{}, errors.New(errors.ErrCodeInvalidSelection, "plant has no id")
	}
	return s.update(ctx, func(sel *Selection) error {
		if sel.Customer == nil {
			return errors.New(errors.ErrCodeInvalidSelection, "select a customer before selecting a plant")
		}
		if p.CustomerID != 0 && p.CustomerID != sel.Customer.ID {
			return errors.New(errors.ErrCodeInvalidSelection,
				"plant %q belongs to customer %d, not %q", p.Name, p.CustomerID, sel.Customer.Name)
		}
		if sel.Plant == nil || sel.Plant.ID != p.ID {
			sel.Revision = nil
		}
		sel.Plant = &p
		return nil
	})
}

// SelectRevision selects r, which must be a DRAFT revision. A revision that
// names its plant must name the selected one. With a [RevisionLister] it
// must also be listed for the selected plant.
func (s *Service) SelectRevision(ctx context.Context, r model.PlantRevision) (Selection, error) {
	if r.Status() != model.RevisionDraft {
		return Selection{}, errors.New(errors.ErrCodeInvalidSelection,
			"only draft revisions can be selected (revision %d is %s)", r.Revision, r.Status())
	}
	return s.update(ctx, func(sel *Selection) error {
		if sel.Plant == nil {
			return errors.New(errors.ErrCodeInvalidSelection, "select a plant before selecting a revision")
		}
		if r.PlantID != 0 && r.PlantID != sel.Plant.ID {
			return errors.New(errors.ErrCodeInvalidSelection,
				"revision %d belongs to plant %d, not %q", r.ID, r.PlantID, sel.Plant.Name)
		}
		if s.revisions != nil {
			revs, err := s.revisions(ctx, sel.Plant.ID)
			if err != nil {
				return err
			}
			if !slices.ContainsFunc(revs, func(x model.PlantRevision) bool { return x.ID == r.ID }) {
				return errors.New(errors.ErrCodeInvalidSelection,
					"revision %d is not a revision of plant %q", r.ID, sel.Plant.Name)
			}
		}
		sel.Revision = &r
		return nil
	})
}

// Clear removes the stored selection.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	err := s.store.Delete(ctx, s.key)
	s.mu.Unlock()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "clear selection")
	}
	s.logger.Debug("selection cleared", "key", s.key)
	s.notify(Selection{})
	return nil
}

// Subscribe registers fn to receive the selection after every successful
// change. The returned function unsubscribes.
func (s *Service) Subscribe(fn func(Selection)) (unsubscribe func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			defer s.subsMu.Unlock()
			delete(s.subs, id)
		})
	}
}

func (s *Service) update(ctx context.Context, change func(*Selection) error) (Selection, error) {
	s.mu.Lock()
	sel, _, err := s.store.Load(ctx, s.key)
	if err != nil {
		s.mu.Unlock()
		return Selection{}, errors.Wrap(errors.ErrCodeInternal, err, "load selection")
	}
	if err := change(&sel); err != nil {
		s.mu.Unlock()
		return Selection{}, err
	}
	sel.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, s.key, sel); err != nil {
		s.mu.Unlock()
		return Selection{}, errors.Wrap(errors.ErrCodeInternal, err, "save selection")
	}
	s.mu.Unlock()

	s.logger.Debug("selection changed", "key", s.key, "customer", idOf(sel.Customer), "plant", plantID(sel.Plant))
	s.notify(sel)
	return sel, nil
}

func (s *Service) notify(sel Selection) {
	s.subsMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(Selection), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(sel)
	}
}

func idOf(c *model.Customer) int {
	if c == nil {
		return 0
	}
	return c.ID
}

func plantID(p *model.Plant) int {
	if p == nil {
		return 0
	}
	return p.ID
}
