// Package selection keeps the user's working context: the selected
// customer, plant and plant revision.
//
// The selection is persisted in a [Store] under a key ([DefaultKey] for a
// single user) and changed only through a [Service], which enforces the
// hierarchy:
//   - selecting a different customer clears the plant and revision
//   - a plant can only be selected under its own customer
//   - selecting a different plant clears the revision
//   - only DRAFT revisions of the selected plant can be selected
//
// Stores:
//   - [MemoryStore]: process-local, for tests and the server default
//   - [FileStore]: JSON files for the CLI (~/.config/tankview/selection/)
//   - [RedisStore]: shared storage for multi-instance servers
package selection

import (
	"context"
	"time"

	"github.com/stlplant/tankview/pkg/model"
)

// DefaultKey is the storage key of the single-user selection.
const DefaultKey = "customerPlantSelection"

// Selection is the persisted working context.
type Selection struct {
	Customer  *model.Customer      `json:"customer,omitempty"`
	Plant     *model.Plant         `json:"plant,omitempty"`
	Revision  *model.PlantRevision `json:"revision,omitempty"`
	UpdatedAt time.Time            `json:"updated_at,omitzero"`
}

// IsEmpty reports whether nothing is selected.
func (s Selection) IsEmpty() bool {
	return s.Customer == nil && s.Plant == nil && s.Revision == nil
}

// Store persists selections by key.
type Store interface {
	// Load returns the selection stored under key and whether one exists.
	Load(ctx context.Context, key string) (Selection, bool, error)
	Save(ctx context.Context, key string, s Selection) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// DraftRevisions returns the DRAFT revisions of revs in their original
// order.
func DraftRevisions(revs []model.PlantRevision) []model.PlantRevision {
	var out []model.PlantRevision
	for _, r := range revs {
		if r.Status() == model.RevisionDraft {
			out = append(out, r)
		}
	}
	return out
}
