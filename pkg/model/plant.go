package model

import "time"

// RevisionStatus is the lifecycle state of a plant revision.
type RevisionStatus string

const (
	RevisionDraft    RevisionStatus = "DRAFT"
	RevisionActive   RevisionStatus = "ACTIVE"
	RevisionArchived RevisionStatus = "ARCHIVED"
)

// Customer owns plants.
type Customer struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Town    string `json:"town,omitempty"`
	Country string `json:"country,omitempty"`
}

// Plant is one revision of a customer's production facility. Every
// revision is its own record; revisions of a plant share customer and name.
type Plant struct {
	ID                  int            `json:"id"`
	CustomerID          int            `json:"customer_id"`
	Name                string         `json:"name"`
	Town                string         `json:"town,omitempty"`
	Country             string         `json:"country,omitempty"`
	Revision            int            `json:"revision,omitempty"`
	RevisionName        string         `json:"revision_name,omitempty"`
	BaseRevisionID      *int           `json:"base_revision_id,omitempty"`
	CreatedFromRevision *int           `json:"created_from_revision,omitempty"`
	IsActiveRevision    bool           `json:"is_active_revision"`
	RevisionStatus      RevisionStatus `json:"revision_status,omitempty"`
	CreatedBy           string         `json:"created_by,omitempty"`
	CreatedAt           *time.Time     `json:"created_at,omitempty"`
	UpdatedAt           *time.Time     `json:"updated_at,omitempty"`
}

// PlantRevision summarizes one revision of a plant.
type PlantRevision struct {
	ID int `json:"id"`
	// PlantID is the plant the revision was listed for. The backend leaves
	// it out; the API client fills it in.
	PlantID          int            `json:"plant_id,omitempty"`
	Revision         int            `json:"revision"`
	RevisionName     string         `json:"revision_name"`
	RevisionStatus   RevisionStatus `json:"revision_status,omitempty"`
	LegacyStatus     RevisionStatus `json:"status,omitempty"`
	IsActiveRevision bool           `json:"is_active_revision"`
	CreatedBy        string         `json:"created_by,omitempty"`
	CreatedAt        *time.Time     `json:"created_at,omitempty"`
	TankCount        *int           `json:"tank_count,omitempty"`
	LineCount        *int           `json:"line_count,omitempty"`
}

// Status returns the revision status, accepting the older "status" field.
func (r PlantRevision) Status() RevisionStatus {
	if r.RevisionStatus != "" {
		return r.RevisionStatus
	}
	return r.LegacyStatus
}

// RevisionCreate is the request body for creating a revision.
type RevisionCreate struct {
	RevisionName       string `json:"revision_name"`
	CopyFromRevisionID *int   `json:"copy_from_revision_id,omitempty"`
	CreatedBy          string `json:"created_by,omitempty"`
}

// RevisionActivate is the request body for activating a revision.
type RevisionActivate struct {
	PlantID         int    `json:"plant_id"`
	ActivationNotes string `json:"activation_notes,omitempty"`
}

// DeleteCheck is the response of the can-delete endpoints.
type DeleteCheck struct {
	CanDelete bool   `json:"can_delete"`
	Reason    string `json:"reason,omitempty"`
}
