package model

import (
	"strconv"
	"time"
)

// Tank is a physical vessel in a production line.
//
// The backend reports the gap to the next tank as "space"; older layout
// exports use "spacing". Both are decoded and [Tank.Gap] picks the one set.
type Tank struct {
	ID          int        `json:"id" msgpack:"id"`
	Number      *int       `json:"number,omitempty" msgpack:"number,omitempty"`
	Name        string     `json:"name,omitempty" msgpack:"name,omitempty"`
	TankGroupID int        `json:"tank_group_id,omitempty" msgpack:"tank_group_id,omitempty"`
	PlantID     int        `json:"plant_id,omitempty" msgpack:"plant_id,omitempty"`
	Width       MM         `json:"width,omitempty" msgpack:"width,omitempty"`
	Length      MM         `json:"length,omitempty" msgpack:"length,omitempty"`
	Depth       MM         `json:"depth,omitempty" msgpack:"depth,omitempty"`
	Space       MM         `json:"space,omitempty" msgpack:"space,omitempty"`
	Spacing     MM         `json:"spacing,omitempty" msgpack:"spacing,omitempty"`
	XPosition   *float64   `json:"x_position,omitempty" msgpack:"x_position,omitempty"`
	YPosition   *float64   `json:"y_position,omitempty" msgpack:"y_position,omitempty"`
	ZPosition   *float64   `json:"z_position,omitempty" msgpack:"z_position,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty" msgpack:"-"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" msgpack:"-"`
}

// Gap returns the distance to the next tank, preferring Space over Spacing.
func (t Tank) Gap() MM {
	if t.Space.Set() {
		return t.Space
	}
	return t.Spacing
}

// NumberLabel returns the tank number as text, or fallback if unset.
func (t Tank) NumberLabel(fallback string) string {
	if t.Number == nil {
		return fallback
	}
	return strconv.Itoa(*t.Number)
}

// NameLabel returns the tank name, or fallback if empty.
func (t Tank) NameLabel(fallback string) string {
	if t.Name == "" {
		return fallback
	}
	return t.Name
}

// TankGroup groups tanks of one line.
type TankGroup struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Number    *int       `json:"number,omitempty"`
	PlantID   int        `json:"plant_id"`
	LineID    int        `json:"line_id"`
	Tanks     []Tank     `json:"tanks,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Line is a production line of a plant. The renderer passes it through to
// observers without using it for geometry.
type Line struct {
	ID         int        `json:"id" msgpack:"id"`
	PlantID    int        `json:"plant_id" msgpack:"plant_id"`
	LineNumber int        `json:"line_number" msgpack:"line_number"`
	MinX       *int       `json:"min_x,omitempty" msgpack:"min_x,omitempty"`
	MaxX       *int       `json:"max_x,omitempty" msgpack:"max_x,omitempty"`
	MinY       *int       `json:"min_y,omitempty" msgpack:"min_y,omitempty"`
	MaxY       *int       `json:"max_y,omitempty" msgpack:"max_y,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty" msgpack:"-"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty" msgpack:"-"`
}

// NextLineNumber is the response of the next-number endpoint.
type NextLineNumber struct {
	NextNumber int `json:"next_number"`
}
