package model

import "time"

// Device is a piece of equipment that can be attached to functions.
type Device struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
	Type         string `json:"type,omitempty"`
	Generic      bool   `json:"generic,omitempty"`
}

// Function describes a process function and the devices implementing it.
type Function struct {
	ID                    int    `json:"id"`
	Name                  string `json:"name"`
	FunctionalDescription string `json:"functional_description,omitempty"`
	DeviceIDs             []int  `json:"device_ids,omitempty"`
}

// Product is a customer product treated on a line.
type Product struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	CustomerID  int    `json:"customer_id,omitempty"`
	Description string `json:"description,omitempty"`
}

// Requirement is a production requirement for a product.
type Requirement struct {
	ID           int     `json:"id"`
	ProductID    int     `json:"product_id"`
	PlantID      int     `json:"plant_id,omitempty"`
	AnnualVolume float64 `json:"annual_volume,omitempty"`
	Description  string  `json:"description,omitempty"`
}

// ChatSession is a knowledge hub conversation.
type ChatSession struct {
	ID        int        `json:"id"`
	Title     string     `json:"title,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// ChatMessage is one message of a chat session.
type ChatMessage struct {
	ID        int        `json:"id,omitempty"`
	SessionID int        `json:"session_id,omitempty"`
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}
