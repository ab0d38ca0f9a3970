package models

import (
	"github.com/uptrace/bun"
)

// Event is a row of the events table. Timestamps are unix seconds.
type Event struct {
	bun.BaseModel `bun:"table:events,alias:e"`

	ID          int64    `bun:"id,pk,autoincrement" json:"id"`
	Title       string   `bun:"title,notnull" json:"title"`
	Description *string  `bun:"description" json:"description"`
	Color       *string  `bun:"color" json:"color"`
	StartDate   int64    `bun:"start_date,notnull" json:"startDate"`
	EndDate     int64    `bun:"end_date,notnull" json:"endDate"`
	LocationLng *float32 `bun:"location_lng" json:"locationLng"`
	LocationLat *float32 `bun:"location_lat" json:"locationLat"`
	CreatedAt   int64    `bun:"created_at,notnull" json:"createdAt"`
	EditedAt    *int64   `bun:"edited_at" json:"editedAt"`
}

// NewEvent is the client-supplied part of an event on creation. id,
// created_at and edited_at are assigned by the repository.
type NewEvent struct {
	Title       string   `json:"title" validate:"required,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=1000"`
	Color       *string  `json:"color" validate:"omitempty,max=20"`
	StartDate   int64    `json:"startDate"`
	EndDate     int64    `json:"endDate"`
	LocationLng *float32 `json:"locationLng"`
	LocationLat *float32 `json:"locationLat"`
}

// EventPatch is a sparse update. Server-managed fields are not
// part of it, so clients sending id, createdAt or editedAt are ignored.
type EventPatch struct {
	Title       Field[string]  `json:"title"`
	Description Field[string]  `json:"description"`
	Color       Field[string]  `json:"color"`
	StartDate   Field[int64]   `json:"startDate"`
	EndDate     Field[int64]   `json:"endDate"`
	LocationLng Field[float32] `json:"locationLng"`
	LocationLat Field[float32] `json:"locationLat"`
}

// NullRequired returns the JSON names of required fields the patch tries to
// clear.
func (p EventPatch) NullRequired() []string {
	var fields []string
	if p.Title.Present && p.Title.Null {
		fields = append(fields, "title")
	}
	if p.StartDate.Present && p.StartDate.Null {
		fields = append(fields, "startDate")
	}
	if p.EndDate.Present && p.EndDate.Null {
		fields = append(fields, "endDate")
	}
	return fields
}
