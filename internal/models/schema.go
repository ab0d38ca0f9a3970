package models

// Table and column names of the persisted relations. Queries refer to these
// instead of string literals; the bun tags on Event and User must agree with
// them, which the repository tests check against the migrated schema.
const (
	EventsTable = "events"
	UsersTable  = "users"

	// MigrationsTable is the ledger of applied schema versions.
	MigrationsTable = "schema_migrations"
)

const (
	EventColID          = "id"
	EventColTitle       = "title"
	EventColDescription = "description"
	EventColColor       = "color"
	EventColStartDate   = "start_date"
	EventColEndDate     = "end_date"
	EventColLocationLng = "location_lng"
	EventColLocationLat = "location_lat"
	EventColCreatedAt   = "created_at"
	EventColEditedAt    = "edited_at"
)

const (
	UserColUsername  = "username"
	UserColCreatedAt = "created_at"
)

// EventColumns lists every events column in declaration order.
var EventColumns = []string{
	EventColID,
	EventColTitle,
	EventColDescription,
	EventColColor,
	EventColStartDate,
	EventColEndDate,
	EventColLocationLng,
	EventColLocationLat,
	EventColCreatedAt,
	EventColEditedAt,
}

// UserColumns lists every users column in declaration order.
var UserColumns = []string{
	UserColUsername,
	UserColCreatedAt,
}
