package models

import (
	"github.com/uptrace/bun"
)

// User is a row of the users table. Username is the primary key and never
// changes after creation.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	Username  string `bun:"username,pk" json:"username"`
	CreatedAt int64  `bun:"created_at,notnull" json:"createdAt"`
}

// NewUser is the creation request.
type NewUser struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
}
