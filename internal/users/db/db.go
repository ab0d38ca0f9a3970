package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/uptrace/bun"

	"ms-records/internal/apperr"
	"ms-records/internal/database"
	"ms-records/internal/logger"
	"ms-records/internal/models"
)

type DB struct {
	Pool  *database.Pool
	Log   *logger.Logger
	Clock clockwork.Clock

	// beforeInsert runs between the existence check and the insert.
	beforeInsert func(ctx context.Context)
}

func New(pool *database.Pool, log *logger.Logger, clock clockwork.Clock) *DB {
	return &DB{Pool: pool, Log: log, Clock: clock}
}

// ListAll returns every user ordered by username.
func (d *DB) ListAll(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	err := d.Pool.With(ctx, func(db bun.IDB) error {
		return db.NewSelect().
			Model(&users).
			OrderExpr("? ASC", bun.Ident(models.UserColUsername)).
			Scan(ctx)
	})
	if err != nil {
		d.Log.Error("DATABASE", "Failed to list users: "+err.Error())
		return nil, apperr.FromStorage("users.list", err)
	}
	d.Log.LogDatabase("SELECT", models.UsersTable, fmt.Sprintf("Listed %d users", len(users)))
	return users, nil
}

func (d *DB) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := d.Pool.With(ctx, func(db bun.IDB) error {
		return db.NewSelect().
			Model(&user).
			Where("? = ?", bun.Ident(models.UserColUsername), username).
			Limit(1).
			Scan(ctx)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("users.get", fmt.Sprintf("user %q not found", username))
	}
	if err != nil {
		d.Log.Error("DATABASE", fmt.Sprintf("Failed to get user %q: %v", username, err))
		return nil, apperr.FromStorage("users.get", err)
	}
	return &user, nil
}

// Create inserts a user unless the name is taken. The existence check only
// saves a failed insert; the primary key decides between concurrent
// creators, and its violation is reported as UserExists too.
func (d *DB) Create(ctx context.Context, username string) error {
	err := d.Pool.With(ctx, func(db bun.IDB) error {
		exists, err := db.NewSelect().
			Model((*models.User)(nil)).
			Where("? = ?", bun.Ident(models.UserColUsername), username).
			Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return apperr.UserExists("users.create", username)
		}

		if d.beforeInsert != nil {
			d.beforeInsert(ctx)
		}

		user := models.User{Username: username, CreatedAt: d.Clock.Now().Unix()}
		if _, err := db.NewInsert().Model(&user).Exec(ctx); err != nil {
			if apperr.IsUniqueViolation(err) {
				d.Log.LogDatabase("INSERT", models.UsersTable, fmt.Sprintf("Lost creation race for %q", username))
				return apperr.UserExists("users.create", username)
			}
			return err
		}
		return nil
	})
	if err != nil {
		if apperr.Classify(err) != apperr.KindUserExists {
			d.Log.Error("DATABASE", fmt.Sprintf("Failed to create user %q: %v", username, err))
		}
		return apperr.FromStorage("users.create", err)
	}

	d.Log.LogDatabase("INSERT", models.UsersTable, fmt.Sprintf("Created user %q", username))
	return nil
}
