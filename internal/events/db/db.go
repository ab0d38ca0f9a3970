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

// DB is the event repository. Every call checks out its own connection from
// the pool and returns it before returning.
type DB struct {
	Pool *database.Pool
	Log  *logger.Logger
	// Clock stamps created_at and edited_at.
	Clock clockwork.Clock
}

func New(pool *database.Pool, log *logger.Logger, clock clockwork.Clock) *DB {
	return &DB{Pool: pool, Log: log, Clock: clock}
}

// ListAll returns every event ordered by id.
func (d *DB) ListAll(ctx context.Context) ([]models.Event, error) {
	events := make([]models.Event, 0)
	err := d.Pool.With(ctx, func(db bun.IDB) error {
		return db.NewSelect().
			Model(&events).
			OrderExpr("? ASC", bun.Ident(models.EventColID)).
			Scan(ctx)
	})
	if err != nil {
		d.Log.Error("DATABASE", "Failed to list events: "+err.Error())
		return nil, apperr.FromStorage("events.list", err)
	}
	d.Log.LogDatabase("SELECT", models.EventsTable, fmt.Sprintf("Listed %d events", len(events)))
	return events, nil
}

// GetByID returns the event with the given id or a NotFound error.
func (d *DB) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	var event *models.Event
	err := d.Pool.With(ctx, func(db bun.IDB) error {
		var err error
		event, err = selectByID(ctx, db, id)
		return err
	})
	if err != nil {
		return nil, d.classify("events.get", id, err)
	}
	return event, nil
}

// Create inserts a new event stamped with the current time and returns the
// row as stored, including its assigned id.
func (d *DB) Create(ctx context.Context, input models.NewEvent) (*models.Event, error) {
	event := models.Event{
		Title:       input.Title,
		Description: input.Description,
		Color:       input.Color,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		LocationLng: input.LocationLng,
		LocationLat: input.LocationLat,
		CreatedAt:   d.Clock.Now().Unix(),
	}

	err := d.Pool.With(ctx, func(db bun.IDB) error {
		return db.NewInsert().
			Model(&event).
			Returning("*").
			Scan(ctx)
	})
	if err != nil {
		d.Log.Error("DATABASE", "Failed to create event: "+err.Error())
		return nil, apperr.FromStorage("events.create", err)
	}

	d.Log.LogDatabase("INSERT", models.EventsTable, fmt.Sprintf("Created event %d", event.ID))
	return &event, nil
}

// UpdateByID merges patch into the stored event and writes back only the
// columns it touched plus edited_at. An empty patch still advances
// edited_at.
func (d *DB) UpdateByID(ctx context.Context, id int64, patch models.EventPatch) (*models.Event, error) {
	var updated models.Event
	err := d.Pool.With(ctx, func(db bun.IDB) error {
		existing, err := selectByID(ctx, db, id)
		if err != nil {
			return err
		}

		next, columns := MergeEvent(*existing, patch, d.Clock.Now())
		res, err := db.NewUpdate().
			Model(&next).
			Column(columns...).
			WherePK().
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			// Deleted between the read and the write.
			return sql.ErrNoRows
		}

		updated = next
		return nil
	})
	if err != nil {
		return nil, d.classify("events.update", id, err)
	}

	d.Log.LogDatabase("UPDATE", models.EventsTable, fmt.Sprintf("Updated event %d", id))
	return &updated, nil
}

// DeleteByID removes the event. Deleting a missing id succeeds.
func (d *DB) DeleteByID(ctx context.Context, id int64) error {
	var affected int64
	err := d.Pool.With(ctx, func(db bun.IDB) error {
		res, err := db.NewDelete().
			Model((*models.Event)(nil)).
			Where("? = ?", bun.Ident(models.EventColID), id).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		d.Log.Error("DATABASE", fmt.Sprintf("Failed to delete event %d: %v", id, err))
		return apperr.FromStorage("events.delete", err)
	}

	d.Log.LogDatabase("DELETE", models.EventsTable, fmt.Sprintf("Deleted event %d (%d rows)", id, affected))
	return nil
}

func selectByID(ctx context.Context, db bun.IDB, id int64) (*models.Event, error) {
	var event models.Event
	err := db.NewSelect().
		Model(&event).
		Where("? = ?", bun.Ident(models.EventColID), id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *DB) classify(op string, id int64, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(op, fmt.Sprintf("event %d not found", id))
	}
	d.Log.Error("DATABASE", fmt.Sprintf("%s failed for event %d: %v", op, id, err))
	return apperr.FromStorage(op, err)
}
