package db

import (
	"time"

	"ms-records/internal/models"
)

// MergeEvent applies patch to existing and returns the next row state along
// with the columns that must be written. Present fields overwrite, a null
// clears an optional field, absent fields keep their stored value. A null on
// a required field is left to the caller to reject and is ignored here.
//
// edited_at is always part of the result and always moves forward: it is the
// later of now and one second past the previous edit (or creation). Several
// updates within one second therefore stamp consecutive seconds that can run
// ahead of the wall clock. The stored value stops leading once real time
// passes it, and the next update after that is stamped with now again.
func MergeEvent(existing models.Event, patch models.EventPatch, now time.Time) (models.Event, []string) {
	next := existing
	var columns []string

	if patch.Title.Present && !patch.Title.Null {
		next.Title = patch.Title.Value
		columns = append(columns, models.EventColTitle)
	}
	if patch.Description.Present {
		next.Description = patch.Description.Apply(existing.Description)
		columns = append(columns, models.EventColDescription)
	}
	if patch.Color.Present {
		next.Color = patch.Color.Apply(existing.Color)
		columns = append(columns, models.EventColColor)
	}
	if patch.StartDate.Present && !patch.StartDate.Null {
		next.StartDate = patch.StartDate.Value
		columns = append(columns, models.EventColStartDate)
	}
	if patch.EndDate.Present && !patch.EndDate.Null {
		next.EndDate = patch.EndDate.Value
		columns = append(columns, models.EventColEndDate)
	}
	if patch.LocationLng.Present {
		next.LocationLng = patch.LocationLng.Apply(existing.LocationLng)
		columns = append(columns, models.EventColLocationLng)
	}
	if patch.LocationLat.Present {
		next.LocationLat = patch.LocationLat.Apply(existing.LocationLat)
		columns = append(columns, models.EventColLocationLat)
	}

	editedAt := nextEditedAt(existing, now)
	next.EditedAt = &editedAt
	columns = append(columns, models.EventColEditedAt)

	return next, columns
}

func nextEditedAt(existing models.Event, now time.Time) int64 {
	last := existing.CreatedAt
	if existing.EditedAt != nil {
		last = *existing.EditedAt
	}
	ts := now.Unix()
	if ts <= last {
		ts = last + 1
	}
	return ts
}
