package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventPatchDistinguishesAbsentFromNull(t *testing.T) {
	var patch EventPatch
	err := json.Unmarshal([]byte(`{"color": null, "title": "Trip", "locationLat": 7.4142}`), &patch)
	require.NoError(t, err)

	assert.True(t, patch.Title.Present)
	assert.False(t, patch.Title.Null)
	assert.Equal(t, "Trip", patch.Title.Value)

	assert.True(t, patch.Color.Present)
	assert.True(t, patch.Color.Null)

	assert.False(t, patch.Description.Present)
	assert.False(t, patch.StartDate.Present)

	assert.True(t, patch.LocationLat.Present)
	assert.InDelta(t, 7.4142, patch.LocationLat.Value, 1e-4)
}

func TestEventPatchIgnoresServerManagedFields(t *testing.T) {
	var patch EventPatch
	err := json.Unmarshal([]byte(`{"id": 7, "createdAt": 1, "editedAt": 2}`), &patch)
	require.NoError(t, err)

	assert.Equal(t, EventPatch{}, patch)
}

func TestFieldRejectsWrongType(t *testing.T) {
	var patch EventPatch
	err := json.Unmarshal([]byte(`{"startDate": "tomorrow"}`), &patch)
	assert.Error(t, err)
}

func TestFieldApply(t *testing.T) {
	stored := "blue"

	var absent Field[string]
	assert.Same(t, &stored, absent.Apply(&stored))

	assert.Nil(t, Null[string]().Apply(&stored))

	got := Set("#ff0000").Apply(&stored)
	require.NotNil(t, got)
	assert.Equal(t, "#ff0000", *got)
	assert.Equal(t, "blue", stored)
}

func TestFieldMarshal(t *testing.T) {
	data, err := json.Marshal(struct {
		A Field[int64]  `json:"a"`
		B Field[string] `json:"b"`
	}{A: Set[int64](5), B: Null[string]()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 5, "b": null}`, string(data))
}
