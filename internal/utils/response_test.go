package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-records/internal/apperr"
	"ms-records/internal/logger"
	"ms-records/internal/models"
)

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteError(rec, logger.Nop(), apperr.Storage("events.list", errors.New("disk I/O error at /var/db")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error","type":"storage"}`, rec.Body.String())
}

func TestWriteErrorClientKinds(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteError(rec, logger.Nop(), apperr.UserExists("users.create", "alice"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body apperr.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperr.KindUserExists, body.Type)
	assert.Contains(t, body.Error, "alice")
}

func TestWriteErrorUnclassified(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteError(rec, logger.Nop(), errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"username":"alice"}`},
		{name: "empty", body: ``, wantErr: "request body is required"},
		{name: "malformed", body: `{"username":`, wantErr: "malformed JSON body"},
		{name: "trailing newline", body: "{\"username\":\"alice\"}\n"},
		{name: "wrong type", body: `{"username":5}`, wantErr: "username must be a string"},
		{name: "second object", body: `{"username":"alice"} {"username":"bob"}`, wantErr: "unexpected data after JSON body"},
		{name: "trailing garbage", body: `{"username":"alice"}garbage`, wantErr: "unexpected data after JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/user", strings.NewReader(tt.body))
			var input models.NewUser

			err := DecodeJSON(req, "users.create", &input)

			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "alice", input.Username)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.Classify(err))
			assert.Contains(t, apperr.As(err).Message, tt.wantErr)
		})
	}
}

func TestDecodeJSONNamesJSONTypes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "integer field", body: `{"title":"Trip","startDate":"soon"}`, wantErr: "startDate must be a number"},
		{name: "optional float field", body: `{"title":"Trip","locationLng":"west"}`, wantErr: "locationLng must be a number"},
		{name: "string field", body: `{"title":true}`, wantErr: "title must be a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/event", strings.NewReader(tt.body))
			var input models.NewEvent

			err := DecodeJSON(req, "events.create", &input)

			require.Error(t, err)
			msg := apperr.As(err).Message
			assert.Equal(t, tt.wantErr, msg)
			assert.NotContains(t, msg, "int64")
			assert.NotContains(t, msg, "float32")
		})
	}
}
