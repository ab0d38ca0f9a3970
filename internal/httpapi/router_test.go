package httpapi_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-records/internal/apperr"
	"ms-records/internal/database/dbtest"
	eventdb "ms-records/internal/events/db"
	"ms-records/internal/events/event_api"
	eventservice "ms-records/internal/events/service"
	"ms-records/internal/httpapi"
	"ms-records/internal/kafka"
	"ms-records/internal/logger"
	userdb "ms-records/internal/users/db"
	userservice "ms-records/internal/users/service"
	"ms-records/internal/users/user_api"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

// newServer wires the real stack over a migrated temp database.
func newServer(t *testing.T, log *logger.Logger) http.Handler {
	t.Helper()
	pool := dbtest.NewPool(t)
	clock := clockwork.NewRealClock()
	var pub kafka.NopPublisher

	return httpapi.NewRouter(httpapi.Deps{
		Events: event_api.NewHandler(eventservice.NewEventService(eventdb.New(pool, log, clock), pub, log), log),
		Users:  user_api.NewHandler(userservice.NewUserService(userdb.New(pool, log, clock), pub, log), log),
		Health: pool,
		Logger: log,
	})
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTripScenarioOverHTTP(t *testing.T) {
	srv := newServer(t, logger.Nop())

	rec := do(srv, http.MethodPost, "/api/event",
		`{"title":"Trip","color":"blue","startDate":1670900000,"endDate":1670986400}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"id":1`)
	assert.Contains(t, rec.Body.String(), `"description":null`)

	rec = do(srv, http.MethodPut, "/api/event/1", `{"color":"#ff0000"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"color":"#ff0000"`)
	assert.NotContains(t, rec.Body.String(), `"editedAt":null`)

	rec = do(srv, http.MethodGet, "/api/event/999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(srv, http.MethodDelete, "/api/event/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(srv, http.MethodDelete, "/api/event/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(srv, http.MethodGet, "/api/event/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequiredFieldNullOverHTTP(t *testing.T) {
	srv := newServer(t, logger.Nop())

	rec := do(srv, http.MethodPost, "/api/event", `{"title":"Trip","startDate":1,"endDate":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(srv, http.MethodPut, "/api/event/1", `{"title":null}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"validation"`)
}

func TestAliceTwiceOverHTTP(t *testing.T) {
	srv := newServer(t, logger.Nop())

	rec := do(srv, http.MethodPost, "/api/user", `{"username":"alice"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(srv, http.MethodPost, "/api/user", `{"username":"alice"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"user_exists"`)

	rec = do(srv, http.MethodGet, "/api/user/alice", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
}

func TestRequestIDAssignedAndKept(t *testing.T) {
	srv := newServer(t, logger.Nop())

	rec := do(srv, http.MethodGet, "/healthz", "")
	_, err := uuid.Parse(rec.Header().Get(httpapi.RequestIDHeader))
	assert.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(httpapi.RequestIDHeader, id)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(httpapi.RequestIDHeader))
}

func TestRequestIDInContext(t *testing.T) {
	var seen string
	h := httpapi.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = httpapi.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(httpapi.RequestIDHeader))
}

func TestLoggingRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, logger.INFO)
	h := httpapi.Logging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/event", nil))

	assert.Contains(t, buf.String(), "GET /api/event")
	assert.Contains(t, buf.String(), "418")
}

func TestHealthz(t *testing.T) {
	log := logger.Nop()
	srv := httpapi.NewRouter(httpapi.Deps{
		Events: event_api.NewHandler(nil, log),
		Users:  user_api.NewHandler(nil, log),
		Health: stubPinger{},
		Logger: log,
	})
	rec := do(srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	down := httpapi.NewRouter(httpapi.Deps{
		Events: event_api.NewHandler(nil, log),
		Users:  user_api.NewHandler(nil, log),
		Health: stubPinger{err: apperr.PoolExhausted("database.acquire", errors.New("timeout"))},
		Logger: log,
	})
	rec = do(down, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}
