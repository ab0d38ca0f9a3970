package event_api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ms-records/internal/apperr"
	"ms-records/internal/logger"
	"ms-records/internal/models"
	"ms-records/internal/utils"
	"ms-records/internal/validation"
)

type EventService interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	CreateEvent(ctx context.Context, input models.NewEvent) (*models.Event, error)
	UpdateEvent(ctx context.Context, id int64, patch models.EventPatch) (*models.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
}

type Handler struct {
	EventService EventService
	Logger       *logger.Logger
}

func NewHandler(eventService EventService, log *logger.Logger) *Handler {
	return &Handler{EventService: eventService, Logger: log}
}

// RegisterRoutes mounts the event endpoints on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/event", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Post("/", h.CreateEvent)
		r.Get("/{id}", h.GetEvent)
		r.Put("/{id}", h.UpdateEvent)
		r.Delete("/{id}", h.DeleteEvent)
	})
}

// createEventRequest uses pointers so a missing required key is told apart
// from a zero value.
type createEventRequest struct {
	Title       *string  `json:"title" validate:"required"`
	Description *string  `json:"description"`
	Color       *string  `json:"color"`
	StartDate   *int64   `json:"startDate" validate:"required"`
	EndDate     *int64   `json:"endDate" validate:"required"`
	LocationLng *float32 `json:"locationLng"`
	LocationLat *float32 `json:"locationLat"`
}

func (req createEventRequest) toNewEvent() models.NewEvent {
	return models.NewEvent{
		Title:       *req.Title,
		Description: req.Description,
		Color:       req.Color,
		StartDate:   *req.StartDate,
		EndDate:     *req.EndDate,
		LocationLng: req.LocationLng,
		LocationLat: req.LocationLat,
	}
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.EventService.ListEvents(r.Context())
	if err != nil {
		utils.WriteError(w, h.Logger, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, events)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r, "events.get")
	if err != nil {
		utils.WriteError(w, h.Logger, err)
		return
	}

	event, err := h.EventService.GetEvent(r.Context(), id)
	if err != nil {
		utils.WriteError(w, h.Logger, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, event)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	const op = "events.create"

	var req createEventRequest
	if err := utils.DecodeJSON(r, op, &req); err != nil {
		utils.WriteError(w, h.Logger, err)
		return
	}
	if err := validation.Struct(op, req); err != nil {
		utils.WriteError(w, h.Logger, err)
		return
	}

	event, err := h.EventService.CreateEvent(r.Context(), req.toNewEvent())
	if err != nil {
		utils.WriteError(w, h.Logger, err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("CreateEvent: created event %d", event.ID))
	utils.WriteJSON(w, http.StatusOK, event)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	const op = "events.update"

	id, err := eventID(r, op)
	if err != nil {
		utils.WriteError(w, h.Logger, err)
		return
	}

	var patch models.EventPatch
	if err := utils.DecodeJSON(r, op, &patch); err != nil {
		utils.WriteError(w, h.Logger, err)
		return
	}

	event, err := h.EventService.UpdateEvent(r.Context(), id, patch)
	if err != nil {
		utils.WriteError(w, h.Logger, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, event)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r, "events.delete")
	if err != nil {
		utils.WriteError(w, h.Logger, err)
		return
	}

	if err := h.EventService.DeleteEvent(r.Context(), id); err != nil {
		utils.WriteError(w, h.Logger, err)
		return
	}
	utils.WriteOK(w)
}

func eventID(r *http.Request, op string) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperr.Validation(op, fmt.Sprintf("invalid event id %q", raw))
	}
	return id, nil
}
