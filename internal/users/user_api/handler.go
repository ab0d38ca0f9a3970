package user_api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-records/internal/logger"
	"ms-records/internal/models"
	"ms-records/internal/utils"
)

type UserService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, input models.NewUser) error
}

type Handler struct {
	UserService UserService
	Logger      *logger.Logger
}

func NewHandler(userService UserService, log *logger.Logger) *Handler {
	return &Handler{UserService: userService, Logger: log}
}

// RegisterRoutes mounts the user endpoints on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/user", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Post("/", h.CreateUser)
		r.Get("/{username}", h.GetUser)
	})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.ListUsers(r.Context())
	if err != nil {
		utils.WriteError(w, h.Logger, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.UserService.GetUser(r.Context(), username)
	if err != nil {
		utils.WriteError(w, h.Logger, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input models.NewUser
	if err := utils.DecodeJSON(r, "users.create", &input); err != nil {
		utils.WriteError(w, h.Logger, err)
		return
	}

	if err := h.UserService.CreateUser(r.Context(), input); err != nil {
		utils.WriteError(w, h.Logger, err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("CreateUser: created user %q", input.Username))
	utils.WriteOK(w)
}
