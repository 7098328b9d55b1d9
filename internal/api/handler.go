package api

import (
	"errors"
	"net/http"

	"hostel-occupancy-backend/config"
	"hostel-occupancy-backend/internal/occupancy"
	"hostel-occupancy-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	engine  *occupancy.Engine
	authCfg *config.AuthConfig
	webhook *config.WebhookConfig
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, engine *occupancy.Engine, authCfg *config.AuthConfig, webhook *config.WebhookConfig) *Handler {
	return &Handler{
		store:   s,
		engine:  engine,
		authCfg: authCfg,
		webhook: webhook,
	}
}

// statusForError maps engine/store errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, store.ErrRoomNotFound),
		errors.Is(err, store.ErrOccupantNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrCapacityExceeded),
		errors.Is(err, store.ErrAlreadyCheckedOut):
		return http.StatusConflict
	case errors.Is(err, occupancy.ErrMissingFields):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
