package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mulengadev/lendstack/internal/errors"
	http2 "github.com/mulengadev/lendstack/internal/infrastructure/api/http"
	"github.com/mulengadev/lendstack/internal/usecases/interactor"
	"github.com/mulengadev/lendstack/pkg/log"
	"github.com/rs/zerolog"
)

type NotificationHandler struct {
	interactor *interactor.NotificationInteractor
	logger     *zerolog.Logger
}

func NewNotificationHandler(interactor *interactor.NotificationInteractor) *NotificationHandler {
	logger := log.GetLogger()
	return &NotificationHandler{interactor: interactor, logger: &logger}
}

func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, http2.UserIDParam)

	notifications, err := h.interactor.ListByOwner(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list notifications")
		errors.HandleHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(notifications)
}
