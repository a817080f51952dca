package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/tasknest/realtime/internal/service"
	"github.com/tasknest/realtime/pkg/validator"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
	logger              zerolog.Logger
}

func NewNotificationHandler(notificationService *service.NotificationService, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// Push persists a notification and echoes it live to the recipient.
func (h *NotificationHandler) Push(w http.ResponseWriter, r *http.Request) {
	var input service.PushInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateNotification(input.Type, input.Title, input.Body); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	n, err := h.notificationService.Push(r.Context(), input)
	if err != nil {
		h.logger.Error().Err(err).Msg("notification push failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusCreated, n)
}
