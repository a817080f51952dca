package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/tasknest/realtime/internal/service"
	"github.com/tasknest/realtime/pkg/validator"
)

// AnnounceHandler is the service-to-service surface the main TaskNest API
// calls after it has durably persisted a mutation. Every route here is
// fire-and-forget with respect to delivery: 202 means "broadcast issued",
// never "everyone saw it".
type AnnounceHandler struct {
	announceService *service.AnnounceService
}

func NewAnnounceHandler(announceService *service.AnnounceService) *AnnounceHandler {
	return &AnnounceHandler{announceService: announceService}
}

type taskStatusInput struct {
	ProjectID uuid.UUID `json:"project_id"`
	TaskID    uuid.UUID `json:"task_id"`
	Status    string    `json:"status"`
	ActorID   uuid.UUID `json:"actor_id"`
}

func (h *AnnounceHandler) TaskStatusChanged(w http.ResponseWriter, r *http.Request) {
	var input taskStatusInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateTaskStatus(input.Status); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	h.announceService.TaskStatusChanged(input.ProjectID, input.TaskID, input.Status, input.ActorID)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "broadcast"})
}

type messageInput struct {
	ProjectID    uuid.UUID `json:"project_id"`
	DiscussionID uuid.UUID `json:"discussion_id"`
	MessageID    uuid.UUID `json:"message_id"`
	SenderID     uuid.UUID `json:"sender_id"`
	Preview      string    `json:"preview"`
}

func (h *AnnounceHandler) MessageReceived(w http.ResponseWriter, r *http.Request) {
	var input messageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	h.announceService.MessageReceived(input.ProjectID, input.DiscussionID, input.MessageID, input.SenderID, input.Preview)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "broadcast"})
}

type projectNotificationInput struct {
	ProjectID uuid.UUID `json:"project_id"`
	Message   string    `json:"message"`
}

func (h *AnnounceHandler) ProjectNotification(w http.ResponseWriter, r *http.Request) {
	var input projectNotificationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateAnnouncement(input.Message); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	h.announceService.ProjectNotification(input.ProjectID, input.Message)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "broadcast"})
}

type memberUpdateInput struct {
	ProjectID uuid.UUID `json:"project_id"`
	UserID    uuid.UUID `json:"user_id"`
	Action    string    `json:"action"`
}

func (h *AnnounceHandler) MemberUpdate(w http.ResponseWriter, r *http.Request) {
	var input memberUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateMemberAction(input.Action); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	h.announceService.MemberUpdate(input.ProjectID, input.UserID, input.Action)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "broadcast"})
}

type announcementInput struct {
	Message string `json:"message"`
}

func (h *AnnounceHandler) SystemAnnouncement(w http.ResponseWriter, r *http.Request) {
	var input announcementInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateAnnouncement(input.Message); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	h.announceService.SystemAnnouncement(input.Message)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "broadcast"})
}
