// src/handlers/callback_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/mpesaviz/backend/src/logger"
	"github.com/username/mpesaviz/backend/src/services"
	"github.com/username/mpesaviz/backend/src/utils"
)

// CallbackHandler is the ingress for the extraction service's push channel.
type CallbackHandler struct {
	coordinator *services.Coordinator
}

func NewCallbackHandler(coordinator *services.Coordinator) *CallbackHandler {
	return &CallbackHandler{coordinator: coordinator}
}

// HandleEvent receives one push notification: {token, status, data|error}.
// Stale or unknown tokens are acknowledged and dropped; the extractor must
// never see an error for a job we no longer track.
func (h *CallbackHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	var event services.PushEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		logger.L.Warn("Malformed push event payload", "error", err)
		utils.SendJSONError(w, "Invalid event payload", http.StatusBadRequest)
		return
	}
	if event.Token == "" {
		utils.SendJSONError(w, "Event is missing a correlation token", http.StatusBadRequest)
		return
	}

	logger.L.Info("Push event received", "token", event.Token, "status", event.Status, "rows", len(event.Data))
	h.coordinator.HandleEvent(event)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "event received"})
}
