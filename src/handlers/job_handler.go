// src/handlers/job_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/username/mpesaviz/backend/src/logger"
	"github.com/username/mpesaviz/backend/src/services"
	"github.com/username/mpesaviz/backend/src/utils"
)

type JobHandler struct {
	coordinator *services.Coordinator
}

func NewJobHandler(coordinator *services.Coordinator) *JobHandler {
	return &JobHandler{coordinator: coordinator}
}

// HandleGetJob returns a point-in-time snapshot of the job's state.
func (h *JobHandler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	snapshot, err := h.coordinator.Snapshot(token)
	if err != nil {
		if errors.Is(err, services.ErrJobNotFound) {
			utils.SendJSONError(w, "Unknown or expired job token", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to read job snapshot", "token", token, "error", err)
		utils.SendJSONError(w, "Failed to read job state", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
}

// HandleGetJobResult long-polls for the job's terminal state. Closing the
// request cancels the wait without leaking the registration; the job
// itself keeps running.
func (h *JobHandler) HandleGetJobResult(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	result, err := h.coordinator.Await(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrJobNotFound):
			utils.SendJSONError(w, "Unknown or expired job token", http.StatusNotFound)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			// Caller abandoned the wait; nothing sensible left to write.
			logger.L.Debug("Result wait abandoned by caller", "token", token)
		default:
			// Terminal job failure: exactly one human-readable reason.
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{
				"status": "failed",
				"reason": err.Error(),
			})
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":      "succeeded",
		"statement":   result.Statement,
		"diagnostics": result.Diagnostics,
	})
}

// HandleReleaseJob drops a consumed job. Tokens are single-use; a retry
// mints a new one via upload.
func (h *JobHandler) HandleReleaseJob(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	h.coordinator.Release(token)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "job released"})
}
