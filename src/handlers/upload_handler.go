// src/handlers/upload_handler.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/username/mpesaviz/backend/src/config"
	"github.com/username/mpesaviz/backend/src/logger"
	"github.com/username/mpesaviz/backend/src/security/validation"
	"github.com/username/mpesaviz/backend/src/services"
	"github.com/username/mpesaviz/backend/src/utils"
)

type UploadHandler struct {
	coordinator *services.Coordinator
}

func NewUploadHandler(coordinator *services.Coordinator) *UploadHandler {
	return &UploadHandler{coordinator: coordinator}
}

// HandleUpload accepts a statement PDF plus an optional pass code for
// locked documents, mints a correlation token, and starts the processing
// job. The response carries the token only; the structured result arrives
// through the job endpoints once the extractor pushes it back.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file header reports size too large", "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		logger.L.Warn("Invalid client-declared file type", "contentType", clientContentType, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validation.ValidateFileContentByMagicBytes(file); err != nil {
		logger.L.Warn("Server-side file content validation failed", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The transfer outlives this request; buffer the upload so the
	// coordinator can stream it after the form is gone.
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		logger.L.Error("Failed to buffer uploaded file", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, "Failed to read uploaded file.", http.StatusInternalServerError)
		return
	}

	passCode := r.FormValue("pass_code")

	token, err := h.coordinator.Submit(fileHeader.Filename, passCode, &buf)
	if err != nil {
		logger.L.Error("Failed to submit processing job", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, "Failed to start statement processing.", http.StatusInternalServerError)
		return
	}

	logger.L.Info("Upload accepted", "token", token, "filename", fileHeader.Filename, "size", fileHeader.Size)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "accepted",
		"token":  token,
	})
}
