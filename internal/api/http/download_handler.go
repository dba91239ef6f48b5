package http

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"carrental-backend/internal/logger"
	"carrental-backend/internal/storage"
)

// DownloadHandler serves documents written by the local mock storage
type DownloadHandler struct {
	files storage.LocalFileReader
}

func NewDownloadHandler(files storage.LocalFileReader) *DownloadHandler {
	return &DownloadHandler{files: files}
}

// HandleDownload streams the stored document named by the key query parameter
func (h *DownloadHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "missing key parameter")
		return
	}

	file, err := h.files.ReadFile(key)
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	defer file.Close()

	// Determine content type from file extension
	contentType := "application/octet-stream"
	switch strings.ToLower(filepath.Ext(key)) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".webp":
		contentType = "image/webp"
	case ".pdf":
		contentType = "application/pdf"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := io.Copy(w, file); err != nil {
		logger.Warn("Failed to stream document", "key", key, "error", err)
	}
}
