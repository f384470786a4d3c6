package v1

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"cardealer-backend/pkg/logger"
	"cardealer-backend/pkg/utils"
)

var (
	allowedMimeTypes = map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/webp": true,
		"image/gif":  true,
	}
	allowedExtensions = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
		".gif":  true,
	}
	uploadFolders = map[string]bool{
		"cars":   true,
		"parts":  true,
		"brands": true,
	}
)

// ImageStore is the bucket behind catalog images; *storage.S3Storage satisfies it.
type ImageStore interface {
	UploadBuffer(ctx context.Context, folder string, data []byte, contentType string) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
}

type UploadHandler struct {
	storage       ImageStore
	maxUploadSize int64
}

// NewUploadHandler accepts a nil store; uploads then answer 503.
func NewUploadHandler(s ImageStore, maxUploadSizeMB int64) *UploadHandler {
	return &UploadHandler{
		storage:       s,
		maxUploadSize: maxUploadSizeMB << 20,
	}
}

// UploadFile takes a multipart "file" and an optional "folder" (cars, parts, brands).
func (h *UploadHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		utils.WriteError(w, http.StatusServiceUnavailable, "Image storage is not configured")
		return
	}
	log := logger.WithContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		log.Warn().Err(err).Msg("Upload rejected: multipart parse failed")
		utils.WriteError(w, http.StatusBadRequest, "File too large or invalid format")
		return
	}

	folder := r.FormValue("folder")
	if folder == "" {
		folder = "cars"
	}
	if !uploadFolders[folder] {
		utils.WriteError(w, http.StatusBadRequest, "Invalid folder")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid file")
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		utils.WriteError(w, http.StatusBadRequest, "File too large")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !allowedMimeTypes[contentType] {
		utils.WriteError(w, http.StatusBadRequest, "Invalid file type. Allowed: JPEG, PNG, WebP, GIF")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		utils.WriteError(w, http.StatusBadRequest, "Invalid file extension")
		return
	}

	data, newContentType, err := utils.ProcessImage(file, header.Filename)
	if err != nil {
		log.Warn().Err(err).Str("file", header.Filename).Msg("Image processing failed")
		utils.WriteError(w, http.StatusBadRequest, "Could not read image")
		return
	}

	url, err := h.storage.UploadBuffer(r.Context(), folder, data, newContentType)
	if err != nil {
		log.Error().Err(err).Msg("Image upload failed")
		utils.WriteError(w, http.StatusBadGateway, "Failed to upload file")
		return
	}

	log.Info().Str("url", url).Int("bytes", len(data)).Msg("Image uploaded")
	utils.WriteJSON(w, http.StatusCreated, map[string]string{"url": url})
}

// DeleteFile removes a previously uploaded image: {"url": "..."}.
func (h *UploadHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		utils.WriteError(w, http.StatusServiceUnavailable, "Image storage is not configured")
		return
	}
	var req struct {
		URL string `json:"url"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.storage.DeleteFile(r.Context(), req.URL); err != nil {
		logger.WithContext(r.Context()).Warn().Err(err).Str("url", req.URL).Msg("Image delete failed")
		utils.WriteError(w, http.StatusBadRequest, "Could not delete file")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
