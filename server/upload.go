package server

import (
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"memorylens/store"
	"memorylens/utils"
)

const (
	maxUploadBytes = 10 * 1024 * 1024 // 10MB
	maxImageDim    = 1024
)

// handleUpload accepts a multipart photo, validates type and size, downscales
// oversized images, and records the photo in the store.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "File size too large. Maximum size is 10MB.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if !utils.IsAllowedImageType(mimeType) {
		writeError(w, http.StatusBadRequest, "Invalid file type. Please upload JPEG, PNG, or WebP images.")
		return
	}
	if header.Size > maxUploadBytes {
		writeError(w, http.StatusBadRequest, "File size too large. Maximum size is 10MB.")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.logger.Error("upload read failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to upload photo")
		return
	}

	// Keep payloads small before they hit the vision API
	data, mimeType, err = utils.DownscaleImage(data, mimeType, maxImageDim)
	if err != nil {
		s.logger.Error("image downscale failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to upload photo")
		return
	}

	uploadURL := utils.BuildDataURL(mimeType, data)
	photo := store.PhotoMetadata{
		ID:         uuid.NewString(),
		Filename:   header.Filename,
		Size:       int64(len(data)),
		Type:       mimeType,
		UploadedAt: time.Now(),
		DataURL:    uploadURL,
	}

	s.store.AddPhoto(photo)
	s.logger.Info("photo uploaded: %s (%s, %d bytes)", photo.ID, photo.Filename, photo.Size)

	writeData(w, map[string]interface{}{
		"photo":     photo,
		"uploadUrl": uploadURL,
	}, "Photo uploaded successfully")
}
