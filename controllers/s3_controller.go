package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"opentalk_server/services"
	"opentalk_server/utils"

	log "github.com/sirupsen/logrus"
)

// S3Controller issues presigned avatar URLs
type S3Controller struct {
	S3 *services.S3Service
}

func NewS3Controller(s3 *services.S3Service) *S3Controller {
	return &S3Controller{S3: s3}
}

// GeneratePresignedURL generates a presigned URL for S3 uploads
func (c *S3Controller) GeneratePresignedURL(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FileName string `json:"fileName"`
		FileType string `json:"fileType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.WithError(err).Warn("⚠️ Failed to decode upload URL request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if payload.FileName == "" || payload.FileType == "" {
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	url, key, err := c.S3.GenerateUploadURL(r.Context(), payload.FileName, payload.FileType)
	if err != nil {
		c.presignFailed(w, err)
		return
	}

	log.WithField("key", key).Info("✅ Generated upload URL")
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"url": url, "fileName": key})
}

// GetPresignedReadURL generates a presigned URL for reading S3 objects
func (c *S3Controller) GetPresignedReadURL(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Key == "" {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	url, err := c.S3.GenerateReadURL(r.Context(), payload.Key)
	if err != nil {
		c.presignFailed(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"url": url})
}

func (c *S3Controller) presignFailed(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrBucketNotConfigured) {
		http.Error(w, "Uploads are not configured", http.StatusServiceUnavailable)
		return
	}
	log.WithError(err).Error("❌ Failed to generate pre-signed URL")
	http.Error(w, "Failed to generate pre-signed URL", http.StatusInternalServerError)
}
