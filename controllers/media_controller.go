package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"polyglot_server/services"
)

// MediaController hands out presigned S3 URLs for avatar uploads and reads.
type MediaController struct {
	MediaService *services.MediaService
}

// NewMediaController initializes a MediaController
func NewMediaController(mediaService *services.MediaService) *MediaController {
	return &MediaController{MediaService: mediaService}
}

// UploadURLHandler generates a presigned PUT URL for an avatar upload.
func (c *MediaController) UploadURLHandler(w http.ResponseWriter, r *http.Request) {
	var request struct {
		FileName string `json:"fileName"`
		FileType string `json:"fileType"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request payload"}`, http.StatusBadRequest)
		return
	}

	if request.FileName == "" || request.FileType == "" {
		http.Error(w, `{"error": "Missing fileName or fileType"}`, http.StatusBadRequest)
		return
	}

	url, key, err := c.MediaService.GenerateUploadURL(request.FileName, request.FileType)
	if err != nil {
		log.Printf("❌ Failed to generate upload URL: %v", err)
		http.Error(w, `{"error": "Failed to generate upload URL"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"url": url, "key": key})
}

// ReadURLHandler generates a presigned GET URL for a stored object.
func (c *MediaController) ReadURLHandler(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, `{"error": "Missing key parameter"}`, http.StatusBadRequest)
		return
	}

	url, err := c.MediaService.GenerateReadURL(key)
	if err != nil {
		log.Printf("❌ Failed to generate read URL for %s: %v", key, err)
		http.Error(w, `{"error": "Failed to generate read URL"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"url": url})
}
