package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"polyglot_server/middleware"
	"polyglot_server/services"

	"github.com/gorilla/mux"
)

// ProfileController handles profile reads and updates.
type ProfileController struct {
	ProfileService *services.ProfileService
}

// NewProfileController initializes a ProfileController
func NewProfileController(profileService *services.ProfileService) *ProfileController {
	return &ProfileController{ProfileService: profileService}
}

// GetProfileHandler fetches a profile by user id.
func (c *ProfileController) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	profile, err := c.ProfileService.GetProfile(ctx, userID)
	if err != nil {
		if services.IsNotFound(err) {
			http.Error(w, `{"error": "Profile not found"}`, http.StatusNotFound)
			return
		}
		log.Printf("❌ Failed to fetch profile %s: %v", userID, err)
		http.Error(w, `{"error": "Failed to fetch profile"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}

// UpdateProfileHandler applies partial updates to the authenticated user's
// profile.
func (c *ProfileController) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	var updates map[string]string
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		http.Error(w, `{"error": "Invalid request payload"}`, http.StatusBadRequest)
		return
	}

	if len(updates) == 0 {
		http.Error(w, `{"error": "No fields to update"}`, http.StatusBadRequest)
		return
	}

	userID := middleware.UserID(r)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	profile, err := c.ProfileService.UpdateProfile(ctx, userID, updates)
	if err != nil {
		if errors.Is(err, services.ErrFieldNotEditable) {
			http.Error(w, `{"error": "Field cannot be updated"}`, http.StatusBadRequest)
			return
		}
		log.Printf("❌ Failed to update profile %s: %v", userID, err)
		http.Error(w, `{"error": "Failed to update profile"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}
