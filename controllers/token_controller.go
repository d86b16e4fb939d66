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

// TokenController issues and lists pairing tokens for the authenticated user.
type TokenController struct {
	TokenService   *services.TokenService
	ProfileService *services.ProfileService
}

// NewTokenController initializes a TokenController
func NewTokenController(tokenService *services.TokenService, profileService *services.ProfileService) *TokenController {
	return &TokenController{TokenService: tokenService, ProfileService: profileService}
}

// CreateTokenHandler mints a new pairing token and returns the share link
// plus the prefilled invite message.
func (c *TokenController) CreateTokenHandler(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	token, err := c.TokenService.CreateToken(ctx, userID)
	if err != nil {
		log.Printf("❌ Failed to create token for %s: %v", userID, err)
		http.Error(w, `{"error": "Failed to create connection link"}`, http.StatusInternalServerError)
		return
	}

	owner, err := c.ProfileService.GetProfile(ctx, userID)
	if err != nil {
		log.Printf("❌ Failed to load profile %s: %v", userID, err)
		http.Error(w, `{"error": "Failed to create connection link"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"token":        token.Token,
		"url":          c.TokenService.ConnectURL(token.Token),
		"shareMessage": c.TokenService.ShareMessage(owner, token.Token),
	})
}

// DeleteTokenHandler revokes one of the authenticated user's tokens.
func (c *TokenController) DeleteTokenHandler(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	userID := middleware.UserID(r)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.TokenService.DeleteToken(ctx, token, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidToken):
			http.Error(w, `{"error": "Connection link not found"}`, http.StatusNotFound)
		case errors.Is(err, services.ErrForbidden):
			http.Error(w, `{"error": "Not allowed to revoke this link"}`, http.StatusForbidden)
		default:
			log.Printf("❌ Failed to revoke token for %s: %v", userID, err)
			http.Error(w, `{"error": "Failed to revoke connection link"}`, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Connection link revoked"})
}

// ListTokensHandler returns all tokens the authenticated user has minted.
func (c *TokenController) ListTokensHandler(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tokens, err := c.TokenService.ListTokensByOwner(ctx, userID)
	if err != nil {
		log.Printf("❌ Failed to list tokens for %s: %v", userID, err)
		http.Error(w, `{"error": "Failed to fetch connection links"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tokens)
}
