package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"polyglot_server/middleware"
	"polyglot_server/services"

	"github.com/gorilla/mux"
)

// ConnectController resolves pairing links of the form /connect/{token}.
type ConnectController struct {
	PairingService *services.PairingService
}

// NewConnectController initializes a ConnectController
func NewConnectController(pairingService *services.PairingService) *ConnectController {
	return &ConnectController{PairingService: pairingService}
}

// ResolveHandler walks the token through lookup, auth check and connection
// creation, then answers with a redirect or the matching error status.
func (c *ConnectController) ResolveHandler(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	visitorID := middleware.UserID(r)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resolution := c.PairingService.ResolveToken(ctx, token, visitorID)

	switch resolution.State {
	case services.StateRedirect:
		log.Printf("✅ Token %s resolved, redirecting to chat %s", token, resolution.ChatID)
		w.Header().Set("Location", resolution.RedirectPath)
		w.WriteHeader(http.StatusFound)

	case services.StateLoginRequired:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":    "Login required",
			"redirect": resolution.RedirectPath,
			"owner":    resolution.Owner,
		})

	case services.StateAlreadyConnected:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": resolution.Message,
			"owner": resolution.Owner,
		})

	case services.StateInvalidToken:
		http.Error(w, `{"error": "Invalid or expired connection link"}`, http.StatusNotFound)

	default:
		log.Printf("❌ Token %s resolution failed: %s", token, resolution.Message)
		http.Error(w, `{"error": "Failed to establish connection"}`, http.StatusInternalServerError)
	}
}
