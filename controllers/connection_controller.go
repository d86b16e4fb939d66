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
	"polyglot_server/socket"

	"github.com/gorilla/mux"
)

// ConnectionController handles the QR scan flow: sending requests, listing
// pending ones and accepting or rejecting them.
type ConnectionController struct {
	ConnectionService *services.ConnectionService
	Notifier          *socket.Notifier
}

// NewConnectionController initializes a ConnectionController
func NewConnectionController(connectionService *services.ConnectionService, notifier *socket.Notifier) *ConnectionController {
	return &ConnectionController{ConnectionService: connectionService, Notifier: notifier}
}

// CreateRequestHandler records a pending request from the scanned payload and
// notifies the target user over socket.io.
func (c *ConnectionController) CreateRequestHandler(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ScannedPayload string `json:"scannedPayload"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request payload"}`, http.StatusBadRequest)
		return
	}

	if request.ScannedPayload == "" {
		http.Error(w, `{"error": "Missing scannedPayload"}`, http.StatusBadRequest)
		return
	}

	userID := middleware.UserID(r)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	created, err := c.ConnectionService.CreateRequest(ctx, userID, request.ScannedPayload)
	if err != nil {
		if errors.Is(err, services.ErrSelfPairing) {
			http.Error(w, `{"error": "Cannot connect with yourself"}`, http.StatusBadRequest)
			return
		}
		log.Printf("❌ Failed to create connection request from %s: %v", userID, err)
		http.Error(w, `{"error": "Error sending connection request"}`, http.StatusInternalServerError)
		return
	}

	c.Notifier.ConnectionRequest(created)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// PendingRequestsHandler lists requests addressed to the authenticated user
// that are still awaiting a response.
func (c *ConnectionController) PendingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	requests, err := c.ConnectionService.PendingRequests(ctx, userID)
	if err != nil {
		log.Printf("❌ Failed to fetch pending requests for %s: %v", userID, err)
		http.Error(w, `{"error": "Failed to fetch pending requests"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requests)
}

// RespondHandler accepts or rejects a pending request. Only the addressee
// may respond, and only once.
func (c *ConnectionController) RespondHandler(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["id"]

	var request struct {
		Accept bool `json:"accept"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request payload"}`, http.StatusBadRequest)
		return
	}

	userID := middleware.UserID(r)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	updated, err := c.ConnectionService.RespondToRequest(ctx, requestID, userID, request.Accept)
	if err != nil {
		switch {
		case services.IsNotFound(err):
			http.Error(w, `{"error": "Request not found"}`, http.StatusNotFound)
		case errors.Is(err, services.ErrForbidden):
			http.Error(w, `{"error": "Not allowed to respond to this request"}`, http.StatusForbidden)
		case errors.Is(err, services.ErrRequestProcessed):
			http.Error(w, `{"error": "Request already processed"}`, http.StatusConflict)
		default:
			log.Printf("❌ Failed to respond to request %s: %v", requestID, err)
			http.Error(w, `{"error": "Failed to update request"}`, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// ListConnectionsHandler returns the user's established connections.
func (c *ConnectionController) ListConnectionsHandler(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connections, err := c.ConnectionService.ListConnections(ctx, userID)
	if err != nil {
		log.Printf("❌ Failed to list connections for %s: %v", userID, err)
		http.Error(w, `{"error": "Failed to fetch connections"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(connections)
}
