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
)

// AuthController handles signup, login and session lookup
type AuthController struct {
	AuthService *services.AuthService
}

// NewAuthController initializes an AuthController
func NewAuthController(authService *services.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// SignupHandler registers a new account and returns a session token
func (c *AuthController) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Language  string `json:"language"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Println("❌ Invalid signup payload:", err)
		http.Error(w, `{"error": "Invalid request payload"}`, http.StatusBadRequest)
		return
	}

	if request.Email == "" || request.Password == "" {
		http.Error(w, `{"error": "Missing email or password"}`, http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	profile, token, err := c.AuthService.SignUp(ctx, request.Email, request.Password, request.FirstName, request.LastName, request.Language)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			http.Error(w, `{"error": "Email already registered"}`, http.StatusConflict)
			return
		}
		log.Printf("❌ Signup failed for %s: %v", request.Email, err)
		http.Error(w, `{"error": "Failed to create account"}`, http.StatusInternalServerError)
		return
	}

	// Email delivery is outside this service; the verification token rides
	// back on the signup response for the caller to forward.
	verifyToken, err := c.AuthService.MintVerifyToken(profile.UserID)
	if err != nil {
		log.Printf("❌ Failed to mint verification token for %s: %v", profile.UserID, err)
		http.Error(w, `{"error": "Failed to create account"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token":             token,
		"verificationToken": verifyToken,
		"user":              profile,
	})
}

// VerifyHandler consumes an email verification token.
func (c *AuthController) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, `{"error": "Missing token parameter"}`, http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userID, err := c.AuthService.VerifyEmail(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			http.Error(w, `{"error": "Invalid or expired verification link"}`, http.StatusBadRequest)
			return
		}
		log.Printf("❌ Email verification failed: %v", err)
		http.Error(w, `{"error": "Failed to verify email"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Email verified",
		"userId":  userID,
	})
}

// LoginHandler verifies credentials and returns a session token
func (c *AuthController) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request payload"}`, http.StatusBadRequest)
		return
	}

	if request.Email == "" || request.Password == "" {
		http.Error(w, `{"error": "Missing email or password"}`, http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	profile, token, err := c.AuthService.SignIn(ctx, request.Email, request.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			http.Error(w, `{"error": "Invalid email or password"}`, http.StatusUnauthorized)
			return
		}
		if errors.Is(err, services.ErrEmailNotVerified) {
			http.Error(w, `{"error": "Please verify your email before logging in"}`, http.StatusForbidden)
			return
		}
		log.Printf("❌ Login failed for %s: %v", request.Email, err)
		http.Error(w, `{"error": "Failed to sign in"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token": token,
		"user":  profile,
	})
}

// MeHandler returns the profile of the authenticated user
func (c *AuthController) MeHandler(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	profile, err := c.AuthService.GetCurrentUser(ctx, userID)
	if err != nil {
		log.Printf("❌ Failed to load user %s: %v", userID, err)
		http.Error(w, `{"error": "User not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}
