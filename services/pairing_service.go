package services

import (
	"context"
	"errors"
	"log"
	"net/url"

	"polyglot_server/models"
)

// PairingState is a terminal outcome of resolving a pairing token.
type PairingState string

const (
	// StateInvalidToken: the token does not resolve to an owner.
	StateInvalidToken PairingState = "invalid_token"
	// StateLoginRequired: the visitor must authenticate first and resume.
	StateLoginRequired PairingState = "login_required"
	// StateRedirect: connection and chat exist, go to the chat.
	StateRedirect PairingState = "redirect"
	// StateAlreadyConnected: this pair is already connected; nothing written.
	StateAlreadyConnected PairingState = "already_connected"
	// StateFailed: any other store failure, scoped to this interaction.
	StateFailed PairingState = "failed"
)

// Resolution is the outcome of one token resolve.
type Resolution struct {
	State        PairingState
	ChatID       string
	RedirectPath string
	Owner        models.ProfileSummary
	Message      string
}

// PairingService drives the token-flow state machine:
// TokenLookup -> AuthCheck -> ConnectionCreate -> outcome.
type PairingService struct {
	Tokens      *TokenService
	Connections *ConnectionService
	Profiles    *ProfileService
}

// ResolveToken walks a shared pairing token to a terminal state. visitorID
// is empty when the visitor is not authenticated. The token row survives
// resolution: a second resolve by the same pair lands on the
// already-connected branch, with no additional rows written.
func (s *PairingService) ResolveToken(ctx context.Context, token, visitorID string) Resolution {
	// TokenLookup
	connectionToken, err := s.Tokens.GetToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return Resolution{
				State:   StateInvalidToken,
				Message: "Invalid or expired connection link",
			}
		}
		log.Printf("❌ Token lookup failed: %v", err)
		return Resolution{State: StateFailed, Message: "Failed to resolve connection link"}
	}

	owner, err := s.Profiles.GetProfile(ctx, connectionToken.UserID)
	if err != nil {
		log.Printf("❌ Token owner profile missing for token %s: %v", connectionToken.TokenID, err)
		return Resolution{State: StateFailed, Message: "Failed to resolve connection link"}
	}

	// AuthCheck: defer to login with a return path that resumes this token.
	if visitorID == "" {
		return Resolution{
			State:        StateLoginRequired,
			Owner:        owner.Summary(),
			RedirectPath: "/auth/login?redirect=" + url.QueryEscape("/connect/"+token),
		}
	}

	// ConnectionCreate: one atomic procedure writes Connection and Chat.
	connection, err := s.Connections.CreateConnectionFromToken(ctx, visitorID, connectionToken.UserID)
	if err != nil {
		if errors.Is(err, ErrAlreadyConnected) {
			return Resolution{
				State:   StateAlreadyConnected,
				Owner:   owner.Summary(),
				Message: "Connection request already sent",
			}
		}
		log.Printf("❌ Connection create failed for token %s: %v", connectionToken.TokenID, err)
		return Resolution{State: StateFailed, Owner: owner.Summary(), Message: "Failed to establish connection"}
	}

	// The chat was written in the same transaction; fetch its id through the
	// connection.
	chat, err := s.Connections.GetChatByConnectionID(ctx, connection.ConnectionID)
	if err != nil {
		log.Printf("❌ Chat lookup failed for connection %s: %v", connection.ConnectionID, err)
		return Resolution{State: StateFailed, Owner: owner.Summary(), Message: "Failed to establish connection"}
	}

	return Resolution{
		State:        StateRedirect,
		ChatID:       chat.ChatID,
		RedirectPath: "/main/chat/" + chat.ChatID,
		Owner:        owner.Summary(),
	}
}
