package services

import "errors"

// Failure taxonomy surfaced to the interaction boundary. Every controller
// maps one of these to a user-visible message and status code; nothing is
// retried and nothing escapes a handler.
var (
	ErrInvalidToken       = errors.New("invalid or expired connection link")
	ErrAlreadyConnected   = errors.New("connection already exists for this pair")
	ErrInvalidCredentials = errors.New("wrong email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrForbidden          = errors.New("not allowed")
	ErrRequestProcessed   = errors.New("request already processed")
	ErrSelfPairing        = errors.New("cannot connect a user with themselves")
	ErrFieldNotEditable   = errors.New("field cannot be updated")
	ErrEmailNotVerified   = errors.New("email not verified")
)
