package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"polyglot_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService implements the auth collaborator contract: signUp, signIn,
// current-user lookup and email verification. Accounts are keyed by email,
// profiles by user id.
type AuthService struct {
	Dynamo    *DynamoService
	Profiles  *ProfileService
	JWTSecret string
	TokenTTL  time.Duration
}

// SignUp creates an account and its profile. The profile starts unverified;
// verification delivery is outside this service.
func (s *AuthService) SignUp(ctx context.Context, email, password, firstName, lastName, language string) (*models.Profile, string, error) {
	key := map[string]types.AttributeValue{
		"email": &types.AttributeValueMemberS{Value: email},
	}
	if _, err := s.Dynamo.GetItem(ctx, models.AccountsTable, key); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, ErrItemNotFound) {
		return nil, "", fmt.Errorf("failed to check account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	userID := uuid.New().String()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	account := models.Account{
		Email:        email,
		UserID:       userID,
		PasswordHash: string(hash),
		CreatedAt:    createdAt,
	}
	if err := s.Dynamo.PutItem(ctx, models.AccountsTable, account); err != nil {
		return nil, "", err
	}

	profile := models.Profile{
		UserID:        userID,
		FirstName:     firstName,
		LastName:      lastName,
		Language:      language,
		Email:         email,
		EmailVerified: false,
		CreatedAt:     createdAt,
	}
	if err := s.Dynamo.PutItem(ctx, models.ProfilesTable, profile); err != nil {
		return nil, "", err
	}

	token, err := s.MintToken(userID)
	if err != nil {
		return nil, "", err
	}

	log.Printf("✅ Account created for %s (%s)", email, userID)
	return &profile, token, nil
}

// SignIn checks credentials and returns the profile plus a session token.
// Both unknown email and wrong password map to the same error.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*models.Profile, string, error) {
	key := map[string]types.AttributeValue{
		"email": &types.AttributeValueMemberS{Value: email},
	}
	item, err := s.Dynamo.GetItem(ctx, models.AccountsTable, key)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to fetch account: %w", err)
	}

	var account models.Account
	if err := attributevalue.UnmarshalMap(item, &account); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	profile, err := s.GetCurrentUser(ctx, account.UserID)
	if err != nil {
		return nil, "", err
	}
	if !profile.EmailVerified {
		return nil, "", ErrEmailNotVerified
	}

	token, err := s.MintToken(account.UserID)
	if err != nil {
		return nil, "", err
	}

	return profile, token, nil
}

// GetCurrentUser fetches the profile behind a session's user id.
func (s *AuthService) GetCurrentUser(ctx context.Context, userID string) (*models.Profile, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
	item, err := s.Dynamo.GetItem(ctx, models.ProfilesTable, key)
	if err != nil {
		return nil, err
	}

	var profile models.Profile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &profile, nil
}

// MintToken issues a signed session token for userID.
func (s *AuthService) MintToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(s.TokenTTL).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// MintVerifyToken issues the token carried by the verification link.
// Delivery (the email itself) is outside this service.
func (s *AuthService) MintVerifyToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"purpose": "email_verify",
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign verification token: %w", err)
	}
	return signed, nil
}

// VerifyEmail consumes a verification token and flags its profile verified.
// Session tokens are rejected: only tokens minted for verification pass.
func (s *AuthService) VerifyEmail(ctx context.Context, tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	if purpose, _ := claims["purpose"].(string); purpose != "email_verify" {
		return "", ErrInvalidToken
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return "", ErrInvalidToken
	}

	if err := s.Profiles.MarkEmailVerified(ctx, userID); err != nil {
		return "", err
	}
	log.Printf("✅ Email verified for %s", userID)
	return userID, nil
}
