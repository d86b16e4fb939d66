package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"polyglot_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// TokenService mints and resolves the single-use pairing tokens behind
// shareable connection links.
type TokenService struct {
	Dynamo  *DynamoService
	BaseURL string
}

// CreateToken mints a pairing token owned by userID.
func (ts *TokenService) CreateToken(ctx context.Context, userID string) (*models.ConnectionToken, error) {
	token := models.ConnectionToken{
		Token:     uuid.New().String(),
		TokenID:   uuid.New().String(),
		UserID:    userID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if err := ts.Dynamo.PutItem(ctx, models.ConnectionTokensTable, token); err != nil {
		return nil, fmt.Errorf("failed to create connection token: %w", err)
	}
	return &token, nil
}

// GetToken resolves a token string to its row. A miss is ErrInvalidToken.
func (ts *TokenService) GetToken(ctx context.Context, token string) (*models.ConnectionToken, error) {
	key := map[string]types.AttributeValue{
		"token": &types.AttributeValueMemberS{Value: token},
	}

	item, err := ts.Dynamo.GetItem(ctx, models.ConnectionTokensTable, key)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	var connectionToken models.ConnectionToken
	if err := attributevalue.UnmarshalMap(item, &connectionToken); err != nil {
		return nil, fmt.Errorf("failed to unmarshal connection token: %w", err)
	}
	return &connectionToken, nil
}

// ListTokensByOwner returns the tokens a user has minted.
func (ts *TokenService) ListTokensByOwner(ctx context.Context, userID string) ([]models.ConnectionToken, error) {
	keyCondition := "userId = :userId"
	expressionValues := map[string]types.AttributeValue{
		":userId": &types.AttributeValueMemberS{Value: userID},
	}

	items, err := ts.Dynamo.QueryItemsWithIndex(ctx, models.ConnectionTokensTable, models.TokenOwnerIndex, keyCondition, expressionValues, nil, 100)
	if err != nil {
		return nil, err
	}

	var tokens []models.ConnectionToken
	if err := attributevalue.UnmarshalListOfMaps(items, &tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal connection tokens: %w", err)
	}
	return tokens, nil
}

// DeleteToken revokes a pairing token. Only its owner may revoke it; a
// revoked link resolves as invalid from then on.
func (ts *TokenService) DeleteToken(ctx context.Context, token, userID string) error {
	connectionToken, err := ts.GetToken(ctx, token)
	if err != nil {
		return err
	}
	if connectionToken.UserID != userID {
		return ErrForbidden
	}

	key := map[string]types.AttributeValue{
		"token": &types.AttributeValueMemberS{Value: token},
	}
	return ts.Dynamo.DeleteItem(ctx, models.ConnectionTokensTable, key)
}

// ConnectURL is the link a token owner shares out-of-band.
func (ts *TokenService) ConnectURL(token string) string {
	return ts.BaseURL + "/connect/" + token
}

// ShareMessage composes the invitation text the owner copies to the
// clipboard.
func (ts *TokenService) ShareMessage(owner *models.Profile, token string) string {
	return fmt.Sprintf(
		"%s %s wants to connect with you on Polyglot Chat! Click the link below to connect:\n\n%s",
		owner.FirstName, owner.LastName, ts.ConnectURL(token),
	)
}
