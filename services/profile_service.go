package services

import (
	"context"
	"fmt"

	"polyglot_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type ProfileService struct {
	Dynamo *DynamoService
}

// GetProfile retrieves a user profile by ID
func (ps *ProfileService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}

	item, err := ps.Dynamo.GetItem(ctx, models.ProfilesTable, key)
	if err != nil {
		return nil, err
	}

	var profile models.Profile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	return &profile, nil
}

// updatable profile fields; everything else is owned by the auth flow
var profileFields = map[string]bool{
	"firstName": true,
	"lastName":  true,
	"language":  true,
	"avatarKey": true,
}

// UpdateProfile applies a partial update to a profile and returns the new
// state. Unknown fields are rejected.
func (ps *ProfileService) UpdateProfile(ctx context.Context, userID string, updates map[string]string) (*models.Profile, error) {
	if len(updates) == 0 {
		return ps.GetProfile(ctx, userID)
	}

	updateExpression := "SET"
	expressionValues := map[string]types.AttributeValue{}
	expressionNames := map[string]string{}
	first := true
	for field, value := range updates {
		if !profileFields[field] {
			return nil, fmt.Errorf("field '%s': %w", field, ErrFieldNotEditable)
		}
		if !first {
			updateExpression += ","
		}
		updateExpression += fmt.Sprintf(" #%s = :%s", field, field)
		expressionNames["#"+field] = field
		expressionValues[":"+field] = &types.AttributeValueMemberS{Value: value}
		first = false
	}

	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}

	attrs, err := ps.Dynamo.UpdateItem(ctx, models.ProfilesTable, updateExpression, key, expressionValues, expressionNames)
	if err != nil {
		return nil, err
	}

	var profile models.Profile
	if err := attributevalue.UnmarshalMap(attrs, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated profile: %w", err)
	}
	return &profile, nil
}

// MarkEmailVerified flips the verification flag on a profile.
func (ps *ProfileService) MarkEmailVerified(ctx context.Context, userID string) error {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
	updateExpression := "SET emailVerified = :verified"
	expressionValues := map[string]types.AttributeValue{
		":verified": &types.AttributeValueMemberBOOL{Value: true},
	}

	_, err := ps.Dynamo.UpdateItem(ctx, models.ProfilesTable, updateExpression, key, expressionValues, nil)
	return err
}
