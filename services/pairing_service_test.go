package services

import (
	"context"
	"strings"
	"testing"

	"polyglot_server/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// pairingFixture wires a PairingService over a fake store that knows one
// token, its owner's profile, and the chat written by the transaction.
type pairingFixture struct {
	service       *PairingService
	transactCalls []*dynamodb.TransactWriteItemsInput
	chatQueries   int
}

func newPairingFixture(t *testing.T, transactErr error) *pairingFixture {
	t.Helper()

	fixture := &pairingFixture{}

	tokenItem := mustItem(t, models.ConnectionToken{
		Token:     "tok-1",
		TokenID:   "tok-id-1",
		UserID:    "owner-1",
		CreatedAt: "2026-01-01T00:00:00Z",
	})
	ownerItem := mustItem(t, models.Profile{
		UserID:    "owner-1",
		FirstName: "Ana",
		LastName:  "Silva",
		Language:  "pt",
		Email:     "ana@example.com",
	})
	chatItem := mustItem(t, models.Chat{
		ChatID:       "chat-1",
		ConnectionID: "conn-1",
		CreatedAt:    "2026-01-01T00:00:00Z",
	})

	client := &fakeDynamoClient{
		getItem: func(input *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
			switch *input.TableName {
			case models.ConnectionTokensTable:
				if key, ok := input.Key["token"]; ok && extractS(key) == "tok-1" {
					return &dynamodb.GetItemOutput{Item: tokenItem}, nil
				}
				return &dynamodb.GetItemOutput{}, nil
			case models.ProfilesTable:
				return &dynamodb.GetItemOutput{Item: ownerItem}, nil
			}
			return &dynamodb.GetItemOutput{}, nil
		},
		query: func(input *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			if *input.TableName == models.ChatsTable {
				fixture.chatQueries++
				return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{chatItem}}, nil
			}
			return &dynamodb.QueryOutput{}, nil
		},
		transactWriteItems: func(input *dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
			fixture.transactCalls = append(fixture.transactCalls, input)
			if transactErr != nil {
				return nil, transactErr
			}
			return &dynamodb.TransactWriteItemsOutput{}, nil
		},
	}

	dynamo := &DynamoService{Client: client}
	fixture.service = &PairingService{
		Tokens:      &TokenService{Dynamo: dynamo, BaseURL: "https://polyglot.example"},
		Connections: &ConnectionService{Dynamo: dynamo},
		Profiles:    &ProfileService{Dynamo: dynamo},
	}
	return fixture
}

func TestResolveTokenUnknownToken(t *testing.T) {
	fixture := newPairingFixture(t, nil)

	resolution := fixture.service.ResolveToken(context.Background(), "no-such-token", "visitor-1")

	if resolution.State != StateInvalidToken {
		t.Fatalf("expected %s, got %s", StateInvalidToken, resolution.State)
	}
	if len(fixture.transactCalls) != 0 {
		t.Fatalf("expected no writes for an unknown token, got %d", len(fixture.transactCalls))
	}
}

func TestResolveTokenLoginRequired(t *testing.T) {
	fixture := newPairingFixture(t, nil)

	resolution := fixture.service.ResolveToken(context.Background(), "tok-1", "")

	if resolution.State != StateLoginRequired {
		t.Fatalf("expected %s, got %s", StateLoginRequired, resolution.State)
	}
	if !strings.HasPrefix(resolution.RedirectPath, "/auth/login?redirect=") {
		t.Errorf("unexpected redirect path %q", resolution.RedirectPath)
	}
	if !strings.Contains(resolution.RedirectPath, "tok-1") {
		t.Errorf("redirect path should resume the token, got %q", resolution.RedirectPath)
	}
	if resolution.Owner.FirstName != "Ana" {
		t.Errorf("expected owner profile in resolution, got %+v", resolution.Owner)
	}
	if len(fixture.transactCalls) != 0 {
		t.Fatalf("anonymous visit must not write, got %d transactions", len(fixture.transactCalls))
	}
}

func TestResolveTokenCreatesConnectionAndChat(t *testing.T) {
	fixture := newPairingFixture(t, nil)

	resolution := fixture.service.ResolveToken(context.Background(), "tok-1", "visitor-1")

	if resolution.State != StateRedirect {
		t.Fatalf("expected %s, got %s (%s)", StateRedirect, resolution.State, resolution.Message)
	}
	if resolution.ChatID != "chat-1" {
		t.Errorf("expected chat-1, got %q", resolution.ChatID)
	}
	if resolution.RedirectPath != "/main/chat/chat-1" {
		t.Errorf("unexpected redirect path %q", resolution.RedirectPath)
	}

	if len(fixture.transactCalls) != 1 {
		t.Fatalf("expected exactly one transaction, got %d", len(fixture.transactCalls))
	}
	items := fixture.transactCalls[0].TransactItems
	if len(items) != 2 {
		t.Fatalf("expected connection and chat in one transaction, got %d items", len(items))
	}
	if items[0].Put == nil || *items[0].Put.TableName != models.ConnectionsTable {
		t.Fatalf("first transact item should put the connection")
	}
	if items[0].Put.ConditionExpression == nil || !strings.Contains(*items[0].Put.ConditionExpression, "attribute_not_exists(pairKey)") {
		t.Errorf("connection put must be guarded by the pair condition")
	}
	if items[1].Put == nil || *items[1].Put.TableName != models.ChatsTable {
		t.Fatalf("second transact item should put the chat")
	}
}

func TestResolveTokenAlreadyConnected(t *testing.T) {
	fixture := newPairingFixture(t, conditionalCheckFailure())

	resolution := fixture.service.ResolveToken(context.Background(), "tok-1", "visitor-1")

	if resolution.State != StateAlreadyConnected {
		t.Fatalf("expected %s, got %s", StateAlreadyConnected, resolution.State)
	}
	if resolution.Message != "Connection request already sent" {
		t.Errorf("unexpected message %q", resolution.Message)
	}
	if len(fixture.transactCalls) != 1 {
		t.Fatalf("conflict should come from the single transaction, got %d", len(fixture.transactCalls))
	}
	if fixture.chatQueries != 0 {
		t.Errorf("no chat lookup expected after a conflict, got %d", fixture.chatQueries)
	}
}

func TestResolveTokenByOwnerFails(t *testing.T) {
	fixture := newPairingFixture(t, nil)

	resolution := fixture.service.ResolveToken(context.Background(), "tok-1", "owner-1")

	if resolution.State != StateFailed {
		t.Fatalf("expected %s for a self-pairing attempt, got %s", StateFailed, resolution.State)
	}
	if len(fixture.transactCalls) != 0 {
		t.Fatalf("self-pairing must not write, got %d transactions", len(fixture.transactCalls))
	}
}

// ResolveToken twice: the token row survives the first use, so the second
// resolve reaches the condition check instead of reporting an invalid token.
func TestResolveTokenSecondUseHitsConflict(t *testing.T) {
	fixture := newPairingFixture(t, nil)

	first := fixture.service.ResolveToken(context.Background(), "tok-1", "visitor-1")
	if first.State != StateRedirect {
		t.Fatalf("first resolve: expected %s, got %s", StateRedirect, first.State)
	}

	fixture2 := newPairingFixture(t, conditionalCheckFailure())
	second := fixture2.service.ResolveToken(context.Background(), "tok-1", "visitor-1")
	if second.State != StateAlreadyConnected {
		t.Fatalf("second resolve: expected %s, got %s", StateAlreadyConnected, second.State)
	}
}
