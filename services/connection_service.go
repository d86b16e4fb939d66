package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"polyglot_server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// ConnectionService owns both pairing entry points: connection requests from
// the scan flow and the atomic connection+chat procedure behind the token
// flow.
type ConnectionService struct {
	Dynamo *DynamoService
}

// ScanPayload is the QR payload users display: the structured schema both
// pages now share.
type ScanPayload struct {
	ID       string `json:"id"`
	Language string `json:"language,omitempty"`
}

// ParseScanPayload decodes a scanned QR payload. Non-JSON input degrades to
// the legacy form where the whole string is the target user id.
func ParseScanPayload(raw string) ScanPayload {
	var payload ScanPayload
	if err := json.Unmarshal([]byte(raw), &payload); err == nil && payload.ID != "" {
		return payload
	}
	return ScanPayload{ID: raw}
}

// CreateRequest inserts a pending connection request from the scan flow.
// The target id is taken from the payload verbatim; an unknown target
// surfaces as a store failure. Scanning twice inserts two pending rows —
// there is no idempotence guard here, uniqueness lives on Connections.
func (cs *ConnectionService) CreateRequest(ctx context.Context, fromUserID, scannedPayload string) (*models.ConnectionRequest, error) {
	payload := ParseScanPayload(scannedPayload)

	if payload.ID == fromUserID {
		return nil, ErrSelfPairing
	}

	// The target must exist; a malformed id fails here, like a foreign-key
	// violation would.
	targetKey := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: payload.ID},
	}
	if _, err := cs.Dynamo.GetItem(ctx, models.ProfilesTable, targetKey); err != nil {
		return nil, fmt.Errorf("failed to resolve scan target '%s': %w", payload.ID, err)
	}

	request := models.ConnectionRequest{
		RequestID:  uuid.New().String(),
		FromUserID: fromUserID,
		ToUserID:   payload.ID,
		Status:     models.RequestStatusPending,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	if err := cs.Dynamo.PutItem(ctx, models.ConnectionRequestsTable, request); err != nil {
		return nil, err
	}

	log.Printf("✅ Connection request %s: %s -> %s", request.RequestID, fromUserID, payload.ID)
	return &request, nil
}

// PendingRequests returns every pending request addressed to userID. All of
// them surface; the approval dialog is not limited to the newest.
func (cs *ConnectionService) PendingRequests(ctx context.Context, userID string) ([]models.ConnectionRequest, error) {
	keyCondition := "toUserId = :toUserId"
	expressionValues := map[string]types.AttributeValue{
		":toUserId": &types.AttributeValueMemberS{Value: userID},
	}

	items, err := cs.Dynamo.QueryItemsWithIndex(ctx, models.ConnectionRequestsTable, models.ToUserIndex, keyCondition, expressionValues, nil, 100)
	if err != nil {
		return nil, err
	}

	var requests []models.ConnectionRequest
	if err := attributevalue.UnmarshalListOfMaps(items, &requests); err != nil {
		return nil, fmt.Errorf("failed to unmarshal connection requests: %w", err)
	}

	pending := requests[:0]
	for _, request := range requests {
		if request.Status == models.RequestStatusPending {
			pending = append(pending, request)
		}
	}
	return pending, nil
}

// GetRequest fetches a request by id.
func (cs *ConnectionService) GetRequest(ctx context.Context, requestID string) (*models.ConnectionRequest, error) {
	key := map[string]types.AttributeValue{
		"requestId": &types.AttributeValueMemberS{Value: requestID},
	}
	item, err := cs.Dynamo.GetItem(ctx, models.ConnectionRequestsTable, key)
	if err != nil {
		return nil, err
	}

	var request models.ConnectionRequest
	if err := attributevalue.UnmarshalMap(item, &request); err != nil {
		return nil, fmt.Errorf("failed to unmarshal connection request: %w", err)
	}
	return &request, nil
}

// RespondToRequest sets a pending request to accepted or rejected. Only the
// addressed user may respond, and only once. Acceptance mutates status and
// nothing else: connections are created exclusively by the token procedure.
func (cs *ConnectionService) RespondToRequest(ctx context.Context, requestID, userID string, accept bool) (*models.ConnectionRequest, error) {
	request, err := cs.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if request.ToUserID != userID {
		return nil, ErrForbidden
	}
	if request.Status != models.RequestStatusPending {
		return nil, ErrRequestProcessed
	}

	status := models.RequestStatusRejected
	if accept {
		status = models.RequestStatusAccepted
	}

	updateExpression := "SET #s = :status"
	key := map[string]types.AttributeValue{
		"requestId": &types.AttributeValueMemberS{Value: requestID},
	}
	expressionValues := map[string]types.AttributeValue{
		":status": &types.AttributeValueMemberS{Value: status},
	}
	expressionNames := map[string]string{
		"#s": "status",
	}

	if _, err := cs.Dynamo.UpdateItem(ctx, models.ConnectionRequestsTable, updateExpression, key, expressionValues, expressionNames); err != nil {
		return nil, err
	}

	request.Status = status
	log.Printf("✅ Connection request %s %s by %s", requestID, status, userID)
	return request, nil
}

// CreateConnectionFromToken creates a Connection and its Chat in one
// all-or-nothing transaction, keyed by the canonical unordered pair. A
// concurrent or repeated invocation for the same pair trips the condition
// check and maps to ErrAlreadyConnected; no half-created state (connection
// without chat) can be observed. No other code path creates a Chat.
func (cs *ConnectionService) CreateConnectionFromToken(ctx context.Context, fromUserID, toUserID string) (*models.Connection, error) {
	if fromUserID == toUserID {
		return nil, ErrSelfPairing
	}

	createdAt := time.Now().UTC().Format(time.RFC3339)

	connection := models.Connection{
		PairKey:      models.PairKey(fromUserID, toUserID),
		ConnectionID: uuid.New().String(),
		User1ID:      fromUserID,
		User2ID:      toUserID,
		CreatedAt:    createdAt,
	}
	chat := models.Chat{
		ChatID:       uuid.New().String(),
		ConnectionID: connection.ConnectionID,
		CreatedAt:    createdAt,
	}

	connectionItem, err := attributevalue.MarshalMap(connection)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal connection: %w", err)
	}
	chatItem, err := attributevalue.MarshalMap(chat)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat: %w", err)
	}

	transactItems := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           aws.String(models.ConnectionsTable),
				Item:                connectionItem,
				ConditionExpression: aws.String("attribute_not_exists(pairKey)"),
			},
		},
		{
			Put: &types.Put{
				TableName: aws.String(models.ChatsTable),
				Item:      chatItem,
			},
		},
	}

	if err := cs.Dynamo.TransactWrite(ctx, transactItems); err != nil {
		if IsTransactionConflict(err) {
			return nil, ErrAlreadyConnected
		}
		return nil, err
	}

	log.Printf("✅ Connection %s created for pair %s (chat %s)", connection.ConnectionID, connection.PairKey, chat.ChatID)
	return &connection, nil
}

// GetConnectionByPair fetches the connection for an unordered user pair.
func (cs *ConnectionService) GetConnectionByPair(ctx context.Context, userA, userB string) (*models.Connection, error) {
	key := map[string]types.AttributeValue{
		"pairKey": &types.AttributeValueMemberS{Value: models.PairKey(userA, userB)},
	}
	item, err := cs.Dynamo.GetItem(ctx, models.ConnectionsTable, key)
	if err != nil {
		return nil, err
	}

	var connection models.Connection
	if err := attributevalue.UnmarshalMap(item, &connection); err != nil {
		return nil, fmt.Errorf("failed to unmarshal connection: %w", err)
	}
	return &connection, nil
}

// GetConnectionByID fetches a connection through the connectionId GSI.
func (cs *ConnectionService) GetConnectionByID(ctx context.Context, connectionID string) (*models.Connection, error) {
	keyCondition := "connectionId = :connectionId"
	expressionValues := map[string]types.AttributeValue{
		":connectionId": &types.AttributeValueMemberS{Value: connectionID},
	}

	items, err := cs.Dynamo.QueryItemsWithIndex(ctx, models.ConnectionsTable, models.ConnectionIDIndex, keyCondition, expressionValues, nil, 1)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrItemNotFound
	}

	var connection models.Connection
	if err := attributevalue.UnmarshalMap(items[0], &connection); err != nil {
		return nil, fmt.Errorf("failed to unmarshal connection: %w", err)
	}
	return &connection, nil
}

// GetChatByConnectionID fetches the chat bound to a connection.
func (cs *ConnectionService) GetChatByConnectionID(ctx context.Context, connectionID string) (*models.Chat, error) {
	keyCondition := "connectionId = :connectionId"
	expressionValues := map[string]types.AttributeValue{
		":connectionId": &types.AttributeValueMemberS{Value: connectionID},
	}

	items, err := cs.Dynamo.QueryItemsWithIndex(ctx, models.ChatsTable, models.ChatConnectionIndex, keyCondition, expressionValues, nil, 1)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrItemNotFound
	}

	var chat models.Chat
	if err := attributevalue.UnmarshalMap(items[0], &chat); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chat: %w", err)
	}
	return &chat, nil
}

// ListConnections fetches connections where userID is either participant,
// one GSI query per side.
func (cs *ConnectionService) ListConnections(ctx context.Context, userID string) ([]models.Connection, error) {
	var connections []models.Connection

	expressionValues := map[string]types.AttributeValue{
		":userId": &types.AttributeValueMemberS{Value: userID},
	}

	user1Items, err := cs.Dynamo.QueryItemsWithIndex(ctx, models.ConnectionsTable, models.User1Index, "user1Id = :userId", expressionValues, nil, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch connections: %w", err)
	}
	for _, item := range user1Items {
		var connection models.Connection
		if err := attributevalue.UnmarshalMap(item, &connection); err != nil {
			log.Printf("❌ Error unmarshalling connection from %s: %v", models.User1Index, err)
			continue
		}
		connections = append(connections, connection)
	}

	user2Items, err := cs.Dynamo.QueryItemsWithIndex(ctx, models.ConnectionsTable, models.User2Index, "user2Id = :userId", expressionValues, nil, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch connections: %w", err)
	}
	for _, item := range user2Items {
		var connection models.Connection
		if err := attributevalue.UnmarshalMap(item, &connection); err != nil {
			log.Printf("❌ Error unmarshalling connection from %s: %v", models.User2Index, err)
			continue
		}
		connections = append(connections, connection)
	}

	return connections, nil
}

// IsNotFound reports whether err is a missing-row condition from any layer.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound)
}
