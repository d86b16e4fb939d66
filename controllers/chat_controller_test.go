package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"polyglot_server/middleware"
	"polyglot_server/models"
	"polyglot_server/services"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/gorilla/mux"
)

// chatStub serves one chat between user-1 and user-2 and records the
// message query it receives.
type chatStub struct {
	chatItem       map[string]types.AttributeValue
	connectionItem map[string]types.AttributeValue
	messageQuery   *dynamodb.QueryInput
}

func (s *chatStub) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return &dynamodb.PutItemOutput{}, nil
}

func (s *chatStub) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if *params.TableName == models.ChatsTable {
		return &dynamodb.GetItemOutput{Item: s.chatItem}, nil
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (s *chatStub) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	switch *params.TableName {
	case models.ConnectionsTable:
		return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{s.connectionItem}}, nil
	case models.MessagesTable:
		s.messageQuery = params
	}
	return &dynamodb.QueryOutput{}, nil
}

func (s *chatStub) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	return &dynamodb.UpdateItemOutput{}, nil
}

func (s *chatStub) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	return &dynamodb.DeleteItemOutput{}, nil
}

func (s *chatStub) TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func chatTestRouter(t *testing.T) (*mux.Router, *chatStub) {
	t.Helper()

	stub := &chatStub{
		chatItem: marshalItem(t, models.Chat{ChatID: "chat-1", ConnectionID: "conn-1"}),
		connectionItem: marshalItem(t, models.Connection{
			PairKey:      models.PairKey("user-1", "user-2"),
			ConnectionID: "conn-1",
			User1ID:      "user-1",
			User2ID:      "user-2",
		}),
	}

	dynamo := &services.DynamoService{Client: stub}
	chatService := &services.ChatService{Dynamo: dynamo, Connections: &services.ConnectionService{Dynamo: dynamo}}
	controller := NewChatController(chatService, nil)

	r := mux.NewRouter()
	chatRoutes := r.PathPrefix("/api/chats").Subrouter()
	chatRoutes.Use(middleware.Auth(testJWTSecret))
	chatRoutes.HandleFunc("/{chatId}/messages", controller.GetMessagesHandler).Methods("GET")
	return r, stub
}

func messagesRequest(t *testing.T, userID, query string) *http.Request {
	t.Helper()
	req := visitorRequest(t, "unused", userID)
	req.URL.Path = "/api/chats/chat-1/messages"
	req.URL.RawQuery = query
	return req
}

func TestGetMessagesHandlerCapsLimit(t *testing.T) {
	router, stub := chatTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, messagesRequest(t, "user-1", "limit=5000000000"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.messageQuery == nil {
		t.Fatal("expected a message query")
	}
	if limit := *stub.messageQuery.Limit; limit != 100 {
		t.Errorf("expected capped limit 100, got %d", limit)
	}
}

func TestGetMessagesHandlerRejectsBadLimit(t *testing.T) {
	router, _ := chatTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, messagesRequest(t, "user-1", "limit=zero"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetMessagesHandlerForbidsNonParticipant(t *testing.T) {
	router, stub := chatTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, messagesRequest(t, "stranger", ""))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if stub.messageQuery != nil {
		t.Error("message history must not be queried for non-participants")
	}
}
