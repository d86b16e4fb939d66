package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"polyglot_server/models"
	"polyglot_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// messageTimeFormat keeps fractional seconds fixed-width. The Messages
// table sorts its createdAt key lexicographically, and RFC3339Nano trims
// trailing zeros, which puts ".1" after ".12".
const messageTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// ChatService reads and writes the message plane. It never creates chats:
// chat rows only come out of the connection transaction.
type ChatService struct {
	Dynamo      *DynamoService
	Connections *ConnectionService
}

// GetChat fetches a chat by id.
func (s *ChatService) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	key := map[string]types.AttributeValue{
		"chatId": &types.AttributeValueMemberS{Value: chatID},
	}
	item, err := s.Dynamo.GetItem(ctx, models.ChatsTable, key)
	if err != nil {
		return nil, err
	}

	var chat models.Chat
	if err := attributevalue.UnmarshalMap(item, &chat); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chat: %w", err)
	}
	return &chat, nil
}

// participants resolves a chat to its connection's user pair.
func (s *ChatService) participants(ctx context.Context, chat *models.Chat) (*models.Connection, error) {
	return s.Connections.GetConnectionByID(ctx, chat.ConnectionID)
}

// GetChatDetail returns the other participant's profile for the chat
// header. Callers outside the pair get ErrForbidden.
func (s *ChatService) GetChatDetail(ctx context.Context, chatID, userID string) (*models.ChatWithProfile, error) {
	chat, err := s.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}

	connection, err := s.participants(ctx, chat)
	if err != nil {
		return nil, err
	}
	if connection.User1ID != userID && connection.User2ID != userID {
		return nil, ErrForbidden
	}

	otherKey := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: connection.OtherUser(userID)},
	}
	item, err := s.Dynamo.GetItem(ctx, models.ProfilesTable, otherKey)
	if err != nil {
		return nil, err
	}

	var other models.Profile
	if err := attributevalue.UnmarshalMap(item, &other); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	return &models.ChatWithProfile{
		ChatID:        chat.ChatID,
		ConnectionID:  chat.ConnectionID,
		LastMessage:   chat.LastMessage,
		LastMessageAt: chat.LastMessageAt,
		User:          other.Summary(),
	}, nil
}

// ListChats returns every chat the user participates in, joined with the
// other participant's profile and sorted newest activity first.
func (s *ChatService) ListChats(ctx context.Context, userID string) ([]models.ChatWithProfile, error) {
	pairs, err := s.Connections.ListConnections(ctx, userID)
	if err != nil {
		return nil, err
	}

	chats := make([]models.ChatWithProfile, 0, len(pairs))
	for _, connection := range pairs {
		chat, err := s.Connections.GetChatByConnectionID(ctx, connection.ConnectionID)
		if err != nil {
			log.Printf("❌ No chat for connection %s: %v", connection.ConnectionID, err)
			continue
		}

		otherKey := map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: connection.OtherUser(userID)},
		}
		item, err := s.Dynamo.GetItem(ctx, models.ProfilesTable, otherKey)
		if err != nil {
			log.Printf("❌ Missing profile for connection %s: %v", connection.ConnectionID, err)
			continue
		}
		var other models.Profile
		if err := attributevalue.UnmarshalMap(item, &other); err != nil {
			continue
		}

		chats = append(chats, models.ChatWithProfile{
			ChatID:        chat.ChatID,
			ConnectionID:  connection.ConnectionID,
			LastMessage:   chat.LastMessage,
			LastMessageAt: chat.LastMessageAt,
			User:          other.Summary(),
		})
	}

	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].LastMessageAt > chats[j].LastMessageAt
	})
	return chats, nil
}

// SendMessage stores a message and rolls the chat's last-message preview
// forward. The sender must be a chat participant.
func (s *ChatService) SendMessage(ctx context.Context, chatID, senderID, content string) (*models.Message, error) {
	if err := s.memberOf(ctx, chatID, senderID); err != nil {
		return nil, err
	}

	message := models.Message{
		ChatID:    chatID,
		CreatedAt: time.Now().UTC().Format(messageTimeFormat),
		MessageID: uuid.New().String(),
		SenderID:  senderID,
		Content:   content,
		IsUnread:  true,
	}

	if err := s.Dynamo.PutItem(ctx, models.MessagesTable, message); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	updateExpression := "SET lastMessage = :lastMessage, lastMessageAt = :lastMessageAt"
	key := map[string]types.AttributeValue{
		"chatId": &types.AttributeValueMemberS{Value: chatID},
	}
	expressionValues := map[string]types.AttributeValue{
		":lastMessage":   &types.AttributeValueMemberS{Value: content},
		":lastMessageAt": &types.AttributeValueMemberS{Value: message.CreatedAt},
	}
	if _, err := s.Dynamo.UpdateItem(ctx, models.ChatsTable, updateExpression, key, expressionValues, nil); err != nil {
		// The message is stored; a stale preview is not worth failing the send.
		log.Printf("❌ Failed to update last message for chat %s: %v", chatID, err)
	}

	return &message, nil
}

// memberOf resolves a chat and rejects callers outside its user pair.
func (s *ChatService) memberOf(ctx context.Context, chatID, userID string) error {
	chat, err := s.GetChat(ctx, chatID)
	if err != nil {
		return err
	}
	connection, err := s.participants(ctx, chat)
	if err != nil {
		return err
	}
	if connection.User1ID != userID && connection.User2ID != userID {
		return ErrForbidden
	}
	return nil
}

// GetMessages fetches up to limit messages for a chat, newest first from
// the store, returned in ascending order for display. The caller must be a
// chat participant.
func (s *ChatService) GetMessages(ctx context.Context, chatID, userID string, limit int) ([]models.Message, error) {
	if err := s.memberOf(ctx, chatID, userID); err != nil {
		return nil, err
	}

	keyCondition := "chatId = :chatId"
	expressionValues := map[string]types.AttributeValue{
		":chatId": &types.AttributeValueMemberS{Value: chatID},
	}

	items, err := s.Dynamo.QueryItemsWithOptions(ctx, models.MessagesTable, keyCondition, expressionValues, nil, int32(limit), true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	var messages []models.Message
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// MarkMessagesRead marks messages the user received (not sent) as read.
// The caller must be a chat participant.
func (s *ChatService) MarkMessagesRead(ctx context.Context, chatID, userID string) error {
	if err := s.memberOf(ctx, chatID, userID); err != nil {
		return err
	}

	keyCondition := "chatId = :chatId"
	expressionValues := map[string]types.AttributeValue{
		":chatId": &types.AttributeValueMemberS{Value: chatID},
	}

	items, err := s.Dynamo.QueryItems(ctx, models.MessagesTable, keyCondition, expressionValues, nil, 100)
	if err != nil {
		return fmt.Errorf("failed to fetch messages: %w", err)
	}

	for _, item := range items {
		if utils.ExtractString(item, "senderId") == userID {
			continue
		}
		createdAt := utils.ExtractString(item, "createdAt")
		if createdAt == "" {
			continue
		}

		key := map[string]types.AttributeValue{
			"chatId":    &types.AttributeValueMemberS{Value: chatID},
			"createdAt": &types.AttributeValueMemberS{Value: createdAt},
		}
		updateExpression := "SET isUnread = :false"
		values := map[string]types.AttributeValue{
			":false": &types.AttributeValueMemberBOOL{Value: false},
		}
		if _, err := s.Dynamo.UpdateItem(ctx, models.MessagesTable, updateExpression, key, values, nil); err != nil {
			log.Printf("❌ Failed to mark message at %s read: %v", createdAt, err)
		}
	}
	return nil
}

// IsForbidden reports whether err is an authorization failure.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}
