package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"polyglot_server/middleware"
	"polyglot_server/services"
	"polyglot_server/socket"

	"github.com/gorilla/mux"
)

// ChatController handles chat listing, message history and sending.
type ChatController struct {
	ChatService *services.ChatService
	Notifier    *socket.Notifier
}

// NewChatController initializes a ChatController
func NewChatController(chatService *services.ChatService, notifier *socket.Notifier) *ChatController {
	return &ChatController{ChatService: chatService, Notifier: notifier}
}

// ListChatsHandler returns the user's chats joined with the other
// participant's profile, newest activity first.
func (c *ChatController) ListChatsHandler(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	chats, err := c.ChatService.ListChats(ctx, userID)
	if err != nil {
		log.Printf("❌ Failed to list chats for %s: %v", userID, err)
		http.Error(w, `{"error": "Failed to fetch chats"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chats)
}

// GetChatHandler returns a single chat with the other participant's profile.
func (c *ChatController) GetChatHandler(w http.ResponseWriter, r *http.Request) {
	chatID := mux.Vars(r)["chatId"]
	userID := middleware.UserID(r)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	chat, err := c.ChatService.GetChatDetail(ctx, chatID, userID)
	if err != nil {
		switch {
		case services.IsNotFound(err):
			http.Error(w, `{"error": "Chat not found"}`, http.StatusNotFound)
		case services.IsForbidden(err):
			http.Error(w, `{"error": "Not a participant of this chat"}`, http.StatusForbidden)
		default:
			log.Printf("❌ Failed to fetch chat %s: %v", chatID, err)
			http.Error(w, `{"error": "Failed to fetch chat"}`, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chat)
}

// maxMessageLimit bounds one history page; it also keeps the parsed limit
// inside int32 range for the store query.
const maxMessageLimit = 100

// GetMessagesHandler returns a chat's messages in ascending time order.
func (c *ChatController) GetMessagesHandler(w http.ResponseWriter, r *http.Request) {
	chatID := mux.Vars(r)["chatId"]
	userID := middleware.UserID(r)

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, `{"error": "Invalid limit parameter"}`, http.StatusBadRequest)
			return
		}
		if parsed > maxMessageLimit {
			parsed = maxMessageLimit
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := c.ChatService.GetMessages(ctx, chatID, userID, limit)
	if err != nil {
		switch {
		case services.IsNotFound(err):
			http.Error(w, `{"error": "Chat not found"}`, http.StatusNotFound)
		case services.IsForbidden(err):
			http.Error(w, `{"error": "Not a participant of this chat"}`, http.StatusForbidden)
		default:
			log.Printf("❌ Failed to fetch messages for chat %s: %v", chatID, err)
			http.Error(w, `{"error": "Failed to fetch messages"}`, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

// SendMessageHandler stores a message and broadcasts it to the chat room.
func (c *ChatController) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	chatID := mux.Vars(r)["chatId"]

	var request struct {
		Content string `json:"content"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request payload"}`, http.StatusBadRequest)
		return
	}

	if request.Content == "" {
		http.Error(w, `{"error": "Missing content"}`, http.StatusBadRequest)
		return
	}

	userID := middleware.UserID(r)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	message, err := c.ChatService.SendMessage(ctx, chatID, userID, request.Content)
	if err != nil {
		switch {
		case services.IsNotFound(err):
			http.Error(w, `{"error": "Chat not found"}`, http.StatusNotFound)
		case services.IsForbidden(err):
			http.Error(w, `{"error": "Not a participant of this chat"}`, http.StatusForbidden)
		default:
			log.Printf("❌ Failed to send message in chat %s: %v", chatID, err)
			http.Error(w, `{"error": "Failed to send message"}`, http.StatusInternalServerError)
		}
		return
	}

	c.Notifier.NewMessage(message)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(message)
}

// MarkReadHandler flags the other participant's messages as read.
func (c *ChatController) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	chatID := mux.Vars(r)["chatId"]
	userID := middleware.UserID(r)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.ChatService.MarkMessagesRead(ctx, chatID, userID); err != nil {
		switch {
		case services.IsNotFound(err):
			http.Error(w, `{"error": "Chat not found"}`, http.StatusNotFound)
		case services.IsForbidden(err):
			http.Error(w, `{"error": "Not a participant of this chat"}`, http.StatusForbidden)
		default:
			log.Printf("❌ Failed to mark messages read in chat %s: %v", chatID, err)
			http.Error(w, `{"error": "Failed to mark messages as read"}`, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Messages marked as read"})
}
