package routes

import (
	"polyglot_server/controllers"
	"polyglot_server/services"
	"polyglot_server/socket"

	"github.com/gorilla/mux"
)

// RegisterChatRoutes sets up routes for chat operations under /api/chats
func RegisterChatRoutes(r *mux.Router, chatService *services.ChatService, notifier *socket.Notifier, authMW mux.MiddlewareFunc) {
	controller := controllers.NewChatController(chatService, notifier)

	chatRouter := r.PathPrefix("/api/chats").Subrouter()
	chatRouter.Use(authMW)
	chatRouter.HandleFunc("", controller.ListChatsHandler).Methods("GET")
	chatRouter.HandleFunc("/{chatId}", controller.GetChatHandler).Methods("GET")
	chatRouter.HandleFunc("/{chatId}/messages", controller.GetMessagesHandler).Methods("GET")
	chatRouter.HandleFunc("/{chatId}/messages", controller.SendMessageHandler).Methods("POST")
	chatRouter.HandleFunc("/{chatId}/messages/mark-as-read", controller.MarkReadHandler).Methods("POST")
}
