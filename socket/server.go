package socket

import (
	"log"

	"polyglot_server/middleware"
	"polyglot_server/models"

	socketio "github.com/googollee/go-socket.io"
)

// NewSocketServer initializes the realtime feed. Clients authenticate by
// emitting "join" with their session token and are placed in their own user
// room; chat rooms are joined per open conversation. Closing the page closes
// the socket, which tears down every room membership.
func NewSocketServer(jwtSecret string) *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(c socketio.Conn) error {
		log.Println("✅ Socket connected:", c.ID())
		return nil
	})

	server.OnEvent("/", "join", func(c socketio.Conn, token string) {
		userID, err := middleware.ParseUserID(token, jwtSecret)
		if err != nil {
			log.Printf("❌ Rejected socket join from %s: %v", c.ID(), err)
			return
		}
		c.Join(userRoom(userID))
		log.Printf("👥 Socket %s joined %s", c.ID(), userRoom(userID))
	})

	server.OnEvent("/", "joinChat", func(c socketio.Conn, chatID string) {
		if chatID == "" {
			log.Println("❌ Invalid chatId in joinChat request")
			return
		}
		c.Join(chatRoom(chatID))
	})

	server.OnEvent("/", "leaveChat", func(c socketio.Conn, chatID string) {
		c.Leave(chatRoom(chatID))
	})

	server.OnDisconnect("/", func(c socketio.Conn, reason string) {
		log.Println("❌ Socket disconnected:", c.ID(), reason)
	})

	return server
}

func userRoom(userID string) string { return "user:" + userID }

func chatRoom(chatID string) string { return "chat:" + chatID }

// Notifier pushes store events to the sessions that subscribed to them.
// Delivery is independent of the HTTP responses that triggered the writes;
// the two channels may interleave arbitrarily.
type Notifier struct {
	Server *socketio.Server
}

// ConnectionRequest surfaces a new pending request to the addressed user.
// One event per insert: simultaneous requests all reach the client.
func (n *Notifier) ConnectionRequest(request *models.ConnectionRequest) {
	if n == nil || n.Server == nil {
		return
	}
	n.Server.BroadcastToRoom("/", userRoom(request.ToUserID), "connection_request", request)
}

// NewMessage pushes a stored message to the chat's open sessions.
func (n *Notifier) NewMessage(message *models.Message) {
	if n == nil || n.Server == nil {
		return
	}
	n.Server.BroadcastToRoom("/", chatRoom(message.ChatID), "new_message", message)
}
