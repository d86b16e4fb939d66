package models

// ChatWithProfile is a chat joined with the other participant's profile,
// the shape the contacts list renders.
type ChatWithProfile struct {
	ChatID        string         `json:"chatId"`
	ConnectionID  string         `json:"connectionId"`
	LastMessage   string         `json:"lastMessage,omitempty"`
	LastMessageAt string         `json:"lastMessageAt,omitempty"`
	User          ProfileSummary `json:"user"`
}
