package models

// Chat is the message channel bound 1:1 to a Connection. Chats are only
// ever written in the same transaction that writes their Connection.
type Chat struct {
	ChatID        string `dynamodbav:"chatId" json:"chatId"`
	ConnectionID  string `dynamodbav:"connectionId" json:"connectionId"`
	LastMessage   string `dynamodbav:"lastMessage,omitempty" json:"lastMessage,omitempty"`
	LastMessageAt string `dynamodbav:"lastMessageAt,omitempty" json:"lastMessageAt,omitempty"`
	CreatedAt     string `dynamodbav:"createdAt" json:"createdAt"`
}

type Message struct {
	ChatID            string `dynamodbav:"chatId" json:"chatId"`
	CreatedAt         string `dynamodbav:"createdAt" json:"createdAt"`
	MessageID         string `dynamodbav:"messageId" json:"messageId"`
	SenderID          string `dynamodbav:"senderId" json:"senderId"`
	Content           string `dynamodbav:"content" json:"content"`
	TranslatedContent string `dynamodbav:"translatedContent,omitempty" json:"translatedContent,omitempty"`
	IsUnread          bool   `dynamodbav:"isUnread" json:"isUnread"`
}

const ChatsTable = "Chats"

const ChatConnectionIndex = "connectionId-index"

const MessagesTable = "Messages"
