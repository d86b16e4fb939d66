package models

// Connection is the persistent record of two paired users. The table is
// keyed by PairKey so the store itself rejects a second connection for the
// same unordered pair.
type Connection struct {
	PairKey      string `dynamodbav:"pairKey" json:"-"`
	ConnectionID string `dynamodbav:"connectionId" json:"connectionId"`
	User1ID      string `dynamodbav:"user1Id" json:"user1Id"`
	User2ID      string `dynamodbav:"user2Id" json:"user2Id"`
	CreatedAt    string `dynamodbav:"createdAt" json:"createdAt"`
}

// OtherUser returns the participant that is not userID.
func (c Connection) OtherUser(userID string) string {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// PairKey canonicalizes an unordered user pair into a single partition key.
// Both argument orders produce the same key.
func PairKey(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return userA + "#" + userB
}

const ConnectionsTable = "Connections"

// GSIs on the Connections table.
const (
	User1Index        = "user1Id-index"
	User2Index        = "user2Id-index"
	ConnectionIDIndex = "connectionId-index"
)
