package models

// ConnectionToken is a single-use pairing token shared out-of-band as a
// link. The table is keyed by the token string itself, so resolving a link
// is a single GetItem. The row is not removed on use: a second resolve of a
// consumed token must still reach the duplicate-connection branch.
type ConnectionToken struct {
	Token     string `dynamodbav:"token" json:"token"`
	TokenID   string `dynamodbav:"tokenId" json:"tokenId"`
	UserID    string `dynamodbav:"userId" json:"userId"`
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
}

const ConnectionTokensTable = "ConnectionTokens"

const TokenOwnerIndex = "userId-index"
