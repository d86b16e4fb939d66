package models

// ConnectionRequest is created by the scan flow and mutated only by the
// addressed user.
type ConnectionRequest struct {
	RequestID  string `dynamodbav:"requestId" json:"requestId"`
	FromUserID string `dynamodbav:"fromUserId" json:"fromUserId"`
	ToUserID   string `dynamodbav:"toUserId" json:"toUserId"`
	Status     string `dynamodbav:"status" json:"status"`
	CreatedAt  string `dynamodbav:"createdAt" json:"createdAt"`
}

const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusRejected = "rejected"
)

const ConnectionRequestsTable = "ConnectionRequests"

// ToUserIndex lets the notifier and the approval dialog list requests
// addressed to one user.
const ToUserIndex = "toUserId-index"
