package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a single direct message. Immutable once stored, except for the
// read flag, which only ever transitions false -> true.
type Message struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SenderID       string             `bson:"sender_id" json:"sender_id"`
	ReceiverID     string             `bson:"receiver_id" json:"receiver_id"`
	Body           string             `bson:"message" json:"message"`
	CreatedAt      time.Time          `bson:"timestamp" json:"timestamp"`
	Read           bool               `bson:"is_read" json:"is_read"`
	ConversationID string             `bson:"conversation_id" json:"conversation_id"`
}

// ConversationSummary is the latest message of a conversation annotated with
// how many messages from the counterpart are still unread.
type ConversationSummary struct {
	Message     `bson:",inline"`
	UnreadCount int64 `json:"unread_count"`
}

// ConversationKey returns the canonical id for the unordered user pair, so
// both directions of a conversation share a single key.
func ConversationKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}
