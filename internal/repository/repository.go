package repository

import (
	"context"
	"errors"

	"github.com/fathima-sithara/dm-service/internal/models"
)

var ErrNotFound = errors.New("not found")

// MessageStore is the durable message log. Any backing technology satisfying
// these read/write contracts is substitutable.
type MessageStore interface {
	Insert(ctx context.Context, m *models.Message) (*models.Message, error)
	History(ctx context.Context, conversationID string, limit, skip int64) ([]*models.Message, error)
	MarkRead(ctx context.Context, senderID, receiverID string) (int64, error)
	UnreadCounts(ctx context.Context, receiverID string) (map[string]int64, error)
	RecentConversations(ctx context.Context, userID string, limit int64) ([]*models.ConversationSummary, error)
	Search(ctx context.Context, userID, query string) ([]*models.Message, error)
	Delete(ctx context.Context, id string) error
}
