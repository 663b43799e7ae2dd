package dispatch

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/fathima-sithara/dm-service/internal/metrics"
	"github.com/fathima-sithara/dm-service/internal/models"
	"github.com/fathima-sithara/dm-service/internal/repository"
)

// Registry is the liveness index the dispatcher pushes through.
type Registry interface {
	Send(userID string, payload []byte) bool
}

// EventPublisher receives a message-sent event after each successful write.
type EventPublisher interface {
	PublishMessageSent(ctx context.Context, payload any) error
}

type inboundFrame struct {
	ReceiverID string `json:"receiver_id"`
	Message    string `json:"message"`
}

type messageFrame struct {
	ID        string `json:"id"`
	SenderID  string `json:"sender_id"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	IsRead    bool   `json:"is_read"`
}

type ackFrame struct {
	messageFrame
	Delivered bool `json:"delivered"`
}

type errorFrame struct {
	Error string `json:"error"`
}

// Dispatcher turns one inbound frame into exactly one durable record and at
// most one delivery attempt. The reply acknowledges persistence, not reading.
type Dispatcher struct {
	store    repository.MessageStore
	registry Registry
	events   EventPublisher // optional
	log      *zap.SugaredLogger
}

func New(store repository.MessageStore, registry Registry, events EventPublisher, log *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{store: store, registry: registry, events: events, log: log}
}

// Dispatch handles one frame from senderID and returns the reply frame for
// the originating connection. Validation failures never reach the store, a
// store failure aborts the event before any delivery attempt, and a failed
// push only shows up as delivered:false.
func (d *Dispatcher) Dispatch(ctx context.Context, senderID string, frame []byte) []byte {
	var in inboundFrame
	if err := json.Unmarshal(frame, &in); err != nil {
		return marshalFrame(errorFrame{Error: "Invalid JSON"})
	}
	if in.ReceiverID == "" || in.Message == "" {
		return marshalFrame(errorFrame{Error: "Invalid message format"})
	}

	m := &models.Message{
		SenderID:       senderID,
		ReceiverID:     in.ReceiverID,
		Body:           in.Message,
		CreatedAt:      time.Now().UTC(),
		Read:           false,
		ConversationID: models.ConversationKey(senderID, in.ReceiverID),
	}
	stored, err := d.store.Insert(ctx, m)
	if err != nil {
		d.log.Errorw("store message", "sender", senderID, "receiver", in.ReceiverID, "err", err)
		return marshalFrame(errorFrame{Error: "Failed to store message"})
	}
	metrics.MessagesDispatched.Inc()

	if d.events != nil {
		if err := d.events.PublishMessageSent(ctx, stored); err != nil {
			d.log.Warnw("publish message event", "id", stored.ID.Hex(), "err", err)
		}
	}

	mf := messageFrame{
		ID:        stored.ID.Hex(),
		SenderID:  stored.SenderID,
		Message:   stored.Body,
		Timestamp: stored.CreatedAt.Format(time.RFC3339Nano),
		IsRead:    false,
	}
	delivered := d.registry.Send(in.ReceiverID, marshalFrame(mf))
	if delivered {
		metrics.MessagesDelivered.Inc()
	}

	return marshalFrame(ackFrame{messageFrame: mf, Delivered: delivered})
}

func marshalFrame(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
