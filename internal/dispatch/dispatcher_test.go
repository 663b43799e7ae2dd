package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/fathima-sithara/dm-service/internal/models"
)

type fakeStore struct {
	inserted  []*models.Message
	insertErr error
}

func (f *fakeStore) Insert(_ context.Context, m *models.Message) (*models.Message, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	m.ID = primitive.NewObjectID()
	f.inserted = append(f.inserted, m)
	return m, nil
}

func (f *fakeStore) History(context.Context, string, int64, int64) ([]*models.Message, error) {
	return nil, nil
}
func (f *fakeStore) MarkRead(context.Context, string, string) (int64, error) { return 0, nil }
func (f *fakeStore) UnreadCounts(context.Context, string) (map[string]int64, error) {
	return nil, nil
}
func (f *fakeStore) RecentConversations(context.Context, string, int64) ([]*models.ConversationSummary, error) {
	return nil, nil
}
func (f *fakeStore) Search(context.Context, string, string) ([]*models.Message, error) {
	return nil, nil
}
func (f *fakeStore) Delete(context.Context, string) error { return nil }

type fakeRegistry struct {
	online bool
	pushes map[string][][]byte
}

func newFakeRegistry(online bool) *fakeRegistry {
	return &fakeRegistry{online: online, pushes: map[string][][]byte{}}
}

func (f *fakeRegistry) Send(userID string, payload []byte) bool {
	if !f.online {
		return false
	}
	f.pushes[userID] = append(f.pushes[userID], payload)
	return true
}

type fakeEvents struct {
	published []any
}

func (f *fakeEvents) PublishMessageSent(_ context.Context, payload any) error {
	f.published = append(f.published, payload)
	return nil
}

func newDispatcher(store *fakeStore, reg *fakeRegistry, events EventPublisher) *Dispatcher {
	return New(store, reg, events, zap.NewNop().Sugar())
}

func decodeReply(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestDispatch_InvalidJSON(t *testing.T) {
	req := require.New(t)
	store := &fakeStore{}
	d := newDispatcher(store, newFakeRegistry(true), nil)

	reply := decodeReply(t, d.Dispatch(context.Background(), "alice", []byte("{not json")))

	req.Equal("Invalid JSON", reply["error"])
	req.Empty(store.inserted)
}

func TestDispatch_MissingFields(t *testing.T) {
	frames := []string{
		`{}`,
		`{"receiver_id":"bob"}`,
		`{"message":"hi"}`,
		`{"receiver_id":"","message":"hi"}`,
		`{"receiver_id":"bob","message":""}`,
	}
	for _, frame := range frames {
		req := require.New(t)
		store := &fakeStore{}
		d := newDispatcher(store, newFakeRegistry(true), nil)

		reply := decodeReply(t, d.Dispatch(context.Background(), "alice", []byte(frame)))

		req.Equal("Invalid message format", reply["error"], "frame %s", frame)
		req.Empty(store.inserted)
	}
}

func TestDispatch_ReceiverOffline(t *testing.T) {
	req := require.New(t)
	store := &fakeStore{}
	d := newDispatcher(store, newFakeRegistry(false), nil)

	reply := decodeReply(t, d.Dispatch(context.Background(), "alice", []byte(`{"receiver_id":"bob","message":"hi"}`)))

	req.Len(store.inserted, 1)
	m := store.inserted[0]
	req.Equal("alice", m.SenderID)
	req.Equal("bob", m.ReceiverID)
	req.Equal("hi", m.Body)
	req.False(m.Read)
	req.Equal(models.ConversationKey("bob", "alice"), m.ConversationID)
	req.WithinDuration(time.Now().UTC(), m.CreatedAt, 5*time.Second)

	req.Equal(false, reply["delivered"])
	req.Equal(false, reply["is_read"])
	req.Equal(m.ID.Hex(), reply["id"])
}

func TestDispatch_ReceiverOnline(t *testing.T) {
	req := require.New(t)
	store := &fakeStore{}
	reg := newFakeRegistry(true)
	d := newDispatcher(store, reg, nil)

	reply := decodeReply(t, d.Dispatch(context.Background(), "alice", []byte(`{"receiver_id":"bob","message":"hey"}`)))

	req.Equal(true, reply["delivered"])
	req.Len(reg.pushes["bob"], 1)

	push := decodeReply(t, reg.pushes["bob"][0])
	req.Equal(reply["id"], push["id"])
	req.Equal("alice", push["sender_id"])
	req.Equal("hey", push["message"])
	req.Equal(reply["timestamp"], push["timestamp"])
	req.Equal(false, push["is_read"])
	// delivered is sender-only
	req.NotContains(push, "delivered")
}

func TestDispatch_StoreFailureAbortsDelivery(t *testing.T) {
	req := require.New(t)
	store := &fakeStore{insertErr: errors.New("mongo down")}
	reg := newFakeRegistry(true)
	d := newDispatcher(store, reg, nil)

	reply := decodeReply(t, d.Dispatch(context.Background(), "alice", []byte(`{"receiver_id":"bob","message":"hi"}`)))

	req.Equal("Failed to store message", reply["error"])
	req.Empty(reg.pushes)
}

func TestDispatch_SelfMessageAllowed(t *testing.T) {
	req := require.New(t)
	store := &fakeStore{}
	reg := newFakeRegistry(true)
	d := newDispatcher(store, reg, nil)

	reply := decodeReply(t, d.Dispatch(context.Background(), "alice", []byte(`{"receiver_id":"alice","message":"note to self"}`)))

	req.Len(store.inserted, 1)
	req.Equal("alice:alice", store.inserted[0].ConversationID)
	req.Equal(true, reply["delivered"])
}

func TestDispatch_PublishesEventAfterPersist(t *testing.T) {
	req := require.New(t)
	store := &fakeStore{}
	events := &fakeEvents{}
	d := newDispatcher(store, newFakeRegistry(false), events)

	d.Dispatch(context.Background(), "alice", []byte(`{"receiver_id":"bob","message":"hi"}`))

	req.Len(events.published, 1)
	m, ok := events.published[0].(*models.Message)
	req.True(ok)
	req.Equal("bob", m.ReceiverID)
}

func TestDispatch_ConnectionUsableAfterBadFrame(t *testing.T) {
	req := require.New(t)
	store := &fakeStore{}
	d := newDispatcher(store, newFakeRegistry(false), nil)

	bad := decodeReply(t, d.Dispatch(context.Background(), "alice", []byte("garbage")))
	req.Equal("Invalid JSON", bad["error"])

	good := decodeReply(t, d.Dispatch(context.Background(), "alice", []byte(`{"receiver_id":"bob","message":"hi"}`)))
	req.Equal(false, good["delivered"])
	req.Len(store.inserted, 1)
}
