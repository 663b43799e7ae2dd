package ws

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(userID string, buffer int) *Client {
	return NewClient(nil, userID, userID+"-sock", buffer)
}

func TestHub_SendToAbsentUser(t *testing.T) {
	h := NewHub()
	require.False(t, h.Send("nobody", []byte("hi")))
}

func TestHub_RegisterAndSend(t *testing.T) {
	req := require.New(t)
	h := NewHub()
	c := newTestClient("u1", 4)

	h.Register("u1", c)
	req.True(h.Send("u1", []byte("hi")))
	req.Equal([]byte("hi"), <-c.send)
}

func TestHub_LastConnectionWins(t *testing.T) {
	req := require.New(t)
	h := NewHub()
	old := newTestClient("u1", 4)
	fresh := newTestClient("u1", 4)

	h.Register("u1", old)
	h.Register("u1", fresh)

	req.True(h.Send("u1", []byte("hi")))
	req.Len(fresh.send, 1)
	req.Len(old.send, 0)
}

func TestHub_UnregisterIsIdentityGuarded(t *testing.T) {
	req := require.New(t)
	h := NewHub()
	old := newTestClient("u1", 4)
	fresh := newTestClient("u1", 4)

	h.Register("u1", old)
	h.Register("u1", fresh)

	// the displaced connection tears down late; the new one must survive
	h.Unregister("u1", old)
	req.True(h.Send("u1", []byte("hi")))

	h.Unregister("u1", fresh)
	req.False(h.Send("u1", []byte("hi")))
	req.Equal(0, h.Count())
}

func TestHub_SendFullBufferNotDelivered(t *testing.T) {
	req := require.New(t)
	h := NewHub()
	c := newTestClient("u1", 1)
	h.Register("u1", c)

	req.True(h.Send("u1", []byte("first")))
	req.False(h.Send("u1", []byte("second")))
}

func TestHub_SendClosedClientNotDelivered(t *testing.T) {
	req := require.New(t)
	h := NewHub()
	c := newTestClient("u1", 4)
	h.Register("u1", c)

	c.Close()
	req.False(h.Send("u1", []byte("hi")))
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	c := newTestClient("u1", 4)
	c.Close()
	c.Close()
}

func TestHub_ConcurrentRegisterUnregisterSend(t *testing.T) {
	h := NewHub()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		user := fmt.Sprintf("u%d", i%4)
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c := newTestClient(user, 1)
				h.Register(user, c)
				h.Send(user, []byte("x"))
				h.Unregister(user, c)
			}
		}(user)
	}
	wg.Wait()
}
