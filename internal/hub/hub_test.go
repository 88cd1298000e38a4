package hub

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debate-arena/internal/dto"
)

func newTestClient(h *Hub, userID string) *Client {
	return NewClient(h, nil, userID, "name-"+userID)
}

func drain(c *Client) []dto.Envelope {
	var out []dto.Envelope
	for {
		select {
		case raw, ok := <-c.send:
			if !ok {
				return out
			}
			var env dto.Envelope
			if err := json.Unmarshal(raw, &env); err == nil {
				out = append(out, env)
			}
		default:
			return out
		}
	}
}

func TestHub_BroadcastReachesOnlyJoinedSessions(t *testing.T) {
	h := NewHub()
	a, b, c := newTestClient(h, "a"), newTestClient(h, "b"), newTestClient(h, "c")
	require.True(t, h.Join(a, "r1"))
	require.True(t, h.Join(b, "r1"))
	require.True(t, h.Join(c, "r2"))

	h.BroadcastToRoom("r1", dto.Event{Event: dto.EventReceiveMessage, Data: "hello"})

	gotA := drain(a)
	require.Len(t, gotA, 1)
	assert.Equal(t, dto.EventReceiveMessage, gotA[0].Event)
	assert.Equal(t, "r1", gotA[0].RoomID)
	assert.JSONEq(t, `"hello"`, string(gotA[0].Data))
	assert.Len(t, drain(b), 1)
	assert.Empty(t, drain(c))
}

func TestHub_JoinAndLeaveAreIdempotent(t *testing.T) {
	h := NewHub()
	a := newTestClient(h, "a")

	assert.True(t, h.Join(a, "r1"))
	assert.False(t, h.Join(a, "r1"))
	assert.Equal(t, 1, h.SessionCount("r1"))

	assert.True(t, h.Leave(a, "r1"))
	assert.False(t, h.Leave(a, "r1"))
	assert.Equal(t, 0, h.SessionCount("r1"))
	assert.Empty(t, h.RoomIDs())

	h.BroadcastToRoom("r1", dto.Event{Event: dto.EventReceiveMessage})
	assert.Empty(t, drain(a), "left sessions get nothing")
}

func TestHub_SendToUserTargetsOneUser(t *testing.T) {
	h := NewHub()
	a1, a2, b := newTestClient(h, "a"), newTestClient(h, "a"), newTestClient(h, "b")
	for _, c := range []*Client{a1, a2, b} {
		h.Join(c, "r1")
	}

	h.SendToUser("r1", "a", dto.Event{Event: dto.EventAIWarning, Data: dto.StrikePayload{RoomID: "r1", Strikes: 3}})

	assert.Len(t, drain(a1), 1)
	assert.Len(t, drain(a2), 1)
	assert.Empty(t, drain(b))
}

func TestHub_RemoveDropsAllRoomsAndIsSafeToRepeat(t *testing.T) {
	h := NewHub()
	a := newTestClient(h, "a")
	h.Join(a, "r1")
	h.Join(a, "r2")

	rooms := h.Remove(a)
	assert.ElementsMatch(t, []string{"r1", "r2"}, rooms)
	assert.Empty(t, h.RoomIDs())
	assert.Empty(t, h.Remove(a))

	assert.False(t, a.Send(dto.Event{Event: dto.EventAck}), "closed sessions refuse sends")
	h.BroadcastToRoom("r1", dto.Event{Event: dto.EventReceiveMessage})
}

func TestHub_SlowSessionDoesNotBlockOthers(t *testing.T) {
	h := NewHub()
	slow, fast := newTestClient(h, "slow"), newTestClient(h, "fast")
	h.Join(slow, "r1")
	h.Join(fast, "r1")

	for i := 0; i < sendBufferSize; i++ {
		require.True(t, slow.Send(dto.Event{Event: dto.EventReceiveMessage}))
	}

	done := make(chan struct{})
	go func() {
		h.BroadcastToRoom("r1", dto.Event{Event: dto.EventScoreUpdated})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a full session queue")
	}
	assert.Len(t, drain(fast), 1)
}

type recordingDispatcher struct {
	mu           sync.Mutex
	disconnected map[string][]string
	wg           sync.WaitGroup
}

func (d *recordingDispatcher) Dispatch(context.Context, *Client, dto.Envelope) {}

func (d *recordingDispatcher) Disconnected(c *Client, roomIDs []string) {
	defer d.wg.Done()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disconnected[c.UserID()] = roomIDs
}

func TestHub_UnregisterNotifiesDispatcher(t *testing.T) {
	h := NewHub()
	d := &recordingDispatcher{disconnected: make(map[string][]string)}
	h.SetDispatcher(d)
	go h.Run()
	defer h.Stop()

	a := newTestClient(h, "a")
	require.True(t, h.QueueMessage(HubMessage{Type: "register", Client: a}))
	h.Join(a, "r9")

	d.wg.Add(1)
	require.True(t, h.QueueMessage(HubMessage{Type: "unregister", Client: a}))
	d.wg.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	assert.Equal(t, []string{"r9"}, d.disconnected["a"])
	assert.Equal(t, 0, h.SessionCount("r9"))
}

func TestClient_UnregisterAfterStopStillNotifiesDispatcher(t *testing.T) {
	h := NewHub()
	d := &recordingDispatcher{disconnected: make(map[string][]string)}
	h.SetDispatcher(d)
	h.Stop()

	a := newTestClient(h, "a")
	h.Join(a, "r3")
	require.False(t, h.QueueMessage(HubMessage{Type: "unregister", Client: a}))

	d.wg.Add(1)
	a.unregister()
	d.wg.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	assert.Equal(t, []string{"r3"}, d.disconnected["a"])
	assert.Equal(t, 0, h.SessionCount("r3"))
	_, open := <-a.send
	assert.False(t, open)
}
