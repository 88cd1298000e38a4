package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"debate-arena/internal/dto"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size allowed from peer; an image reference plus envelope.
	maxMessageSize = 3 << 20

	sendBufferSize = 256
)

// Dispatcher handles inbound frames. Dispatch is called from the session's
// read goroutine, so frames of one session are handled in order.
type Dispatcher interface {
	Dispatch(ctx context.Context, c *Client, env dto.Envelope)
	// Disconnected is called once per session with the rooms it was in.
	Disconnected(c *Client, roomIDs []string)
}

// HubMessage is a lifecycle request for the hub loop.
type HubMessage struct {
	Type   string // "register", "unregister"
	Client *Client
}

// Hub is the session directory: roomId -> sessions, and session -> rooms.
// It owns no room state; services reach sessions only through
// BroadcastToRoom and SendToUser.
type Hub struct {
	// Register and unregister requests, drained by Run.
	messageChan chan HubMessage

	// Closed by Stop; QueueMessage refuses work once it is closed.
	done     chan struct{}
	stopOnce sync.Once

	// Guards rooms and clients. Never held while calling the dispatcher.
	roomsMu sync.RWMutex

	// map[roomID]set of joined sessions.
	rooms map[string]map[*Client]bool

	// map[session]set of joined roomIDs. A registered session with no
	// rooms still has an (empty) entry here.
	clients map[*Client]map[string]bool

	// Handles inbound frames and disconnect cleanup.
	dispatcher Dispatcher
}

// NewHub creates an idle hub. SetDispatcher must be called before Run.
func NewHub() *Hub {
	return &Hub{
		messageChan: make(chan HubMessage, 512),
		done:        make(chan struct{}),
		rooms:       make(map[string]map[*Client]bool),
		clients:     make(map[*Client]map[string]bool),
	}
}

// SetDispatcher wires the inbound frame handler. The hub is constructed
// before the services that broadcast through it, hence the setter.
func (h *Hub) SetDispatcher(d Dispatcher) {
	h.dispatcher = d
}

// Run processes register and unregister requests until Stop is called.
func (h *Hub) Run() {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running...")

	// Lifecycle requests are serialized here; broadcasts bypass the loop
	// and only take roomsMu.
	for {
		select {
		case msg := <-h.messageChan:
			switch msg.Type {
			case "register":
				h.registerClient(msg.Client)
			case "unregister":
				h.unregisterClient(msg.Client)
			default:
				log.Warnf("Hub: Received unknown message type: %s", msg.Type)
			}
		case <-h.done:
			h.closeAll()
			log.Info("Hub is shutting down...")
			return
		}
	}
}

// Stop ends Run and closes every session.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// QueueMessage hands a lifecycle request to the hub loop without blocking.
// It reports false when the hub has stopped or the queue is full; the
// caller then owns the cleanup.
func (h *Hub) QueueMessage(msg HubMessage) bool {
	// Check done first so a stopped hub never accepts a request that Run
	// will not drain.
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.messageChan <- msg:
		return true
	default:
		logrus.WithFields(logrus.Fields{"message_type": msg.Type, "user_id": msg.Client.UserID()}).
			Warn("Hub message channel full, dropping message")
		return false
	}
}

func (h *Hub) registerClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to register a nil client")
		return
	}
	h.roomsMu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.clients[client] = make(map[string]bool)
	}
	h.roomsMu.Unlock()
	logrus.WithFields(logrus.Fields{"user_id": client.UserID(), "action": "registerClient"}).Info("Client registered to Hub")
}

func (h *Hub) unregisterClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to unregister a nil client")
		return
	}
	roomIDs := h.disconnect(client)
	logrus.WithFields(logrus.Fields{
		"user_id": client.UserID(),
		"rooms":   len(roomIDs),
		"action":  "unregisterClient",
	}).Info("Client unregistered from Hub")
}

// Join adds the session to a room. It reports false if it was already there.
func (h *Hub) Join(c *Client, roomID string) bool {
	h.roomsMu.Lock()
	defer h.roomsMu.Unlock()
	memberships, ok := h.clients[c]
	if !ok {
		memberships = make(map[string]bool)
		h.clients[c] = memberships
	}
	if memberships[roomID] {
		return false
	}
	memberships[roomID] = true
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]bool)
		logrus.WithField("room_id", roomID).Debug("Client list created for room")
	}
	h.rooms[roomID][c] = true
	return true
}

// Leave removes the session from a room. It reports false if it was not there.
func (h *Hub) Leave(c *Client, roomID string) bool {
	h.roomsMu.Lock()
	defer h.roomsMu.Unlock()
	if !h.clients[c][roomID] {
		return false
	}
	delete(h.clients[c], roomID)
	h.dropFromRoomLocked(c, roomID)
	return true
}

// Remove drops the session from every room, closes its send queue and
// returns the rooms it was in. Safe to call more than once.
func (h *Hub) Remove(c *Client) []string {
	h.roomsMu.Lock()
	// A second call finds no memberships and returns an empty slice.
	memberships := h.clients[c]
	roomIDs := make([]string, 0, len(memberships))
	for roomID := range memberships {
		roomIDs = append(roomIDs, roomID)
		h.dropFromRoomLocked(c, roomID)
	}
	delete(h.clients, c)
	h.roomsMu.Unlock()

	c.closeSend()
	return roomIDs
}

// disconnect removes the session and tells the dispatcher which rooms it
// left. Both the hub loop and the read pump fallback go through here, so
// presence cleanup runs no matter which side noticed the close.
func (h *Hub) disconnect(c *Client) []string {
	roomIDs := h.Remove(c)
	if h.dispatcher != nil && len(roomIDs) > 0 {
		// The dispatcher takes room locks; run it off the caller's goroutine
		// so the hub loop keeps draining.
		go h.dispatcher.Disconnected(c, roomIDs)
	}
	return roomIDs
}

// dropFromRoomLocked removes c from one room's set. Caller holds roomsMu.
func (h *Hub) dropFromRoomLocked(c *Client, roomID string) {
	roomClients, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(roomClients, c)
	if len(roomClients) == 0 {
		delete(h.rooms, roomID)
		logrus.WithField("room_id", roomID).Debug("Room empty, removed from Hub")
	}
}

// closeAll closes every connection. The read pumps then fail and run
// their own cleanup.
func (h *Hub) closeAll() {
	h.roomsMu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.roomsMu.Unlock()
	for _, c := range clients {
		c.CloseConn()
	}
}

// RoomIDs lists rooms with at least one live session.
func (h *Hub) RoomIDs() []string {
	h.roomsMu.RLock()
	defer h.roomsMu.RUnlock()
	ids := make([]string, 0, len(h.rooms))
	for id := range h.rooms {
		ids = append(ids, id)
	}
	return ids
}

// SessionCount is the number of sessions currently joined to roomID.
func (h *Hub) SessionCount(roomID string) int {
	h.roomsMu.RLock()
	defer h.roomsMu.RUnlock()
	return len(h.rooms[roomID])
}

// BroadcastToRoom sends to every session joined to roomID. Full queues are
// skipped so one slow session cannot hold up the others.
func (h *Hub) BroadcastToRoom(roomID string, event dto.Event) {
	h.deliver(roomID, event, func(*Client) bool { return true })
}

// SendToUser sends to the sessions of one user within a room.
func (h *Hub) SendToUser(roomID, userID string, event dto.Event) {
	h.deliver(roomID, event, func(c *Client) bool { return c.UserID() == userID })
}

func (h *Hub) deliver(roomID string, event dto.Event, match func(*Client) bool) {
	if event.RoomID == "" {
		event.RoomID = roomID
	}
	message, err := json.Marshal(event)
	if err != nil {
		logrus.WithFields(logrus.Fields{"room_id": roomID, "event": event.Event}).WithError(err).Error("Failed to marshal event for broadcast")
		return
	}

	// Snapshot recipients under the read lock, then enqueue without it so a
	// concurrent Join or Remove is never blocked behind delivery.
	h.roomsMu.RLock()
	recipients := make([]*Client, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		if match(c) {
			recipients = append(recipients, c)
		}
	}
	h.roomsMu.RUnlock()

	if len(recipients) == 0 {
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"room_id":         roomID,
		"event":           event.Event,
		"message_size":    len(message),
		"recipient_count": len(recipients),
	})
	logCtx.Debug("Broadcasting message to clients")
	for _, c := range recipients {
		// enqueue never blocks; a full or closed queue drops this frame only.
		if !c.enqueue(message) {
			logCtx.WithField("receiver_user_id", c.UserID()).Warn("Client send channel full or closed, skipping this client")
		}
	}
}
