package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"debate-arena/internal/dto"
)

// Client is one websocket session. A session may join several rooms.
type Client struct {
	hub      *Hub            // directory the session is registered with
	conn     *websocket.Conn // underlying connection; nil in unit tests
	userID   string          // authenticated identity from the upgrade request
	username string          // display name used in join/leave notices

	// sendMu guards closed and the close of send, so enqueue never writes
	// to a closed channel.
	sendMu sync.Mutex
	closed bool
	send   chan []byte // outbound frames, drained by WritePump
}

// NewClient creates a session for an authenticated user.
func NewClient(hub *Hub, conn *websocket.Conn, userID, username string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		userID:   userID,
		username: username,
		send:     make(chan []byte, sendBufferSize),
	}
}

// Run starts the read and write pumps.
func (c *Client) Run() {
	go c.WritePump()
	go c.ReadPump()
}

func (c *Client) UserID() string   { return c.userID }
func (c *Client) Username() string { return c.username }

func (c *Client) CloseConn() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// Send marshals and queues an event for this session only.
func (c *Client) Send(event dto.Event) bool {
	message, err := json.Marshal(event)
	if err != nil {
		logrus.WithFields(logrus.Fields{"user_id": c.userID, "event": event.Event}).WithError(err).Error("Failed to marshal event")
		return false
	}
	return c.enqueue(message)
}

// enqueue queues an encoded frame. It never blocks: a full queue means the
// peer is too slow and the frame is dropped for this session only.
func (c *Client) enqueue(message []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// closeSend closes the queue once; WritePump sees it and sends a close frame.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump decodes frames and hands them to the dispatcher in order.
func (c *Client) ReadPump() {
	logCtx := logrus.WithField("user_id", c.userID)
	defer func() {
		c.unregister()
		c.conn.Close()
		logCtx.Info("readPump exited, unregistered client")
	}()

	// Frames above the limit fail the read and end the session. The pong
	// handler pushes the deadline forward, so a silent peer times out.
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logCtx.WithError(err).Warn("WebSocket read error (unexpected close)")
			} else {
				logCtx.Debug("WebSocket connection closed normally or read error")
			}
			return
		}
		if messageType != websocket.TextMessage {
			logCtx.Debugf("Received non-text message type: %d", messageType)
			continue
		}

		// A malformed frame is answered with an error event; the session
		// stays open.
		var env dto.Envelope
		if err := json.Unmarshal(message, &env); err != nil || env.Event == "" {
			logCtx.Debugf("Dropping malformed frame (size: %d)", len(message))
			c.Send(dto.Event{Event: dto.EventError, Data: dto.ErrorDTO{Message: "malformed frame"}})
			continue
		}
		if c.hub.dispatcher == nil {
			logCtx.Error("No dispatcher configured, dropping frame")
			continue
		}
		// Dispatch runs on this goroutine, so one session's frames are
		// handled strictly in arrival order.
		c.hub.dispatcher.Dispatch(context.Background(), c, env)
	}
}

// unregister hands the session to the hub loop. When the hub has stopped
// or its queue is full, the session is disconnected here instead, and the
// dispatcher still learns which rooms it left.
func (c *Client) unregister() {
	if !c.hub.QueueMessage(HubMessage{Type: "unregister", Client: c}) {
		c.hub.disconnect(c)
	}
}

// WritePump drains the send queue to the connection and keeps it alive.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	logCtx := logrus.WithField("user_id", c.userID)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		logCtx.Info("writePump exited")
	}()

	for {
		select {
		case message, ok := <-c.send:
			// A closed queue means the hub removed the session.
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logCtx.WithError(err).Warn("Failed to write message to websocket")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logCtx.WithError(err).Warn("Failed to send ping message")
				return
			}
		}
	}
}
