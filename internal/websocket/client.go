package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 16 // 64 KB, chat and signaling only
)

type Client struct {
	ID          string // connection id, unique per socket
	UserID      string
	Role        string
	DisplayName string
	Conn        *websocket.Conn
	Send        chan []byte

	// roomID is the consultation room this connection currently occupies.
	// Guarded by the hub's room lock; empty until a join_room is accepted.
	roomID string

	ctx      context.Context
	cancel   context.CancelFunc
	lastSeen time.Time
	seenMu   sync.Mutex

	hub     *Hub
	events  EventHandler
	release func() // returns the connection slot, runs once on teardown
	once    sync.Once
}

// EventHandler receives decoded client events. Implementations validate and
// route; the client itself only does transport.
type EventHandler interface {
	OnJoinRoom(ctx context.Context, c *Client, appointmentID string)
	OnSendMessage(ctx context.Context, c *Client, appointmentID, content string)
	OnTyping(ctx context.Context, c *Client, appointmentID string, typing bool)
	OnMarkRead(ctx context.Context, c *Client, appointmentID string)
}

func newClient(id string, p *Principal, conn *websocket.Conn, hub *Hub, events EventHandler, release func()) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		ID:          id,
		UserID:      p.ID,
		Role:        p.Role,
		DisplayName: p.Name,
		Conn:        conn,
		Send:        make(chan []byte, 256),
		ctx:         ctx,
		cancel:      cancel,
		lastSeen:    time.Now(),
		hub:         hub,
		events:      events,
		release:     release,
	}
}

// Start launches the read and write pumps.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

func (c *Client) Close() {
	c.once.Do(func() {
		c.cancel()
		if c.Conn != nil {
			_ = c.Conn.Close()
		}
	})
}

func (c *Client) IsActive() bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
		return true
	}
}

func (c *Client) GetLastSeen() time.Time {
	c.seenMu.Lock()
	defer c.seenMu.Unlock()
	return c.lastSeen
}

func (c *Client) touch() {
	c.seenMu.Lock()
	c.lastSeen = time.Now()
	c.seenMu.Unlock()
}

// writePump: take data from c.Send and send to socket + ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump: decode inbound events and dispatch. A read error of any kind
// tears the connection down, which immediately leaves the room and returns
// the connection slot. Abrupt drops surface here as read errors too, so the
// slot comes back without a close frame ever arriving.
func (c *Client) readPump() {
	defer func() {
		c.hub.RemoveClient(c)
		if c.release != nil {
			c.release()
		}
		c.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.touch()
		_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}
		c.touch()

		var evt IncomingEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			log.Warn().Str("clientID", c.ID).Msg("ws: dropping malformed event")
			continue
		}

		c.dispatch(evt)
	}
}

func (c *Client) dispatch(evt IncomingEvent) {
	if c.events == nil {
		return
	}

	switch evt.Event {
	case EventJoinRoom:
		c.events.OnJoinRoom(c.ctx, c, evt.AppointmentID)
	case EventSendMessage:
		c.events.OnSendMessage(c.ctx, c, evt.AppointmentID, evt.Content)
	case EventTyping:
		c.events.OnTyping(c.ctx, c, evt.AppointmentID, true)
	case EventStopTyping:
		c.events.OnTyping(c.ctx, c, evt.AppointmentID, false)
	case EventMarkRead:
		c.events.OnMarkRead(c.ctx, c, evt.AppointmentID)
	default:
		log.Debug().Str("event", evt.Event).Str("clientID", c.ID).Msg("ws: unknown event ignored")
	}
}
