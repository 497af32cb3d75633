package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Hub is the room registry: one process-wide instance mapping appointment ids
// to the set of live connections. Membership bookkeeping happens under locks;
// socket writes happen outside them, so one room's slow consumers never stall
// another room.
type Hub struct {
	rooms map[string]map[*Client]struct{}
	mu    sync.RWMutex

	userClients map[string][]*Client // userID -> [connections]
	userMu      sync.RWMutex

	stats   HubStats
	statsMu sync.RWMutex
}

type HubStats struct {
	TotalRooms       int       `json:"total_rooms"`
	TotalClients     int       `json:"total_clients"`
	TotalConnections int64     `json:"total_connections"`
	EventsSent       int64     `json:"events_sent"`
	LastReset        time.Time `json:"last_reset"`
}

func NewHub() *Hub {
	return &Hub{
		rooms:       make(map[string]map[*Client]struct{}),
		userClients: make(map[string][]*Client),
		stats: HubStats{
			LastReset: time.Now(),
		},
	}
}

// AddClient tracks a freshly authenticated connection before it joins a room.
func (h *Hub) AddClient(client *Client) {
	h.userMu.Lock()
	h.userClients[client.UserID] = append(h.userClients[client.UserID], client)
	h.userMu.Unlock()

	h.updateStats(func(stats *HubStats) {
		stats.TotalConnections++
	})
}

// JoinRoom places the connection in an appointment room. Callers are expected
// to have verified the user is a participant of that appointment; the registry
// itself does not reject extra members.
func (h *Hub) JoinRoom(roomID string, client *Client) {
	h.mu.Lock()
	if prev := client.roomID; prev != "" && prev != roomID {
		h.removeFromRoomLocked(prev, client)
	}
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]struct{})
	}
	h.rooms[roomID][client] = struct{}{}
	client.roomID = roomID
	size := len(h.rooms[roomID])
	h.mu.Unlock()

	h.broadcastPresence(roomID, client, EventUserJoined)

	log.Info().Str("roomID", roomID).Str("clientID", client.ID).Str("userID", client.UserID).Int("roomSize", size).Msg("ws: client joined room")
}

// LeaveRoom removes the connection from its current room; an empty room is
// deleted. Transport-layer only, no session state changes.
func (h *Hub) LeaveRoom(client *Client) {
	h.mu.Lock()
	roomID := client.roomID
	if roomID == "" {
		h.mu.Unlock()
		return
	}
	h.removeFromRoomLocked(roomID, client)
	h.mu.Unlock()

	h.broadcastPresence(roomID, client, EventUserLeft)

	log.Info().Str("roomID", roomID).Str("clientID", client.ID).Str("userID", client.UserID).Msg("ws: client left room")
}

// caller holds h.mu
func (h *Hub) removeFromRoomLocked(roomID string, client *Client) {
	if clients, ok := h.rooms[roomID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, roomID)
		}
	}
	client.roomID = ""
}

// RemoveClient detaches a dropped connection from its room and the user
// tracking. Invoked from the read pump on any disconnect.
func (h *Hub) RemoveClient(client *Client) {
	h.LeaveRoom(client)

	h.userMu.Lock()
	clients := h.userClients[client.UserID]
	for i, c := range clients {
		if c == client {
			h.userClients[client.UserID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(h.userClients[client.UserID]) == 0 {
		delete(h.userClients, client.UserID)
	}
	h.userMu.Unlock()
}

// BroadcastToRoom delivers an event to every member of the room.
func (h *Hub) BroadcastToRoom(roomID string, event OutgoingEvent) {
	h.broadcastToRoomInternal(roomID, event, nil)
}

// BroadcastToRoomExcept delivers to every member but the sender; used for
// typing-indicator style events.
func (h *Hub) BroadcastToRoomExcept(roomID string, event OutgoingEvent, except *Client) {
	h.broadcastToRoomInternal(roomID, event, except)
}

func (h *Hub) broadcastToRoomInternal(roomID string, event OutgoingEvent, except *Client) {
	event.RoomID = roomID
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("roomID", roomID).Msg("ws: failed to marshal broadcast event")
		return
	}

	// snapshot under lock, send outside it
	h.mu.RLock()
	var targets []*Client
	if clients, ok := h.rooms[roomID]; ok {
		targets = make([]*Client, 0, len(clients))
		for client := range clients {
			if except != nil && client == except {
				continue
			}
			if client.IsActive() {
				targets = append(targets, client)
			}
		}
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	for _, client := range targets {
		h.deliver(client, data, roomID)
	}

	h.updateStats(func(stats *HubStats) {
		stats.EventsSent += int64(len(targets))
	})

	log.Debug().Str("roomID", roomID).Int("targets", len(targets)).Str("event", event.Event).Msg("ws: broadcast completed")
}

// BroadcastToUser reaches every connection of one user, in or out of rooms.
func (h *Hub) BroadcastToUser(userID string, event OutgoingEvent) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("ws: failed to marshal user event")
		return
	}

	h.userMu.RLock()
	clients := make([]*Client, len(h.userClients[userID]))
	copy(clients, h.userClients[userID])
	h.userMu.RUnlock()

	for _, client := range clients {
		if client.IsActive() {
			h.deliver(client, data, "")
		}
	}
}

// SendToClient targets a single connection; used for message_error replies.
func (h *Hub) SendToClient(client *Client, event OutgoingEvent) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.deliver(client, data, event.RoomID)
}

func (h *Hub) deliver(client *Client, data []byte, roomID string) {
	select {
	case client.Send <- data:
	case <-client.ctx.Done():
	default:
		// slow consumer, drop the connection rather than the room
		log.Warn().Str("roomID", roomID).Str("clientID", client.ID).Msg("ws: slow consumer, closing")
		go client.Close()
	}
}

// RoomClients returns the active members of a room.
func (h *Hub) RoomClients(roomID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var clients []*Client
	for client := range h.rooms[roomID] {
		if client.IsActive() {
			clients = append(clients, client)
		}
	}
	return clients
}

// IsUserInRoom reports whether the user has an active connection in the room.
func (h *Hub) IsUserInRoom(roomID, userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[roomID] {
		if client.UserID == userID && client.IsActive() {
			return true
		}
	}
	return false
}

func (h *Hub) broadcastPresence(roomID string, client *Client, event string) {
	h.broadcastToRoomInternal(roomID, OutgoingEvent{
		Event: event,
		Data: map[string]any{
			"user_id": client.UserID,
			"role":    client.Role,
			"name":    client.DisplayName,
		},
	}, client)
}

func (h *Hub) GetHubStats() HubStats {
	h.statsMu.RLock()
	stats := h.stats
	h.statsMu.RUnlock()

	h.mu.RLock()
	stats.TotalRooms = len(h.rooms)
	total := 0
	for _, clients := range h.rooms {
		for client := range clients {
			if client.IsActive() {
				total++
			}
		}
	}
	stats.TotalClients = total
	h.mu.RUnlock()

	return stats
}

func (h *Hub) updateStats(fn func(*HubStats)) {
	h.statsMu.Lock()
	fn(&h.stats)
	h.statsMu.Unlock()
}

// Close tears down every room at shutdown.
func (h *Hub) Close() {
	h.mu.RLock()
	var allClients []*Client
	for _, clients := range h.rooms {
		for client := range clients {
			allClients = append(allClients, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range allClients {
		client.Close()
	}

	log.Info().Int("clients", len(allClients)).Msg("ws: hub shutdown completed")
}
