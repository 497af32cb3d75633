package websocket

import (
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: restrict origins before exposing outside the API gateway
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	Hub              *Hub
	Events           EventHandler
	MaxConnections   int
	ConnectionsPerIP int

	authenticator AuthenticatorFunc

	connMu    sync.Mutex
	connCount int
	perIP     map[string]int
}

func NewWebSocketHandler(hub *Hub, auth AuthenticatorFunc, events EventHandler) *WebSocketHandler {
	return &WebSocketHandler{
		Hub:              hub,
		Events:           events,
		MaxConnections:   10000,
		ConnectionsPerIP: 20,
		authenticator:    auth,
		perIP:            make(map[string]int),
	}
}

func (h *WebSocketHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	principal, err := h.authenticator(r)
	if err != nil {
		log.Warn().Err(err).Msg("ws: handshake rejected")
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	ip := clientIP(r)
	if !h.acquireSlot(ip) {
		http.Error(w, "connection limit reached", http.StatusTooManyRequests)
		return
	}

	conn, upErr := upgrader.Upgrade(w, r, nil)
	if upErr != nil {
		h.releaseSlot(ip)
		log.Error().Err(upErr).Msg("ws: upgrade failed")
		return
	}

	// slot release rides the read-pump teardown so abrupt drops, which never
	// deliver a close frame, still return the slot
	client := newClient(uuid.New().String(), principal, conn, h.Hub, h.Events, func() {
		h.releaseSlot(ip)
	})

	h.Hub.AddClient(client)
	client.Start()
}

func (h *WebSocketHandler) acquireSlot(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()

	if h.connCount >= h.MaxConnections || h.perIP[ip] >= h.ConnectionsPerIP {
		return false
	}
	h.connCount++
	h.perIP[ip]++
	return true
}

func (h *WebSocketHandler) releaseSlot(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()

	if h.connCount > 0 {
		h.connCount--
	}
	if h.perIP[ip] > 0 {
		h.perIP[ip]--
		if h.perIP[ip] == 0 {
			delete(h.perIP, ip)
		}
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
