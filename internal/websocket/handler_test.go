package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func staticAuth(p *Principal) AuthenticatorFunc {
	return func(r *http.Request) (*Principal, error) {
		return p, nil
	}
}

func (h *WebSocketHandler) slots() (total int, ips int) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.connCount, len(h.perIP)
}

func dialWS(t *testing.T, srv *httptest.Server) *gws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestServeWSAbruptDropReleasesSlot(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	handler := NewWebSocketHandler(hub, staticAuth(&Principal{ID: "doc-1", Role: "doctor", Name: "Dr. Sam"}), nil)
	srv := httptest.NewServer(http.HandlerFunc(handler.ServeWS))
	defer srv.Close()

	conn := dialWS(t, srv)

	require.Eventually(t, func() bool {
		total, ips := handler.slots()
		return total == 1 && ips == 1
	}, time.Second, 10*time.Millisecond)

	// tear the TCP stream down without sending a close frame
	require.NoError(t, conn.UnderlyingConn().Close())

	require.Eventually(t, func() bool {
		total, ips := handler.slots()
		return total == 0 && ips == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServeWSCleanCloseReleasesSlot(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	handler := NewWebSocketHandler(hub, staticAuth(&Principal{ID: "pat-1", Role: "patient", Name: "Pat"}), nil)
	srv := httptest.NewServer(http.HandlerFunc(handler.ServeWS))
	defer srv.Close()

	conn := dialWS(t, srv)

	require.Eventually(t, func() bool {
		total, _ := handler.slots()
		return total == 1
	}, time.Second, 10*time.Millisecond)

	deadline := time.Now().Add(writeWait)
	require.NoError(t, conn.WriteControl(gws.CloseMessage,
		gws.FormatCloseMessage(gws.CloseNormalClosure, ""), deadline))
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		total, ips := handler.slots()
		return total == 0 && ips == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServeWSReconnectAfterDropsNeverLocksOut(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	handler := NewWebSocketHandler(hub, staticAuth(&Principal{ID: "pat-1", Role: "patient", Name: "Pat"}), nil)
	handler.ConnectionsPerIP = 3
	srv := httptest.NewServer(http.HandlerFunc(handler.ServeWS))
	defer srv.Close()

	// more drop-and-reconnect cycles than the per-IP budget
	for i := 0; i < handler.ConnectionsPerIP*2; i++ {
		conn := dialWS(t, srv)
		require.NoError(t, conn.UnderlyingConn().Close())

		require.Eventually(t, func() bool {
			total, _ := handler.slots()
			return total == 0
		}, 2*time.Second, 10*time.Millisecond)
	}
}
