package worker_handler

import (
	"encoding/json"
	"fmt"

	"github.com/telecare/consult-session/internal/utils/types"
	"github.com/telecare/consult-session/internal/websocket"
)

// HandleNotifyUser reaches every live connection of the receiver, including
// devices that never joined the consultation room. The room itself already
// got the message on the synchronous path.
func (h *WorkerHandler) HandleNotifyUser(raw json.RawMessage) error {
	var payload types.NotifyUserPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid notify payload: %w", err)
	}

	if h.Ws == nil {
		return fmt.Errorf("hub unavailable")
	}

	h.Ws.BroadcastToUser(payload.ReceiverID, websocket.OutgoingEvent{
		Event:  websocket.EventReceiveMessage,
		RoomID: payload.AppointmentID,
		Data:   payload,
	})

	return nil
}
