package websocket

// Wire events on the consultation room channel.
const (
	EventJoinRoom       = "join_room"
	EventSendMessage    = "send_message"
	EventMarkRead       = "mark_read"
	EventReceiveMessage = "receive_message"
	EventMessageError   = "message_error"
	EventTyping         = "typing"
	EventStopTyping     = "stop_typing"
	EventMessagesRead   = "messages_read"
	EventUserJoined     = "user_joined"
	EventUserLeft       = "user_left"
	EventCallStarted    = "call_started"
	EventCallEnded      = "call_ended"
)

type IncomingEvent struct {
	Event         string `json:"event"`
	AppointmentID string `json:"appointmentId"`
	Content       string `json:"content,omitempty"`
}

type OutgoingEvent struct {
	Event     string `json:"event"`
	RoomID    string `json:"roomId"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}
