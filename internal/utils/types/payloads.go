package types

import (
	"time"
)

// NotifyUserPayload fans a persisted chat message out to every connection of
// the receiving user, covering devices that are not joined to the room.
type NotifyUserPayload struct {
	MessageID     string    `json:"message_id"`
	AppointmentID string    `json:"appointment_id"`
	SenderID      string    `json:"sender_id"`
	SenderRole    string    `json:"sender_role"`
	SenderName    string    `json:"sender_name"`
	ReceiverID    string    `json:"receiver_id"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
}

// ConsultationEndedPayload drives the wrap-up email after a call ends.
type ConsultationEndedPayload struct {
	AppointmentID string    `json:"appointment_id"`
	PatientName   string    `json:"patient_name"`
	DoctorName    string    `json:"doctor_name"`
	EndedAt       time.Time `json:"ended_at"`
	To            string    `json:"to"`
}
