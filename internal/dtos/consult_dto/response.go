package consult_dto

import "time"

type ChatMessageResponse struct {
	MessageID     string     `json:"message_id"`
	AppointmentID string     `json:"appointment_id"`
	SenderID      string     `json:"sender_id"`
	SenderRole    string     `json:"sender_role"`
	SenderName    string     `json:"sender_name,omitempty"`
	ReceiverID    string     `json:"receiver_id"`
	ReceiverRole  string     `json:"receiver_role"`
	Content       string     `json:"content"`
	IsRead        bool       `json:"is_read"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type GetMessagesResponse struct {
	Messages   []ChatMessageResponse `json:"messages"`
	NextCursor *string               `json:"next_cursor,omitempty"`
	HasMore    bool                  `json:"has_more"`
}

type UnreadCountResponse struct {
	AppointmentID string `json:"appointment_id,omitempty"`
	UnreadCount   int64  `json:"unread_count"`
}

type AppointmentEcho struct {
	AppointmentID   string `json:"appointment_id"`
	DoctorID        string `json:"doctor_id"`
	DoctorName      string `json:"doctor_name,omitempty"`
	PatientID       string `json:"patient_id"`
	PatientName     string `json:"patient_name,omitempty"`
	ScheduledDate   string `json:"scheduled_date"`
	ScheduledTime   string `json:"scheduled_time"`
	DurationMinutes int    `json:"duration_minutes"`
}

type CallStatusResponse struct {
	AppointmentID     string     `json:"appointment_id"`
	CallStarted       bool       `json:"call_started"`
	CallStartedBy     string     `json:"call_started_by,omitempty"`
	CallStartedAt     *time.Time `json:"call_started_at,omitempty"`
	CallEndedAt       *time.Time `json:"call_ended_at,omitempty"`
	AppointmentStatus string     `json:"appointment_status"`
}

type EligibilityResponse struct {
	CanJoin       bool            `json:"can_join"`
	Reason        string          `json:"reason,omitempty"`
	CallStarted   bool            `json:"call_started"`
	CallStartedBy string          `json:"call_started_by,omitempty"`
	Appointment   AppointmentEcho `json:"appointment"`
}

type TokenResponse struct {
	Token       string          `json:"token"`
	Channel     string          `json:"channel"`
	UID         uint32          `json:"uid"`
	ExpiresAt   time.Time       `json:"expires_at"`
	Appointment AppointmentEcho `json:"appointment"`
}
