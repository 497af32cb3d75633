package entity

import (
	"time"
)

type ParticipantRole string

const (
	RoleDoctor  ParticipantRole = "doctor"
	RolePatient ParticipantRole = "patient"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type AppointmentStatus string

const (
	AppointmentConfirmed   AppointmentStatus = "confirmed"
	AppointmentCompleted   AppointmentStatus = "completed"
	AppointmentCancelled   AppointmentStatus = "cancelled"
	AppointmentNoShow      AppointmentStatus = "no-show"
	AppointmentRescheduled AppointmentStatus = "rescheduled"
)

// ConsultationSession is the durable record of one consultation, exactly one
// per appointment. Payment and booking fields are written by external
// collaborators; this service only drives the call lifecycle.
type ConsultationSession struct {
	ID                int64             `gorm:"primaryKey"`
	AppointmentID     string            `gorm:"uniqueIndex;not null"`
	PatientID         string            `gorm:"not null"`
	DoctorID          string            `gorm:"not null"`
	PatientName       string
	DoctorName        string
	PaymentStatus     PaymentStatus     `gorm:"not null;default:pending"`
	AppointmentStatus AppointmentStatus `gorm:"not null;default:confirmed"`
	CallStarted       bool              `gorm:"not null;default:false"`
	CallStartedBy     ParticipantRole
	CallStartedAt     *time.Time
	CallEndedAt       *time.Time
	DurationMinutes   int       `gorm:"not null;default:15"`
	ScheduledDate     time.Time `gorm:"not null"`
	ScheduledTime     string    `gorm:"not null"` // "09:00 AM"
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

// RoleOf returns the role userID plays in this session, if any.
func (s *ConsultationSession) RoleOf(userID string) (ParticipantRole, bool) {
	switch userID {
	case s.DoctorID:
		return RoleDoctor, true
	case s.PatientID:
		return RolePatient, true
	default:
		return "", false
	}
}

// Counterpart returns the other participant relative to userID.
func (s *ConsultationSession) Counterpart(userID string) (string, ParticipantRole) {
	if userID == s.DoctorID {
		return s.PatientID, RolePatient
	}
	return s.DoctorID, RoleDoctor
}

func (s *ConsultationSession) DisplayNameOf(userID string) string {
	if userID == s.DoctorID {
		return s.DoctorName
	}
	return s.PatientName
}
