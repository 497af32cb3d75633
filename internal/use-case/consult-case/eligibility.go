package consult_service

import (
	"fmt"
	"math"
	"time"

	"github.com/telecare/consult-session/internal/entity"
	app_error "github.com/telecare/consult-session/internal/errors"
	"github.com/telecare/consult-session/internal/utils"
)

// joinWindowLead is how early participants may enter the waiting room.
const joinWindowLead = 15 * time.Minute

// Eligibility is the gate's answer: ineligibility is a normal result with a
// human-readable reason, not an error.
type Eligibility struct {
	CanJoin       bool
	Reason        string
	CallStarted   bool
	CallStartedBy entity.ParticipantRole
}

// Evaluate decides whether actorID may join the consultation call at instant
// now. Pure given its inputs, safe as a poll target. Hard faults (actor not a
// participant, malformed schedule data) come back as errors; everything else
// is an ineligible-with-reason value.
func Evaluate(session *entity.ConsultationSession, actorID string, now time.Time) (*Eligibility, *app_error.AppError) {
	role, ok := session.RoleOf(actorID)
	if !ok {
		return nil, app_error.Authorization("you are not a participant of this consultation")
	}

	if role == entity.RolePatient && session.PaymentStatus != entity.PaymentPaid {
		return &Eligibility{Reason: "payment required before joining"}, nil
	}

	if session.AppointmentStatus != entity.AppointmentConfirmed && session.AppointmentStatus != entity.AppointmentCompleted {
		return &Eligibility{Reason: "appointment is not confirmed"}, nil
	}

	if session.CallEndedAt != nil {
		return &Eligibility{Reason: "consultation has ended"}, nil
	}

	start, appErr := utils.CombineDateAndTime(session.ScheduledDate, session.ScheduledTime)
	if appErr != nil {
		return nil, appErr
	}
	windowOpen := start.Add(-joinWindowLead)
	windowEnd := start.Add(time.Duration(session.DurationMinutes) * time.Minute)

	if now.Before(windowOpen) {
		minutes := int(math.Ceil(windowOpen.Sub(now).Minutes()))
		return &Eligibility{Reason: fmt.Sprintf("available in %d minute(s)", minutes)}, nil
	}
	if now.After(windowEnd) {
		return &Eligibility{Reason: "consultation window has ended"}, nil
	}

	return &Eligibility{
		CanJoin:       true,
		CallStarted:   session.CallStarted,
		CallStartedBy: session.CallStartedBy,
	}, nil
}
