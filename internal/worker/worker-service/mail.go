package worker_service

import (
	"fmt"

	"github.com/telecare/consult-session/config"
	"github.com/telecare/consult-session/internal/utils/types"
	"gopkg.in/gomail.v2"
)

// SendConsultationSummary mails the wrap-up notice once a call ends.
// Participant addresses live with the identity provider, so delivery goes to
// the recipient on the payload or falls back to the configured archive inbox.
func SendConsultationSummary(payload types.ConsultationEndedPayload) error {
	host := config.Conf.MAIL.SMTPHost
	port := config.Conf.MAIL.SMTPPort
	username := config.Conf.MAIL.Username
	password := config.Conf.MAIL.Password
	from := config.Conf.MAIL.From

	to := payload.To
	if to == "" {
		to = config.Conf.MAIL.ArchiveTo
	}
	if to == "" {
		return fmt.Errorf("no recipient configured for consultation summary")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Consultation %s completed", payload.AppointmentID))
	m.SetBody("text/plain", fmt.Sprintf(
		"The consultation between Dr. %s and %s ended at %s.\n\nAppointment: %s",
		payload.DoctorName, payload.PatientName, payload.EndedAt.Format("2006-01-02 15:04 MST"), payload.AppointmentID,
	))

	d := gomail.NewDialer(host, port, username, password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send consultation summary: %w", err)
	}

	return nil
}
