// Package notify is the outbound e-mail boundary of the booking core. The
// core treats every send as fire-and-forget: errors are logged by the caller
// and never fail the primary operation.
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Message carries everything a template needs; rendering is out of scope.
type Message struct {
	PatientName  string
	PatientEmail string
	DoctorName   string
	DoctorEmail  string
	Date         string
	Time         string
	Reason       string
	MeetingLink  string
}

type Notifier interface {
	SendConfirmationEmail(ctx context.Context, msg Message) error
	SendCancellationEmail(ctx context.Context, msg Message) error
	SendRescheduleEmail(ctx context.Context, msg Message) error
}

// LogNotifier only records the send. It stands in for the real mailer in
// development and tests.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendConfirmationEmail(ctx context.Context, msg Message) error {
	n.send("confirmation", msg)
	return nil
}

func (n *LogNotifier) SendCancellationEmail(ctx context.Context, msg Message) error {
	n.send("cancellation", msg)
	return nil
}

func (n *LogNotifier) SendRescheduleEmail(ctx context.Context, msg Message) error {
	n.send("reschedule", msg)
	return nil
}

func (n *LogNotifier) send(kind string, msg Message) {
	n.log.Info().
		Str("kind", kind).
		Str("patient_email", msg.PatientEmail).
		Str("doctor_email", msg.DoctorEmail).
		Str("date", msg.Date).
		Str("time", msg.Time).
		Msg("email dispatched")
}
