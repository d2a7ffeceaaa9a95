package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// sideEffects runs post-commit work (emails, calendar calls, audit events)
// synchronously with a bounded context. A failure or timeout is logged and
// swallowed; the committed transaction stands regardless.
type sideEffects struct {
	log     zerolog.Logger
	timeout time.Duration
}

func newSideEffects(log zerolog.Logger, timeout time.Duration) *sideEffects {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &sideEffects{log: log, timeout: timeout}
}

// run executes fn detached from the request's cancellation but bounded by the
// configured timeout.
func (s *sideEffects) run(ctx context.Context, name, appointmentID string, fn func(context.Context) error) {
	bounded, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if err := fn(bounded); err != nil {
		s.log.Warn().
			Err(err).
			Str("side_effect", name).
			Str("appointment_id", appointmentID).
			Msg("best-effort side effect failed")
	}
}
