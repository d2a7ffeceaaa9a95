// Package meeting abstracts the calendar integration that issues video
// meeting links. Provider failures must never surface as booking failures;
// the core falls back to treating the link as absent and regenerable.
package meeting

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Details describes the calendar event to create or move.
type Details struct {
	Date          string
	Time          string
	DurationMin   int
	HostName      string
	AttendeeName  string
	Subject       string
	HostEmail     string
	AttendeeEmail string
}

// Event is the provider's answer: the join link and the provider-side event
// id used for later updates.
type Event struct {
	Link    string
	EventID string
}

type LinkProvider interface {
	GenerateMeetingLink(ctx context.Context, d Details) (Event, error)
	UpdateMeetingEvent(ctx context.Context, eventID string, d Details) (Event, error)
}

// StaticProvider issues deterministic placeholder links without talking to a
// calendar backend. Used in development and tests.
type StaticProvider struct {
	BaseURL string
}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{BaseURL: "https://meet.clinicore.local"}
}

func (p *StaticProvider) GenerateMeetingLink(ctx context.Context, d Details) (Event, error) {
	id := uuid.NewString()
	return Event{
		Link:    fmt.Sprintf("%s/%s", p.BaseURL, id),
		EventID: id,
	}, nil
}

func (p *StaticProvider) UpdateMeetingEvent(ctx context.Context, eventID string, d Details) (Event, error) {
	if eventID == "" {
		return p.GenerateMeetingLink(ctx, d)
	}
	return Event{
		Link:    fmt.Sprintf("%s/%s", p.BaseURL, eventID),
		EventID: eventID,
	}, nil
}
