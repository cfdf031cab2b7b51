package calendar

import (
	"context"
	"time"
)

// Event is the provider-independent representation of a calendar event.
type Event struct {
	// Title is the event summary line.
	Title string
	// Description is the long-form event body.
	Description string
	// Start is the event start time.
	Start time.Time
	// End is the event end time.
	End time.Time
	// Timezone is the IANA zone name the event times are expressed in.
	Timezone string
	// Attendees holds the participant email addresses.
	Attendees []string
	// ReminderMinutes is the reminder lead time. Zero keeps provider defaults.
	ReminderMinutes int
}

// Provider defines the interface for calendar event operations.
// GetEvent returns (nil, nil) when the event does not exist; the sync engine
// uses it as the liveness check for cached bindings.
type Provider interface {
	CreateEvent(ctx context.Context, calendarID string, ev *Event) (string, error)
	UpdateEvent(ctx context.Context, calendarID, eventID string, ev *Event) error
	GetEvent(ctx context.Context, calendarID, eventID string) (*Event, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}
