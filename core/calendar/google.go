package calendar

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// NewProvider creates a Google Calendar backed provider.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	svc, err := calendar.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(calendar.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &googleProvider{svc: svc}, nil
}

type googleProvider struct {
	svc *calendar.Service
}

func (p *googleProvider) CreateEvent(ctx context.Context, calendarID string, ev *Event) (string, error) {
	created, err := p.svc.Events.Insert(calendarID, toGoogleEvent(ev)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create event on %s: %w", calendarID, err)
	}
	return created.Id, nil
}

func (p *googleProvider) UpdateEvent(ctx context.Context, calendarID, eventID string, ev *Event) error {
	_, err := p.svc.Events.Update(calendarID, eventID, toGoogleEvent(ev)).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update event %s on %s: %w", eventID, calendarID, err)
	}
	return nil
}

func (p *googleProvider) GetEvent(ctx context.Context, calendarID, eventID string) (*Event, error) {
	got, err := p.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event %s on %s: %w", eventID, calendarID, err)
	}
	// A cancelled event still resolves but is gone from the calendar.
	if got.Status == "cancelled" {
		return nil, nil
	}
	return fromGoogleEvent(got), nil
}

func (p *googleProvider) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if err := p.svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event %s on %s: %w", eventID, calendarID, err)
	}
	return nil
}

func toGoogleEvent(ev *Event) *calendar.Event {
	out := &calendar.Event{
		Summary:     ev.Title,
		Description: ev.Description,
		Start: &calendar.EventDateTime{
			DateTime: ev.Start.Format(time.RFC3339),
			TimeZone: ev.Timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: ev.End.Format(time.RFC3339),
			TimeZone: ev.Timezone,
		},
	}

	for _, email := range ev.Attendees {
		if email == "" {
			continue
		}
		out.Attendees = append(out.Attendees, &calendar.EventAttendee{Email: email})
	}

	if ev.ReminderMinutes > 0 {
		out.Reminders = &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "popup", Minutes: int64(ev.ReminderMinutes)},
				{Method: "email", Minutes: int64(ev.ReminderMinutes)},
			},
			ForceSendFields: []string{"UseDefault"},
		}
	}

	return out
}

func fromGoogleEvent(src *calendar.Event) *Event {
	ev := &Event{
		Title:       src.Summary,
		Description: src.Description,
	}
	if src.Start != nil {
		ev.Timezone = src.Start.TimeZone
		if t, err := time.Parse(time.RFC3339, src.Start.DateTime); err == nil {
			ev.Start = t
		}
	}
	if src.End != nil {
		if t, err := time.Parse(time.RFC3339, src.End.DateTime); err == nil {
			ev.End = t
		}
	}
	for _, a := range src.Attendees {
		ev.Attendees = append(ev.Attendees, a.Email)
	}
	return ev
}
