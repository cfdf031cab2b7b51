package mocks

import (
	"context"

	"schedule-sync/core/calendar"

	"github.com/stretchr/testify/mock"
)

// Provider is a mock implementation of calendar.Provider
type Provider struct {
	mock.Mock
}

func (m *Provider) CreateEvent(ctx context.Context, calendarID string, ev *calendar.Event) (string, error) {
	args := m.Called(ctx, calendarID, ev)
	return args.String(0), args.Error(1)
}

func (m *Provider) UpdateEvent(ctx context.Context, calendarID, eventID string, ev *calendar.Event) error {
	args := m.Called(ctx, calendarID, eventID, ev)
	return args.Error(0)
}

func (m *Provider) GetEvent(ctx context.Context, calendarID, eventID string) (*calendar.Event, error) {
	args := m.Called(ctx, calendarID, eventID)
	if ev, ok := args.Get(0).(*calendar.Event); ok {
		return ev, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Provider) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	args := m.Called(ctx, calendarID, eventID)
	return args.Error(0)
}
