package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of sheets.Client
type Client struct {
	mock.Mock
}

func (m *Client) ReadTable(ctx context.Context, name string) ([][]any, error) {
	args := m.Called(ctx, name)
	if grid, ok := args.Get(0).([][]any); ok {
		return grid, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) WriteRow(ctx context.Context, name string, row int, values []any) error {
	args := m.Called(ctx, name, row, values)
	return args.Error(0)
}

func (m *Client) WriteCell(ctx context.Context, name string, row, col int, value any) error {
	args := m.Called(ctx, name, row, col, value)
	return args.Error(0)
}

func (m *Client) EnsureColumn(ctx context.Context, name, header string) (int, error) {
	args := m.Called(ctx, name, header)
	return args.Int(0), args.Error(1)
}

func (m *Client) InsertRows(ctx context.Context, name string, start, count int) error {
	args := m.Called(ctx, name, start, count)
	return args.Error(0)
}

func (m *Client) DeleteRows(ctx context.Context, name string, start, count int) error {
	args := m.Called(ctx, name, start, count)
	return args.Error(0)
}

func (m *Client) EnsureHiddenSheet(ctx context.Context, name string, header []string) error {
	args := m.Called(ctx, name, header)
	return args.Error(0)
}

func (m *Client) RowCount(ctx context.Context, name string) (int, error) {
	args := m.Called(ctx, name)
	return args.Int(0), args.Error(1)
}
