package sheets

import (
	"context"
	"fmt"
	"sync"

	"schedule-sync/core/utils"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client defines the interface for tabular store operations.
// All row and column indices are zero-based; row 0 is the frozen header row.
type Client interface {
	// ReadTable reads the full cell grid of a sheet, header row included.
	ReadTable(ctx context.Context, name string) ([][]any, error)
	// WriteRow overwrites one full row starting at column A.
	WriteRow(ctx context.Context, name string, row int, values []any) error
	// WriteCell overwrites a single cell.
	WriteCell(ctx context.Context, name string, row, col int, value any) error
	// EnsureColumn returns the index of the column with the given header,
	// creating it after the last used column if it does not exist.
	EnsureColumn(ctx context.Context, name, header string) (int, error)
	// InsertRows inserts count blank rows before the given row index.
	InsertRows(ctx context.Context, name string, start, count int) error
	// DeleteRows removes count rows starting at the given row index.
	DeleteRows(ctx context.Context, name string, start, count int) error
	// EnsureHiddenSheet creates a hidden sheet with the given header row if
	// it does not already exist.
	EnsureHiddenSheet(ctx context.Context, name string, header []string) error
	// RowCount returns the physical row count of a sheet from its grid
	// properties. Read responses omit trailing blank rows, so this is the
	// only reliable source for sizing decisions.
	RowCount(ctx context.Context, name string) (int, error)
}

// NewClient creates a Google Sheets backed client for one spreadsheet.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &googleClient{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetIDs:      make(map[string]int64),
	}, nil
}

type googleClient struct {
	svc           *sheets.Service
	spreadsheetID string

	mu       sync.Mutex
	sheetIDs map[string]int64
}

func (c *googleClient) ReadTable(ctx context.Context, name string) ([][]any, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, name).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", name, err)
	}
	return resp.Values, nil
}

func (c *googleClient) WriteRow(ctx context.Context, name string, row int, values []any) error {
	rng := fmt.Sprintf("%s!A%d", name, row+1)
	vr := &sheets.ValueRange{Values: [][]any{values}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, name, err)
	}
	return nil
}

func (c *googleClient) WriteCell(ctx context.Context, name string, row, col int, value any) error {
	rng := fmt.Sprintf("%s!%s%d", name, columnLetter(col), row+1)
	vr := &sheets.ValueRange{Values: [][]any{{value}}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write cell %s of %s: %w", rng, name, err)
	}
	return nil
}

func (c *googleClient) EnsureColumn(ctx context.Context, name, header string) (int, error) {
	grid, err := c.ReadTable(ctx, name)
	if err != nil {
		return 0, err
	}

	var headerRow []any
	if len(grid) > 0 {
		headerRow = grid[0]
	}

	for i, cell := range headerRow {
		if utils.ToString(cell) == header {
			return i, nil
		}
	}

	col := len(headerRow)
	if err := c.WriteCell(ctx, name, 0, col, header); err != nil {
		return 0, fmt.Errorf("failed to create column %q on %s: %w", header, name, err)
	}
	return col, nil
}

func (c *googleClient) InsertRows(ctx context.Context, name string, start, count int) error {
	if count <= 0 {
		return nil
	}
	sheetID, err := c.sheetID(ctx, name)
	if err != nil {
		return err
	}
	req := &sheets.Request{
		InsertDimension: &sheets.InsertDimensionRequest{
			Range: &sheets.DimensionRange{
				SheetId:    sheetID,
				Dimension:  "ROWS",
				StartIndex: int64(start),
				EndIndex:   int64(start + count),
			},
		},
	}
	return c.batchUpdate(ctx, name, req)
}

func (c *googleClient) DeleteRows(ctx context.Context, name string, start, count int) error {
	if count <= 0 {
		return nil
	}
	sheetID, err := c.sheetID(ctx, name)
	if err != nil {
		return err
	}
	req := &sheets.Request{
		DeleteDimension: &sheets.DeleteDimensionRequest{
			Range: &sheets.DimensionRange{
				SheetId:    sheetID,
				Dimension:  "ROWS",
				StartIndex: int64(start),
				EndIndex:   int64(start + count),
			},
		},
	}
	return c.batchUpdate(ctx, name, req)
}

func (c *googleClient) EnsureHiddenSheet(ctx context.Context, name string, header []string) error {
	if _, err := c.sheetID(ctx, name); err == nil {
		return nil
	}

	// The grid starts with exactly the header row; InsertRows and DeleteRows
	// keep the physical size tracking the data row count from then on.
	req := &sheets.Request{
		AddSheet: &sheets.AddSheetRequest{
			Properties: &sheets.SheetProperties{
				Title:  name,
				Hidden: true,
				GridProperties: &sheets.GridProperties{
					RowCount:    1,
					ColumnCount: int64(len(header)),
				},
			},
		},
	}
	if err := c.batchUpdate(ctx, name, req); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}

	// Forget the cached id map so the new sheet is picked up.
	c.mu.Lock()
	c.sheetIDs = make(map[string]int64)
	c.mu.Unlock()

	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	return c.WriteRow(ctx, name, 0, row)
}

func (c *googleClient) RowCount(ctx context.Context, name string) (int, error) {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to load spreadsheet metadata: %w", err)
	}
	for _, s := range meta.Sheets {
		if s.Properties == nil || s.Properties.Title != name {
			continue
		}
		if s.Properties.GridProperties == nil {
			return 0, fmt.Errorf("sheet %q has no grid properties", name)
		}
		return int(s.Properties.GridProperties.RowCount), nil
	}
	return 0, fmt.Errorf("sheet %q not found", name)
}

func (c *googleClient) batchUpdate(ctx context.Context, name string, reqs ...*sheets.Request) error {
	body := &sheets.BatchUpdateSpreadsheetRequest{Requests: reqs}
	_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, body).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("batch update on %s failed: %w", name, err)
	}
	return nil
}

// sheetID resolves a sheet title to its numeric id, caching the lookup.
func (c *googleClient) sheetID(ctx context.Context, name string) (int64, error) {
	c.mu.Lock()
	if id, ok := c.sheetIDs[name]; ok {
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to load spreadsheet metadata: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range meta.Sheets {
		if s.Properties != nil {
			c.sheetIDs[s.Properties.Title] = s.Properties.SheetId
		}
	}
	if id, ok := c.sheetIDs[name]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("sheet %q not found", name)
}

// columnLetter converts a zero-based column index to A1 notation letters.
func columnLetter(col int) string {
	letters := ""
	for col >= 0 {
		letters = string(rune('A'+col%26)) + letters
		col = col/26 - 1
	}
	return letters
}
