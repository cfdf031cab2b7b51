package schedule

import (
	"context"
	"fmt"
	"strings"

	"schedule-sync/core/sheets"
	"schedule-sync/core/utils"
	"schedule-sync/feature/schedule/models"
)

// settingsSynonyms maps each settings column to its accepted header spellings,
// resolved the same way schedule table headers are.
var settingsSynonyms = map[string][]string{
	"table":            {"table", "sheet", "tab"},
	"enabled":          {"enabled", "active", "sync"},
	"calendar_ids":     {"calendar ids", "calendar id", "calendars", "calendar"},
	"teacher_email":    {"teacher email", "teacher"},
	"student_email":    {"student email", "student"},
	"timezone":         {"timezone", "time zone", "tz"},
	"reminder_minutes": {"reminder minutes", "reminder", "reminders"},
}

// LoadTableConfigs reads the settings sheet and returns one config per listed
// table. Rows without a table name are skipped; disabled tables are returned
// as-is so the caller can report them. A table without a timezone falls back
// to defaultTimezone.
func LoadTableConfigs(ctx context.Context, client sheets.Client, sheet, defaultTimezone string) ([]models.TableConfig, error) {
	grid, err := client.ReadTable(ctx, sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings sheet %s: %w", sheet, err)
	}
	if len(grid) == 0 {
		return nil, fmt.Errorf("settings sheet %s is empty", sheet)
	}

	cols := resolveSettingsColumns(grid[0])
	if _, ok := cols["table"]; !ok {
		return nil, fmt.Errorf("settings sheet %s has no table column", sheet)
	}

	var configs []models.TableConfig
	for i := 1; i < len(grid); i++ {
		row := grid[i]
		get := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(utils.ToString(row[idx]))
		}

		table := get("table")
		if table == "" {
			continue
		}

		tc := models.TableConfig{
			Table:           table,
			Enabled:         utils.ToBool(get("enabled")),
			CalendarIDs:     splitCalendarIDs(get("calendar_ids")),
			TeacherEmail:    get("teacher_email"),
			StudentEmail:    get("student_email"),
			Timezone:        get("timezone"),
			ReminderMinutes: utils.ToInt(get("reminder_minutes")),
		}
		if tc.Timezone == "" {
			tc.Timezone = defaultTimezone
		}
		configs = append(configs, tc)
	}

	return configs, nil
}

func resolveSettingsColumns(headerRow []any) map[string]int {
	byText := make(map[string]int, len(headerRow))
	for i, cell := range headerRow {
		text := models.NormalizeHeader(utils.ToString(cell))
		if text == "" {
			continue
		}
		if _, taken := byText[text]; !taken {
			byText[text] = i
		}
	}

	cols := make(map[string]int, len(settingsSynonyms))
	for name, synonyms := range settingsSynonyms {
		for _, syn := range synonyms {
			if idx, ok := byText[syn]; ok {
				cols[name] = idx
				break
			}
		}
	}
	return cols
}

func splitCalendarIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
