package models

import (
	"fmt"
	"strings"
	"time"

	"schedule-sync/core/utils"
)

var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
}

var timeLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04PM",
}

// ParseRecord builds a Record from one source data row. A missing required
// field or an unparseable date/time is a data error: the caller logs it and
// excludes the row from processing.
func ParseRecord(row int, cells []any, headers map[Field]int, loc *time.Location) (*Record, error) {
	get := func(f Field) string {
		col, ok := headers[f]
		if !ok || col >= len(cells) {
			return ""
		}
		return strings.TrimSpace(utils.ToString(cells[col]))
	}

	title := get(FieldTitle)
	if title == "" {
		return nil, fmt.Errorf("row %d: missing title", row)
	}

	date, err := parseDate(get(FieldDate), loc)
	if err != nil {
		return nil, fmt.Errorf("row %d: %w", row, err)
	}

	start, err := parseClock(date, get(FieldStart), loc)
	if err != nil {
		return nil, fmt.Errorf("row %d: start: %w", row, err)
	}
	end, err := parseClock(date, get(FieldEnd), loc)
	if err != nil {
		return nil, fmt.Errorf("row %d: end: %w", row, err)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("row %d: end %s is not after start %s", row,
			end.Format("15:04"), start.Format("15:04"))
	}

	return &Record{
		Row:          row,
		RecordID:     get(FieldRecordID),
		LessonNumber: get(FieldLesson),
		Date:         date,
		Start:        start,
		End:          end,
		Title:        title,
		TeacherName:  get(FieldTeacherName),
		TeacherEmail: get(FieldTeacherEmail),
		StudentName:  get(FieldStudentName),
		StudentEmail: get(FieldStudentEmail),
	}, nil
}

func parseDate(v string, loc *time.Location) (time.Time, error) {
	if v == "" {
		return time.Time{}, fmt.Errorf("missing date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", v)
}

func parseClock(date time.Time, v string, loc *time.Location) (time.Time, error) {
	if v == "" {
		return time.Time{}, fmt.Errorf("missing time")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, strings.ToUpper(v)); err == nil {
			return time.Date(date.Year(), date.Month(), date.Day(),
				t.Hour(), t.Minute(), 0, 0, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable time %q", v)
}
