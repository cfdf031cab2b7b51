package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord() *Record {
	loc := time.UTC
	date := time.Date(2025, 11, 20, 0, 0, 0, 0, loc)
	return &Record{
		Row:          0,
		LessonNumber: "3",
		Date:         date,
		Start:        time.Date(2025, 11, 20, 10, 0, 0, 0, loc),
		End:          time.Date(2025, 11, 20, 11, 0, 0, 0, loc),
		Title:        "Algebra",
		TeacherName:  "Ada",
		TeacherEmail: "ada@example.com",
		StudentName:  "Bob",
		StudentEmail: "bob@example.com",
	}
}

func TestFingerprintStability(t *testing.T) {
	a := testRecord()
	b := testRecord()

	// Non-key fields must not affect the digest.
	b.Row = 42
	b.RecordID = "lsn-123"
	b.LessonNumber = "99"

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestFingerprintChangeDetection(t *testing.T) {
	base := testRecord().Fingerprint()

	mutations := map[string]func(*Record){
		"date":          func(r *Record) { r.Date = r.Date.AddDate(0, 0, 1) },
		"start":         func(r *Record) { r.Start = r.Start.Add(30 * time.Minute) },
		"end":           func(r *Record) { r.End = r.End.Add(30 * time.Minute) },
		"title":         func(r *Record) { r.Title = "Geometry" },
		"teacher name":  func(r *Record) { r.TeacherName = "Grace" },
		"teacher email": func(r *Record) { r.TeacherEmail = "grace@example.com" },
		"student name":  func(r *Record) { r.StudentName = "Carol" },
		"student email": func(r *Record) { r.StudentEmail = "carol@example.com" },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			r := testRecord()
			mutate(r)
			assert.NotEqual(t, base, r.Fingerprint(), "mutating %s must change the fingerprint", name)
		})
	}
}

func TestNaturalKey(t *testing.T) {
	r := testRecord()
	assert.Equal(t, "3|2025-11-20", r.NaturalKey())
	assert.Equal(t, NaturalKey(" 3 ", "2025-11-20"), r.NaturalKey())
}

func TestParseRecord(t *testing.T) {
	headers := map[Field]int{
		FieldRecordID: 0,
		FieldLesson:   1,
		FieldDate:     2,
		FieldStart:    3,
		FieldEnd:      4,
		FieldTitle:    5,
	}

	t.Run("valid row", func(t *testing.T) {
		rec, err := ParseRecord(0, []any{"", "3", "2025-11-20", "10:00", "11:00", "Algebra"}, headers, time.UTC)
		require.NoError(t, err)
		assert.Equal(t, "3", rec.LessonNumber)
		assert.Equal(t, "Algebra", rec.Title)
		assert.Equal(t, 10, rec.Start.Hour())
		assert.Equal(t, 11, rec.End.Hour())
	})

	t.Run("alternate date layout", func(t *testing.T) {
		rec, err := ParseRecord(0, []any{"", "3", "20.11.2025", "9:30 AM", "10:15 AM", "Algebra"}, headers, time.UTC)
		require.NoError(t, err)
		assert.Equal(t, "2025-11-20", rec.Date.Format("2006-01-02"))
		assert.Equal(t, 9, rec.Start.Hour())
		assert.Equal(t, 30, rec.Start.Minute())
	})

	t.Run("missing title", func(t *testing.T) {
		_, err := ParseRecord(2, []any{"", "3", "2025-11-20", "10:00", "11:00", ""}, headers, time.UTC)
		assert.ErrorContains(t, err, "missing title")
	})

	t.Run("unparseable date", func(t *testing.T) {
		_, err := ParseRecord(2, []any{"", "3", "someday", "10:00", "11:00", "Algebra"}, headers, time.UTC)
		assert.ErrorContains(t, err, "unparseable date")
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := ParseRecord(2, []any{"", "3", "2025-11-20", "11:00", "10:00", "Algebra"}, headers, time.UTC)
		assert.ErrorContains(t, err, "not after start")
	})
}

func TestEntryHelpers(t *testing.T) {
	var nilEntry *Entry
	assert.True(t, nilEntry.IsBlank())
	assert.False(t, nilEntry.HasBindings())

	e := &Entry{Row: 3}
	assert.True(t, e.IsBlank())

	e.RecordID = "lsn-1"
	assert.False(t, e.IsBlank())
	assert.False(t, e.HasBindings())

	e.Bindings = []Binding{{CalendarID: "cal", EventID: "ev"}}
	assert.True(t, e.HasBindings())

	cleared := Cleared(3)
	assert.True(t, cleared.IsBlank())
	assert.Equal(t, 3, cleared.Row)
}

func TestIsStatusLabel(t *testing.T) {
	assert.True(t, IsStatusLabel("completed"))
	assert.True(t, IsStatusLabel("partial-failure"))
	assert.False(t, IsStatusLabel("ev-8f2a"))
	assert.False(t, IsStatusLabel(""))
}
