package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Record is one schedule row requiring synchronization.
// Row is the zero-based data row index in the source table (the header row is
// excluded), which is also the row's position in the sync ledger.
type Record struct {
	Row          int
	RecordID     string
	LessonNumber string
	Date         time.Time
	Start        time.Time
	End          time.Time
	Title        string
	TeacherName  string
	TeacherEmail string
	StudentName  string
	StudentEmail string
}

// Fingerprint returns a stable digest over the record's key information:
// date, start time, end time, title and both participants' names and
// addresses. Unrelated fields never affect it.
func (r *Record) Fingerprint() string {
	parts := []string{
		r.Date.Format("2006-01-02"),
		r.Start.Format("15:04"),
		r.End.Format("15:04"),
		r.Title,
		r.TeacherName,
		r.TeacherEmail,
		r.StudentName,
		r.StudentEmail,
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}

// NaturalKey returns the legacy composite key (lesson number + date) used to
// match ledger entries created before record identifiers existed.
func (r *Record) NaturalKey() string {
	return NaturalKey(r.LessonNumber, r.Date.Format("2006-01-02"))
}

// NaturalKey builds the legacy composite key from its two identifying fields.
func NaturalKey(lessonNumber, date string) string {
	return fmt.Sprintf("%s|%s", strings.TrimSpace(lessonNumber), strings.TrimSpace(date))
}
