package models

import (
	"strings"

	"schedule-sync/core/utils"
)

// Field names a logical column of a schedule table.
type Field string

const (
	FieldRecordID     Field = "record_id"
	FieldLesson       Field = "lesson"
	FieldDate         Field = "date"
	FieldStart        Field = "start"
	FieldEnd          Field = "end"
	FieldTitle        Field = "title"
	FieldTeacherName  Field = "teacher_name"
	FieldTeacherEmail Field = "teacher_email"
	FieldStudentName  Field = "student_name"
	FieldStudentEmail Field = "student_email"
)

// RecordIDHeader is the canonical header written when the identity column has
// to be created on a source table.
const RecordIDHeader = "record_id"

// headerSynonyms maps each logical field to its accepted header spellings in
// priority order. Matching is done on normalized text, so case, extra spaces
// and underscores in the sheet don't matter.
var headerSynonyms = map[Field][]string{
	FieldRecordID:     {"record id", "record", "id", "sync id"},
	FieldLesson:       {"lesson", "lesson number", "lesson no", "no", "nr"},
	FieldDate:         {"date", "lesson date", "day"},
	FieldStart:        {"start", "start time", "from", "begin"},
	FieldEnd:          {"end", "end time", "to", "until", "finish"},
	FieldTitle:        {"title", "topic", "subject", "lesson title"},
	FieldTeacherName:  {"teacher", "teacher name", "tutor", "instructor"},
	FieldTeacherEmail: {"teacher email", "tutor email", "instructor email"},
	FieldStudentName:  {"student", "student name", "pupil", "learner"},
	FieldStudentEmail: {"student email", "pupil email", "learner email"},
}

// NormalizeHeader lowercases a header cell and collapses separators so
// "Start_Time", "start time" and " Start  Time " all compare equal.
func NormalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), " ")
}

// ResolveHeaders builds the header-resolution map for one table read.
// Each logical field resolves to the first header matching one of its
// synonyms; unresolved fields are simply absent from the map.
func ResolveHeaders(headerRow []any) map[Field]int {
	byText := make(map[string]int, len(headerRow))
	for i, cell := range headerRow {
		text := NormalizeHeader(utils.ToString(cell))
		if text == "" {
			continue
		}
		if _, taken := byText[text]; !taken {
			byText[text] = i
		}
	}

	resolved := make(map[Field]int, len(headerSynonyms))
	for field, synonyms := range headerSynonyms {
		for _, syn := range synonyms {
			if col, ok := byText[syn]; ok {
				resolved[field] = col
				break
			}
		}
	}
	return resolved
}
