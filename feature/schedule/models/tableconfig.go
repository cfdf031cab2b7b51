package models

// TableConfig describes one schedule table to synchronize, as read from the
// settings sheet once per run.
type TableConfig struct {
	// Table is the source sheet name.
	Table string
	// Enabled gates processing of this table.
	Enabled bool
	// CalendarIDs lists the provider calendars receiving one event per row.
	CalendarIDs []string
	// TeacherEmail is the fallback teacher address for rows without one.
	TeacherEmail string
	// StudentEmail is the fallback student address for rows without one.
	StudentEmail string
	// Timezone is the IANA zone name the table's dates and times use.
	Timezone string
	// ReminderMinutes is the event reminder lead time.
	ReminderMinutes int
}
