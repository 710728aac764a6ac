package schedule

import "time"

// Shift is a reusable template defining a start/end time of day, e.g.
// "Morning" 08:00-17:00. An end time earlier than the start time means the
// shift crosses midnight into the next calendar day.
type Shift struct {
	ID        string
	CompanyID string
	Name      string
	StartTime string // normalized "HH:mm"
	EndTime   string // normalized "HH:mm"
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkSchedule assigns one employee to one shift on one calendar date.
// Multiple schedules per employee per day are allowed (e.g. morning+evening).
type WorkSchedule struct {
	ID         string
	CompanyID  string
	EmployeeID string
	ShiftID    string
	WorkDate   time.Time // date-only, local civil calendar
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Joined shift fields
	ShiftName string
	StartTime string
	EndTime   string
}
