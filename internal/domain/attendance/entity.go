package attendance

import "time"

// Attendance statuses. AUTO_CLOSED is assigned by the background job when a
// checked-in shift was never checked out inside the grace window; such a
// record no longer counts as open.
const (
	StatusCheckedIn  = "checked_in"
	StatusCompleted  = "completed"
	StatusAutoClosed = "auto_closed"
)

// Attendance is the check-in/check-out record for one work schedule. At most
// one attendance exists per schedule. CheckOut is only meaningful when
// CheckIn is set.
type Attendance struct {
	ID             string
	CompanyID      string
	EmployeeID     string
	WorkScheduleID string
	CheckIn        *time.Time // absolute instant, stored UTC
	CheckOut       *time.Time
	Status         string
	Note           *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsOpen reports whether the record is an in-progress shift.
func (a Attendance) IsOpen() bool {
	return a.CheckIn != nil && a.CheckOut == nil && a.Status != StatusAutoClosed
}

// OpenSession is an open attendance joined with its schedule's shift times,
// used by the auto-close job to reconstruct the scheduled end.
type OpenSession struct {
	Attendance
	WorkDate  time.Time
	StartTime string
	EndTime   string
}
