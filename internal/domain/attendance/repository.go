package attendance

import "context"

// AttendanceRepository defines data access for attendance records. Methods
// take companyID to prevent cross-company data access.
type AttendanceRepository interface {
	Create(ctx context.Context, att Attendance) (Attendance, error)

	// GetByWorkScheduleID returns nil (no error) when the schedule has no
	// attendance record yet.
	GetByWorkScheduleID(ctx context.Context, workScheduleID string, companyID string) (*Attendance, error)

	// GetByWorkScheduleIDs returns the records for a set of schedules, keyed
	// by work schedule ID. Schedules without attendance are absent from the map.
	GetByWorkScheduleIDs(ctx context.Context, workScheduleIDs []string, companyID string) (map[string]Attendance, error)

	Update(ctx context.Context, att Attendance) error

	List(ctx context.Context, filter AttendanceFilter, companyID string) ([]Attendance, int64, error)

	// ListOpenSessions returns every open record (checked in, no checkout,
	// not auto-closed) joined with its schedule's shift times, across all
	// companies. Used by the auto-close job.
	ListOpenSessions(ctx context.Context) ([]OpenSession, error)
}
