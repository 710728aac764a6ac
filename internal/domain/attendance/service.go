package attendance

import "context"

// AttendanceService defines business logic for attendance operations. The
// check-in/check-out paths apply the same time-window rules the client-side
// pre-validation uses, so server and UI can never disagree on eligibility.
type AttendanceService interface {
	// CheckIn records a check-in for a work schedule after validating the
	// check-in window and the unfinished-previous-shift ordering rule.
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)

	// CheckOut closes the open attendance for a work schedule. Denied once
	// the checkout grace period has lapsed; the record is then left for the
	// auto-close job.
	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)

	// MyDay returns the authenticated employee's schedules for a date with
	// the evaluated eligibility of each, ready for button rendering.
	MyDay(ctx context.Context, date string) (MyDayResponse, error)

	// List retrieves attendance records with filters (admin/manager).
	List(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)
}
