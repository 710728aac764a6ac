package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in errors
	ErrAlreadyCheckedIn        = errors.New("already checked in for this shift")
	ErrTooEarlyToCheckIn       = errors.New("too early to check in")
	ErrShiftAlreadyEnded       = errors.New("shift has already ended")
	ErrPreviousShiftUnfinished = errors.New("previous shift has not been checked out yet")

	// Check-out errors
	ErrNotCheckedIn         = errors.New("not checked in for this shift")
	ErrAlreadyCheckedOut    = errors.New("already checked out for this shift")
	ErrCheckoutWindowClosed = errors.New("checkout window has closed for this shift")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrNoScheduleFound    = errors.New("no work schedule found")
)
