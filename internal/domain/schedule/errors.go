package schedule

import "errors"

var (
	// Shift errors
	ErrShiftNotFound   = errors.New("shift not found")
	ErrShiftNameExists = errors.New("shift with this name already exists")
	ErrShiftInUse      = errors.New("shift is referenced by existing work schedules")

	// Work schedule errors
	ErrWorkScheduleNotFound = errors.New("work schedule not found")
	ErrDuplicateAssignment  = errors.New("employee is already assigned to this shift on this date")

	// Validation errors
	ErrInvalidDateFormat = errors.New("invalid date format, use YYYY-MM-DD")
	ErrInvalidTimeFormat = errors.New("invalid time format, use HH:mm")
)
