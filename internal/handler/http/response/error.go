package response

import (
	"errors"
	"net/http"

	"github.com/ngokanh/hrm-backend-go/internal/domain/attendance"
	"github.com/ngokanh/hrm-backend-go/internal/domain/schedule"
	"github.com/ngokanh/hrm-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Schedule domain errors
	switch {
	case errors.Is(err, schedule.ErrShiftNotFound):
		NotFound(w, "Shift not found")
	case errors.Is(err, schedule.ErrShiftNameExists):
		Conflict(w, "Shift name already exists")
	case errors.Is(err, schedule.ErrShiftInUse):
		Conflict(w, "Shift is still referenced by work schedules")
	case errors.Is(err, schedule.ErrWorkScheduleNotFound):
		NotFound(w, "Work schedule not found")
	case errors.Is(err, schedule.ErrDuplicateAssignment):
		Conflict(w, "Employee is already assigned to this shift on this date")
	case errors.Is(err, schedule.ErrInvalidDateFormat):
		BadRequest(w, "Date must be in YYYY-MM-DD format", nil)
	case errors.Is(err, schedule.ErrInvalidTimeFormat):
		BadRequest(w, "Time must be in HH:mm format", nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "Already checked in for this schedule")
	case errors.Is(err, attendance.ErrTooEarlyToCheckIn):
		BadRequest(w, "Too early to check in", nil)
	case errors.Is(err, attendance.ErrShiftAlreadyEnded):
		BadRequest(w, "Shift has already ended", nil)
	case errors.Is(err, attendance.ErrPreviousShiftUnfinished):
		Conflict(w, "Previous shift has not been checked out")
	case errors.Is(err, attendance.ErrNotCheckedIn):
		BadRequest(w, "No check-in recorded for this schedule", nil)
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		Conflict(w, "Already checked out for this schedule")
	case errors.Is(err, attendance.ErrCheckoutWindowClosed):
		BadRequest(w, "Checkout grace period has lapsed", nil)
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrNoScheduleFound):
		NotFound(w, "No schedule found for this date")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
