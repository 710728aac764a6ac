package attendance

import (
	"strings"

	"github.com/ngokanh/hrm-backend-go/internal/pkg/validator"
)

type CheckInRequest struct {
	WorkScheduleID string `json:"work_schedule_id"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.WorkScheduleID) {
		errs = append(errs, validator.ValidationError{
			Field:   "work_schedule_id",
			Message: "work_schedule_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CheckOutRequest struct {
	WorkScheduleID string `json:"work_schedule_id"`
}

func (r *CheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.WorkScheduleID) {
		errs = append(errs, validator.ValidationError{
			Field:   "work_schedule_id",
			Message: "work_schedule_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AttendanceResponse struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employee_id"`
	WorkScheduleID string  `json:"work_schedule_id"`
	CheckIn        *string `json:"check_in"`
	CheckOut       *string `json:"check_out"`
	Status         string  `json:"status"`
	Note           *string `json:"note,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// ScheduleEligibility is the per-schedule view the attendance screen renders
// its action buttons from. The allow/deny fields mirror the evaluation engine
// outputs exactly so the UI never re-derives policy. A schedule whose times
// cannot be resolved reports both actions as allowed (fail open): a data gap
// must not block a legitimate action, the server stays the authoritative gate.
type ScheduleEligibility struct {
	WorkScheduleID string  `json:"work_schedule_id"`
	ShiftName      string  `json:"shift_name"`
	WorkDate       string  `json:"work_date"`
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	Status         *string `json:"status"` // nil when no attendance yet
	CheckIn        *string `json:"check_in"`
	CheckOut       *string `json:"check_out"`

	CanCheckIn        bool   `json:"can_check_in"`
	CheckInReason     string `json:"check_in_reason,omitempty"`
	CanCheckOut       bool   `json:"can_check_out"`
	CheckOutReason    string `json:"check_out_reason,omitempty"`
	PastEnd           bool   `json:"past_end"`
	BlockedByPrevious bool   `json:"blocked_by_previous"`
	OverlapWarning    bool   `json:"overlap_warning"`
}

type MyDayResponse struct {
	Date      string                `json:"date"`
	Schedules []ScheduleEligibility `json:"schedules"`
}

type AttendanceFilter struct {
	EmployeeID *string
	StartDate  *string
	EndDate    *string
	Status     *string

	Page  int
	Limit int
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	for field, v := range map[string]*string{
		"start_date": f.StartDate,
		"end_date":   f.EndDate,
	} {
		if v != nil && strings.TrimSpace(*v) != "" {
			if _, ok := validator.IsValidDate(*v); !ok {
				errs = append(errs, validator.ValidationError{
					Field:   field,
					Message: field + " must be a valid YYYY-MM-DD date",
				})
			}
		}
	}

	if f.Status != nil && *f.Status != "" {
		valid := []string{StatusCheckedIn, StatusCompleted, StatusAutoClosed}
		if !validator.IsInSlice(*f.Status, valid) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: " + strings.Join(valid, ", "),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Attendances []AttendanceResponse `json:"attendances"`
}
