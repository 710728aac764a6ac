package schedule

import "context"

// ScheduleService defines business logic for shift templates and work
// schedule assignment.
type ScheduleService interface {
	CreateShift(ctx context.Context, req CreateShiftRequest) (ShiftResponse, error)
	GetShift(ctx context.Context, id string) (ShiftResponse, error)
	ListShifts(ctx context.Context) ([]ShiftResponse, error)
	UpdateShift(ctx context.Context, req UpdateShiftRequest) (ShiftResponse, error)
	DeleteShift(ctx context.Context, id string) error

	// CreateWorkSchedule assigns an employee to a shift on a date. Same-day
	// overlap with other assignments is computed and returned as a warning,
	// never as a rejection.
	CreateWorkSchedule(ctx context.Context, req CreateWorkScheduleRequest) (WorkScheduleResponse, error)
	ListWorkSchedules(ctx context.Context, filter WorkScheduleFilter) (ListWorkScheduleResponse, error)
	DeleteWorkSchedule(ctx context.Context, id string) error
}
