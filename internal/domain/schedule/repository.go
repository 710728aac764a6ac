package schedule

import (
	"context"
	"time"
)

type ShiftRepository interface {
	Create(ctx context.Context, shift Shift) (Shift, error)
	GetByID(ctx context.Context, id string, companyID string) (Shift, error)
	List(ctx context.Context, companyID string) ([]Shift, error)
	Update(ctx context.Context, shift Shift) error
	Delete(ctx context.Context, id, companyID string) error
}

type WorkScheduleRepository interface {
	Create(ctx context.Context, ws WorkSchedule) (WorkSchedule, error)
	GetByID(ctx context.Context, id string, companyID string) (WorkSchedule, error)

	// ListByEmployeeAndDate returns all of an employee's schedules on one work
	// date, joined with shift times, ordered by shift start time ascending.
	// This ordering is the one the eligibility engine's precedence rule and
	// every schedule listing share.
	ListByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) ([]WorkSchedule, error)

	List(ctx context.Context, filter WorkScheduleFilter, companyID string) ([]WorkSchedule, int64, error)
	Delete(ctx context.Context, id, companyID string) error
}
