package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ngokanh/hrm-backend-go/internal/domain/schedule"
	"github.com/ngokanh/hrm-backend-go/internal/pkg/database"
)

type workScheduleRepository struct {
	db *database.DB
}

func NewWorkScheduleRepository(db *database.DB) schedule.WorkScheduleRepository {
	return &workScheduleRepository{db: db}
}

// Create implements schedule.WorkScheduleRepository.
func (r *workScheduleRepository) Create(ctx context.Context, ws schedule.WorkSchedule) (schedule.WorkSchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO work_schedules (id, company_id, employee_id, shift_id, work_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		ws.ID,
		ws.CompanyID,
		ws.EmployeeID,
		ws.ShiftID,
		ws.WorkDate,
	).Scan(&ws.CreatedAt, &ws.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return schedule.WorkSchedule{}, schedule.ErrDuplicateAssignment
			case "23503":
				return schedule.WorkSchedule{}, schedule.ErrShiftNotFound
			}
		}
		return schedule.WorkSchedule{}, fmt.Errorf("failed to create work schedule: %w", err)
	}

	return ws, nil
}

// GetByID implements schedule.WorkScheduleRepository.
func (r *workScheduleRepository) GetByID(ctx context.Context, id string, companyID string) (schedule.WorkSchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ws.id, ws.company_id, ws.employee_id, ws.shift_id, ws.work_date,
		       ws.created_at, ws.updated_at,
		       s.name AS shift_name, s.start_time, s.end_time
		FROM work_schedules ws
		JOIN shifts s ON s.id = ws.shift_id
		WHERE ws.id = $1 AND ws.company_id = $2
	`

	var ws schedule.WorkSchedule
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&ws.ID, &ws.CompanyID, &ws.EmployeeID, &ws.ShiftID, &ws.WorkDate,
		&ws.CreatedAt, &ws.UpdatedAt,
		&ws.ShiftName, &ws.StartTime, &ws.EndTime,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.WorkSchedule{}, schedule.ErrWorkScheduleNotFound
		}
		return schedule.WorkSchedule{}, fmt.Errorf("failed to get work schedule by ID: %w", err)
	}

	return ws, nil
}

// ListByEmployeeAndDate implements schedule.WorkScheduleRepository. Start-time
// ordering here must stay consistent with the precedence rule the eligibility
// engine applies; both sort on the normalized HH:mm string.
func (r *workScheduleRepository) ListByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) ([]schedule.WorkSchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ws.id, ws.company_id, ws.employee_id, ws.shift_id, ws.work_date,
		       ws.created_at, ws.updated_at,
		       s.name AS shift_name, s.start_time, s.end_time
		FROM work_schedules ws
		JOIN shifts s ON s.id = ws.shift_id
		WHERE ws.employee_id = $1 AND ws.work_date = $2 AND ws.company_id = $3
		ORDER BY s.start_time ASC
	`

	rows, err := q.Query(ctx, query, employeeID, date, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list work schedules by employee and date: %w", err)
	}
	defer rows.Close()

	return scanWorkSchedules(rows)
}

// List implements schedule.WorkScheduleRepository.
func (r *workScheduleRepository) List(ctx context.Context, filter schedule.WorkScheduleFilter, companyID string) ([]schedule.WorkSchedule, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "ws.company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND ws.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Date != nil && *filter.Date != "" {
		baseWhere += fmt.Sprintf(" AND ws.work_date = $%d", argIdx)
		args = append(args, *filter.Date)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND ws.work_date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND ws.work_date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	countQuery := `
		SELECT COUNT(*)
		FROM work_schedules ws
		WHERE ` + baseWhere

	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count work schedules: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT ws.id, ws.company_id, ws.employee_id, ws.shift_id, ws.work_date,
		       ws.created_at, ws.updated_at,
		       s.name AS shift_name, s.start_time, s.end_time
		FROM work_schedules ws
		JOIN shifts s ON s.id = ws.shift_id
		WHERE %s
		ORDER BY ws.work_date DESC, s.start_time ASC
		LIMIT $%d OFFSET $%d
	`, baseWhere, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list work schedules: %w", err)
	}
	defer rows.Close()

	schedules, err := scanWorkSchedules(rows)
	if err != nil {
		return nil, 0, err
	}

	return schedules, total, nil
}

// Delete implements schedule.WorkScheduleRepository.
func (r *workScheduleRepository) Delete(ctx context.Context, id, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM work_schedules WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete work schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrWorkScheduleNotFound
	}

	return nil
}

func scanWorkSchedules(rows pgx.Rows) ([]schedule.WorkSchedule, error) {
	var schedules []schedule.WorkSchedule
	for rows.Next() {
		var ws schedule.WorkSchedule
		if err := rows.Scan(
			&ws.ID, &ws.CompanyID, &ws.EmployeeID, &ws.ShiftID, &ws.WorkDate,
			&ws.CreatedAt, &ws.UpdatedAt,
			&ws.ShiftName, &ws.StartTime, &ws.EndTime,
		); err != nil {
			return nil, fmt.Errorf("failed to scan work schedule: %w", err)
		}
		schedules = append(schedules, ws)
	}
	return schedules, rows.Err()
}
