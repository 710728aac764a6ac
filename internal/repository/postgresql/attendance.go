package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/ngokanh/hrm-backend-go/internal/domain/attendance"
	"github.com/ngokanh/hrm-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepository) Create(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendances (id, company_id, employee_id, work_schedule_id, check_in, check_out, status, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		att.ID,
		att.CompanyID,
		att.EmployeeID,
		att.WorkScheduleID,
		att.CheckIn,
		att.CheckOut,
		att.Status,
		att.Note,
	).Scan(&att.CreatedAt, &att.UpdatedAt)

	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return att, nil
}

// GetByWorkScheduleID implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByWorkScheduleID(ctx context.Context, workScheduleID string, companyID string) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, employee_id, work_schedule_id,
		       check_in, check_out, status, note, created_at, updated_at
		FROM attendances
		WHERE work_schedule_id = $1 AND company_id = $2
	`

	var att attendance.Attendance
	err := q.QueryRow(ctx, query, workScheduleID, companyID).Scan(
		&att.ID, &att.CompanyID, &att.EmployeeID, &att.WorkScheduleID,
		&att.CheckIn, &att.CheckOut, &att.Status, &att.Note,
		&att.CreatedAt, &att.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No attendance for this schedule yet
		}
		return nil, fmt.Errorf("failed to get attendance by work schedule ID: %w", err)
	}

	return &att, nil
}

// GetByWorkScheduleIDs implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByWorkScheduleIDs(ctx context.Context, workScheduleIDs []string, companyID string) (map[string]attendance.Attendance, error) {
	result := make(map[string]attendance.Attendance, len(workScheduleIDs))
	if len(workScheduleIDs) == 0 {
		return result, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, employee_id, work_schedule_id,
		       check_in, check_out, status, note, created_at, updated_at
		FROM attendances
		WHERE work_schedule_id = ANY($1) AND company_id = $2
	`

	rows, err := q.Query(ctx, query, workScheduleIDs, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendances by work schedule IDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var att attendance.Attendance
		if err := rows.Scan(
			&att.ID, &att.CompanyID, &att.EmployeeID, &att.WorkScheduleID,
			&att.CheckIn, &att.CheckOut, &att.Status, &att.Note,
			&att.CreatedAt, &att.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		result[att.WorkScheduleID] = att
	}

	return result, rows.Err()
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances
		SET check_in = $1, check_out = $2, status = $3, note = $4, updated_at = NOW()
		WHERE id = $5 AND company_id = $6
	`

	tag, err := q.Exec(ctx, query,
		att.CheckIn, att.CheckOut, att.Status, att.Note,
		att.ID, att.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter, companyID string) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "a.company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND a.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
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
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	countQuery := `
		SELECT COUNT(*)
		FROM attendances a
		JOIN work_schedules ws ON ws.id = a.work_schedule_id
		WHERE ` + baseWhere

	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT a.id, a.company_id, a.employee_id, a.work_schedule_id,
		       a.check_in, a.check_out, a.status, a.note, a.created_at, a.updated_at
		FROM attendances a
		JOIN work_schedules ws ON ws.id = a.work_schedule_id
		WHERE %s
		ORDER BY ws.work_date DESC, a.check_in DESC NULLS LAST
		LIMIT $%d OFFSET $%d
	`, baseWhere, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	var attendances []attendance.Attendance
	for rows.Next() {
		var att attendance.Attendance
		if err := rows.Scan(
			&att.ID, &att.CompanyID, &att.EmployeeID, &att.WorkScheduleID,
			&att.CheckIn, &att.CheckOut, &att.Status, &att.Note,
			&att.CreatedAt, &att.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}

	return attendances, total, rows.Err()
}

// ListOpenSessions implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListOpenSessions(ctx context.Context) ([]attendance.OpenSession, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT a.id, a.company_id, a.employee_id, a.work_schedule_id,
		       a.check_in, a.check_out, a.status, a.note, a.created_at, a.updated_at,
		       ws.work_date, s.start_time, s.end_time
		FROM attendances a
		JOIN work_schedules ws ON ws.id = a.work_schedule_id
		JOIN shifts s ON s.id = ws.shift_id
		WHERE a.check_in IS NOT NULL
		  AND a.check_out IS NULL
		  AND a.status != $1
		ORDER BY a.check_in ASC
	`

	rows, err := q.Query(ctx, query, attendance.StatusAutoClosed)
	if err != nil {
		return nil, fmt.Errorf("failed to list open sessions: %w", err)
	}
	defer rows.Close()

	var sessions []attendance.OpenSession
	for rows.Next() {
		var s attendance.OpenSession
		if err := rows.Scan(
			&s.ID, &s.CompanyID, &s.EmployeeID, &s.WorkScheduleID,
			&s.CheckIn, &s.CheckOut, &s.Status, &s.Note,
			&s.CreatedAt, &s.UpdatedAt,
			&s.WorkDate, &s.StartTime, &s.EndTime,
		); err != nil {
			return nil, fmt.Errorf("failed to scan open session: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}
