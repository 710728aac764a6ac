package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ngokanh/hrm-backend-go/internal/domain/schedule"
	"github.com/ngokanh/hrm-backend-go/internal/pkg/database"
)

type shiftRepository struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) schedule.ShiftRepository {
	return &shiftRepository{db: db}
}

// Create implements schedule.ShiftRepository.
func (r *shiftRepository) Create(ctx context.Context, shift schedule.Shift) (schedule.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO shifts (id, company_id, name, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		shift.ID,
		shift.CompanyID,
		shift.Name,
		shift.StartTime,
		shift.EndTime,
	).Scan(&shift.CreatedAt, &shift.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return schedule.Shift{}, schedule.ErrShiftNameExists
		}
		return schedule.Shift{}, fmt.Errorf("failed to create shift: %w", err)
	}

	return shift, nil
}

// GetByID implements schedule.ShiftRepository.
func (r *shiftRepository) GetByID(ctx context.Context, id string, companyID string) (schedule.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, start_time, end_time, created_at, updated_at
		FROM shifts
		WHERE id = $1 AND company_id = $2
	`

	var shift schedule.Shift
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&shift.ID, &shift.CompanyID, &shift.Name,
		&shift.StartTime, &shift.EndTime,
		&shift.CreatedAt, &shift.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.Shift{}, schedule.ErrShiftNotFound
		}
		return schedule.Shift{}, fmt.Errorf("failed to get shift by ID: %w", err)
	}

	return shift, nil
}

// List implements schedule.ShiftRepository.
func (r *shiftRepository) List(ctx context.Context, companyID string) ([]schedule.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, start_time, end_time, created_at, updated_at
		FROM shifts
		WHERE company_id = $1
		ORDER BY start_time ASC, name ASC
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	defer rows.Close()

	var shifts []schedule.Shift
	for rows.Next() {
		var shift schedule.Shift
		if err := rows.Scan(
			&shift.ID, &shift.CompanyID, &shift.Name,
			&shift.StartTime, &shift.EndTime,
			&shift.CreatedAt, &shift.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, shift)
	}

	return shifts, rows.Err()
}

// Update implements schedule.ShiftRepository.
func (r *shiftRepository) Update(ctx context.Context, shift schedule.Shift) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE shifts
		SET name = $1, start_time = $2, end_time = $3, updated_at = NOW()
		WHERE id = $4 AND company_id = $5
	`

	tag, err := q.Exec(ctx, query,
		shift.Name, shift.StartTime, shift.EndTime,
		shift.ID, shift.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrShiftNotFound
	}

	return nil
}

// Delete implements schedule.ShiftRepository.
func (r *shiftRepository) Delete(ctx context.Context, id, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM shifts WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return schedule.ErrShiftInUse
		}
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrShiftNotFound
	}

	return nil
}
