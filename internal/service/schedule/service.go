package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/ngokanh/hrm-backend-go/internal/domain/schedule"
	"github.com/ngokanh/hrm-backend-go/internal/pkg/database"
	"github.com/ngokanh/hrm-backend-go/internal/pkg/timewindow"
)

type ScheduleServiceImpl struct {
	db *database.DB
	schedule.ShiftRepository
	schedule.WorkScheduleRepository
	evaluator *timewindow.Evaluator
}

func NewScheduleService(
	db *database.DB,
	shiftRepo schedule.ShiftRepository,
	workScheduleRepo schedule.WorkScheduleRepository,
	evaluator *timewindow.Evaluator,
) schedule.ScheduleService {
	return &ScheduleServiceImpl{
		db:                     db,
		ShiftRepository:        shiftRepo,
		WorkScheduleRepository: workScheduleRepo,
		evaluator:              evaluator,
	}
}

func companyIDFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", fmt.Errorf("company_id claim is missing or invalid")
	}
	return companyID, nil
}

// CreateShift implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) CreateShift(ctx context.Context, req schedule.CreateShiftRequest) (schedule.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return schedule.ShiftResponse{}, err
	}

	companyID, err := companyIDFromContext(ctx)
	if err != nil {
		return schedule.ShiftResponse{}, err
	}

	// Normalize to zero-padded HH:mm at the ingestion boundary; everything
	// downstream (sorting, the eligibility engine) relies on this form.
	start, err := timewindow.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return schedule.ShiftResponse{}, schedule.ErrInvalidTimeFormat
	}
	end, err := timewindow.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return schedule.ShiftResponse{}, schedule.ErrInvalidTimeFormat
	}

	shift := schedule.Shift{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		Name:      req.Name,
		StartTime: start.String(),
		EndTime:   end.String(),
	}

	created, err := s.ShiftRepository.Create(ctx, shift)
	if err != nil {
		return schedule.ShiftResponse{}, err
	}

	return mapShiftToResponse(created), nil
}

// GetShift implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) GetShift(ctx context.Context, id string) (schedule.ShiftResponse, error) {
	companyID, err := companyIDFromContext(ctx)
	if err != nil {
		return schedule.ShiftResponse{}, err
	}

	shift, err := s.ShiftRepository.GetByID(ctx, id, companyID)
	if err != nil {
		return schedule.ShiftResponse{}, err
	}

	return mapShiftToResponse(shift), nil
}

// ListShifts implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) ListShifts(ctx context.Context) ([]schedule.ShiftResponse, error) {
	companyID, err := companyIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	shifts, err := s.ShiftRepository.List(ctx, companyID)
	if err != nil {
		return nil, err
	}

	responses := make([]schedule.ShiftResponse, 0, len(shifts))
	for _, shift := range shifts {
		responses = append(responses, mapShiftToResponse(shift))
	}
	return responses, nil
}

// UpdateShift implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) UpdateShift(ctx context.Context, req schedule.UpdateShiftRequest) (schedule.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return schedule.ShiftResponse{}, err
	}

	companyID, err := companyIDFromContext(ctx)
	if err != nil {
		return schedule.ShiftResponse{}, err
	}

	shift, err := s.ShiftRepository.GetByID(ctx, req.ID, companyID)
	if err != nil {
		return schedule.ShiftResponse{}, err
	}

	if req.Name != nil {
		shift.Name = *req.Name
	}
	if req.StartTime != nil {
		start, err := timewindow.ParseTimeOfDay(*req.StartTime)
		if err != nil {
			return schedule.ShiftResponse{}, schedule.ErrInvalidTimeFormat
		}
		shift.StartTime = start.String()
	}
	if req.EndTime != nil {
		end, err := timewindow.ParseTimeOfDay(*req.EndTime)
		if err != nil {
			return schedule.ShiftResponse{}, schedule.ErrInvalidTimeFormat
		}
		shift.EndTime = end.String()
	}

	if err := s.ShiftRepository.Update(ctx, shift); err != nil {
		return schedule.ShiftResponse{}, err
	}

	updated, err := s.ShiftRepository.GetByID(ctx, req.ID, companyID)
	if err != nil {
		return schedule.ShiftResponse{}, err
	}

	return mapShiftToResponse(updated), nil
}

// DeleteShift implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) DeleteShift(ctx context.Context, id string) error {
	companyID, err := companyIDFromContext(ctx)
	if err != nil {
		return err
	}

	return s.ShiftRepository.Delete(ctx, id, companyID)
}

// CreateWorkSchedule implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) CreateWorkSchedule(ctx context.Context, req schedule.CreateWorkScheduleRequest) (schedule.WorkScheduleResponse, error) {
	if err := req.Validate(); err != nil {
		return schedule.WorkScheduleResponse{}, err
	}

	companyID, err := companyIDFromContext(ctx)
	if err != nil {
		return schedule.WorkScheduleResponse{}, err
	}

	workDate, err := timewindow.ParseWorkDate(req.WorkDate)
	if err != nil {
		return schedule.WorkScheduleResponse{}, schedule.ErrInvalidDateFormat
	}

	shift, err := s.ShiftRepository.GetByID(ctx, req.ShiftID, companyID)
	if err != nil {
		return schedule.WorkScheduleResponse{}, err
	}

	created, err := s.WorkScheduleRepository.Create(ctx, schedule.WorkSchedule{
		ID:         uuid.NewString(),
		CompanyID:  companyID,
		EmployeeID: req.EmployeeID,
		ShiftID:    shift.ID,
		WorkDate:   workDate,
	})
	if err != nil {
		return schedule.WorkScheduleResponse{}, err
	}
	created.ShiftName = shift.Name
	created.StartTime = shift.StartTime
	created.EndTime = shift.EndTime

	resp := mapWorkScheduleToResponse(created)

	// Overlap with the employee's other shifts that day is surfaced as a
	// warning; overlapping assignments are allowed.
	sameDay, err := s.WorkScheduleRepository.ListByEmployeeAndDate(ctx, req.EmployeeID, workDate, companyID)
	if err != nil {
		return schedule.WorkScheduleResponse{}, fmt.Errorf("failed to check same-day overlap: %w", err)
	}
	for _, other := range sameDay {
		if other.ID == created.ID {
			continue
		}
		if s.evaluator.ShiftsOverlap(req.WorkDate, shift.StartTime, shift.EndTime, other.StartTime, other.EndTime) {
			resp.OverlapWarning = true
			slog.Warn("Overlapping same-day shift assignment",
				"employee_id", req.EmployeeID,
				"work_date", req.WorkDate,
				"work_schedule_id", created.ID,
				"overlaps_with", other.ID)
			break
		}
	}

	return resp, nil
}

// ListWorkSchedules implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) ListWorkSchedules(ctx context.Context, filter schedule.WorkScheduleFilter) (schedule.ListWorkScheduleResponse, error) {
	if err := filter.Validate(); err != nil {
		return schedule.ListWorkScheduleResponse{}, err
	}

	companyID, err := companyIDFromContext(ctx)
	if err != nil {
		return schedule.ListWorkScheduleResponse{}, err
	}

	schedules, total, err := s.WorkScheduleRepository.List(ctx, filter, companyID)
	if err != nil {
		return schedule.ListWorkScheduleResponse{}, err
	}

	responses := make([]schedule.WorkScheduleResponse, 0, len(schedules))
	for _, ws := range schedules {
		responses = append(responses, mapWorkScheduleToResponse(ws))
	}
	markOverlapWarnings(s.evaluator, schedules, responses)

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))

	return schedule.ListWorkScheduleResponse{
		TotalCount:    total,
		Page:          filter.Page,
		Limit:         filter.Limit,
		TotalPages:    totalPages,
		WorkSchedules: responses,
	}, nil
}

// DeleteWorkSchedule implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) DeleteWorkSchedule(ctx context.Context, id string) error {
	companyID, err := companyIDFromContext(ctx)
	if err != nil {
		return err
	}

	return s.WorkScheduleRepository.Delete(ctx, id, companyID)
}

// markOverlapWarnings flags schedules in the result page that share an
// employee and work date with an intersecting shift.
func markOverlapWarnings(evaluator *timewindow.Evaluator, schedules []schedule.WorkSchedule, responses []schedule.WorkScheduleResponse) {
	byDay := make(map[string][]int)
	for i, ws := range schedules {
		key := ws.EmployeeID + "|" + ws.WorkDate.Format("2006-01-02")
		byDay[key] = append(byDay[key], i)
	}

	for _, idxs := range byDay {
		if len(idxs) < 2 {
			continue
		}
		for _, i := range idxs {
			for _, j := range idxs {
				if i == j {
					continue
				}
				a, b := schedules[i], schedules[j]
				if evaluator.ShiftsOverlap(a.WorkDate.Format("2006-01-02"), a.StartTime, a.EndTime, b.StartTime, b.EndTime) {
					responses[i].OverlapWarning = true
					break
				}
			}
		}
	}
}

func mapShiftToResponse(shift schedule.Shift) schedule.ShiftResponse {
	return schedule.ShiftResponse{
		ID:        shift.ID,
		Name:      shift.Name,
		StartTime: shift.StartTime,
		EndTime:   shift.EndTime,
		Overnight: shift.EndTime <= shift.StartTime,
		CreatedAt: shift.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt: shift.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

func mapWorkScheduleToResponse(ws schedule.WorkSchedule) schedule.WorkScheduleResponse {
	return schedule.WorkScheduleResponse{
		ID:         ws.ID,
		EmployeeID: ws.EmployeeID,
		ShiftID:    ws.ShiftID,
		ShiftName:  ws.ShiftName,
		WorkDate:   ws.WorkDate.Format("2006-01-02"),
		StartTime:  ws.StartTime,
		EndTime:    ws.EndTime,
		CreatedAt:  ws.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:  ws.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
