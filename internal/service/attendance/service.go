package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ngokanh/hrm-backend-go/internal/domain/attendance"
	"github.com/ngokanh/hrm-backend-go/internal/domain/schedule"
	"github.com/ngokanh/hrm-backend-go/internal/pkg/database"
	"github.com/ngokanh/hrm-backend-go/internal/pkg/timewindow"
	"github.com/ngokanh/hrm-backend-go/internal/repository/postgresql"
)

type AttendanceServiceImpl struct {
	db *database.DB
	attendance.AttendanceRepository
	workScheduleRepo schedule.WorkScheduleRepository
	evaluator        *timewindow.Evaluator

	// clock and runTx are swapped out in tests.
	clock func() time.Time
	runTx func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewAttendanceService(
	db *database.DB,
	attendanceRepo attendance.AttendanceRepository,
	workScheduleRepo schedule.WorkScheduleRepository,
	evaluator *timewindow.Evaluator,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		db:                   db,
		AttendanceRepository: attendanceRepo,
		workScheduleRepo:     workScheduleRepo,
		evaluator:            evaluator,
		clock:                time.Now,
		runTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return postgresql.WithTransaction(ctx, db, func(tx pgx.Tx) error {
				return fn(context.WithValue(ctx, "tx", tx))
			})
		},
	}
}

func claimsFromContext(ctx context.Context) (employeeID, companyID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return "", "", fmt.Errorf("employee_id claim is missing or invalid")
	}
	companyID, ok = claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", fmt.Errorf("company_id claim is missing or invalid")
	}
	return employeeID, companyID, nil
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	employeeID, companyID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.clock()

	ws, err := s.workScheduleRepo.GetByID(ctx, req.WorkScheduleID, companyID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if ws.EmployeeID != employeeID {
		return attendance.AttendanceResponse{}, schedule.ErrWorkScheduleNotFound
	}

	checkIn := now.UTC()
	var created attendance.Attendance
	err = s.runTx(ctx, func(ctx context.Context) error {
		existing, err := s.AttendanceRepository.GetByWorkScheduleID(ctx, ws.ID, companyID)
		if err != nil {
			return err
		}
		if existing != nil && existing.CheckIn != nil {
			return attendance.ErrAlreadyCheckedIn
		}

		workDate := ws.WorkDate.Format("2006-01-02")
		state := s.evaluator.CheckInWindowState(now, workDate, ws.StartTime, ws.EndTime)
		if !state.Allowed {
			if state.Reason == timewindow.ReasonTooEarly {
				return attendance.ErrTooEarlyToCheckIn
			}
			return attendance.ErrShiftAlreadyEnded
		}

		blocked, err := s.blockedByPrevious(ctx, now, ws, companyID)
		if err != nil {
			return err
		}
		if blocked {
			return attendance.ErrPreviousShiftUnfinished
		}

		created, err = s.AttendanceRepository.Create(ctx, attendance.Attendance{
			ID:             uuid.NewString(),
			CompanyID:      companyID,
			EmployeeID:     employeeID,
			WorkScheduleID: ws.ID,
			CheckIn:        &checkIn,
			Status:         attendance.StatusCheckedIn,
		})
		return err
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("Employee checked in",
		"employee_id", employeeID,
		"work_schedule_id", ws.ID,
		"check_in", checkIn)

	return mapToResponse(created), nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	employeeID, companyID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.clock()

	ws, err := s.workScheduleRepo.GetByID(ctx, req.WorkScheduleID, companyID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if ws.EmployeeID != employeeID {
		return attendance.AttendanceResponse{}, schedule.ErrWorkScheduleNotFound
	}

	checkOut := now.UTC()
	var att *attendance.Attendance
	err = s.runTx(ctx, func(ctx context.Context) error {
		att, err = s.AttendanceRepository.GetByWorkScheduleID(ctx, ws.ID, companyID)
		if err != nil {
			return err
		}
		if att == nil || att.CheckIn == nil {
			return attendance.ErrNotCheckedIn
		}
		if att.CheckOut != nil || att.Status == attendance.StatusAutoClosed {
			return attendance.ErrAlreadyCheckedOut
		}

		workDate := ws.WorkDate.Format("2006-01-02")
		if state := s.evaluator.CheckOutDelayState(now, workDate, ws.StartTime, ws.EndTime); !state.Allowed {
			return attendance.ErrCheckoutWindowClosed
		}

		att.CheckOut = &checkOut
		att.Status = attendance.StatusCompleted
		return s.AttendanceRepository.Update(ctx, *att)
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("Employee checked out",
		"employee_id", employeeID,
		"work_schedule_id", ws.ID,
		"check_out", checkOut)

	return mapToResponse(*att), nil
}

// MyDay implements attendance.AttendanceService. An empty date means today in
// the configured timezone.
func (s *AttendanceServiceImpl) MyDay(ctx context.Context, date string) (attendance.MyDayResponse, error) {
	employeeID, companyID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.MyDayResponse{}, err
	}

	now := s.clock()
	if date == "" {
		date = now.In(s.evaluator.Location()).Format("2006-01-02")
	}
	workDate, err := timewindow.ParseWorkDate(date)
	if err != nil {
		return attendance.MyDayResponse{}, schedule.ErrInvalidDateFormat
	}

	schedules, err := s.workScheduleRepo.ListByEmployeeAndDate(ctx, employeeID, workDate, companyID)
	if err != nil {
		return attendance.MyDayResponse{}, err
	}

	ids := make([]string, 0, len(schedules))
	for _, ws := range schedules {
		ids = append(ids, ws.ID)
	}
	records, err := s.AttendanceRepository.GetByWorkScheduleIDs(ctx, ids, companyID)
	if err != nil {
		return attendance.MyDayResponse{}, err
	}

	dayShifts, marks := buildEngineInputs(schedules, records)

	eligibilities := make([]attendance.ScheduleEligibility, 0, len(schedules))
	for i, ws := range schedules {
		elig := attendance.ScheduleEligibility{
			WorkScheduleID: ws.ID,
			ShiftName:      ws.ShiftName,
			WorkDate:       date,
			StartTime:      ws.StartTime,
			EndTime:        ws.EndTime,
			PastEnd:        s.evaluator.IsAfterEnd(now, date, ws.StartTime, ws.EndTime),
		}

		rec, hasRecord := records[ws.ID]
		if hasRecord {
			status := rec.Status
			elig.Status = &status
			elig.CheckIn = formatInstant(rec.CheckIn)
			elig.CheckOut = formatInstant(rec.CheckOut)
		}

		for j, other := range schedules {
			if i == j {
				continue
			}
			if s.evaluator.ShiftsOverlap(date, ws.StartTime, ws.EndTime, other.StartTime, other.EndTime) {
				elig.OverlapWarning = true
				break
			}
		}

		switch {
		case hasRecord && rec.CheckIn != nil:
			// Already checked in: check-in is done, check-out is the live
			// question.
			elig.CanCheckIn = false
			elig.CheckInReason = ""
			if rec.IsOpen() {
				out := s.evaluator.CheckOutDelayState(now, date, ws.StartTime, ws.EndTime)
				elig.CanCheckOut = out.Allowed
				elig.CheckOutReason = out.Reason
			}
		default:
			in := s.evaluator.CheckInWindowState(now, date, ws.StartTime, ws.EndTime)
			elig.CanCheckIn = in.Allowed
			elig.CheckInReason = in.Reason
			if in.Allowed && s.evaluator.HasUnfinishedPrevious(now, dayShifts, ws.ID, marks) {
				elig.CanCheckIn = false
				elig.CheckInReason = "previous shift has not been checked out"
				elig.BlockedByPrevious = true
			}
		}

		eligibilities = append(eligibilities, elig)
	}

	return attendance.MyDayResponse{
		Date:      date,
		Schedules: eligibilities,
	}, nil
}

// List implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) List(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	_, companyID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := s.AttendanceRepository.List(ctx, filter, companyID)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, mapToResponse(rec))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Attendances: responses,
	}, nil
}

// blockedByPrevious applies the ordering rule: an earlier same-day shift that
// is still open within its own checkout grace blocks this one.
func (s *AttendanceServiceImpl) blockedByPrevious(ctx context.Context, now time.Time, ws schedule.WorkSchedule, companyID string) (bool, error) {
	sameDay, err := s.workScheduleRepo.ListByEmployeeAndDate(ctx, ws.EmployeeID, ws.WorkDate, companyID)
	if err != nil {
		return false, fmt.Errorf("failed to load same-day schedules: %w", err)
	}
	if len(sameDay) < 2 {
		return false, nil
	}

	ids := make([]string, 0, len(sameDay))
	for _, sd := range sameDay {
		ids = append(ids, sd.ID)
	}
	records, err := s.AttendanceRepository.GetByWorkScheduleIDs(ctx, ids, companyID)
	if err != nil {
		return false, fmt.Errorf("failed to load same-day attendance: %w", err)
	}

	dayShifts, marks := buildEngineInputs(sameDay, records)
	return s.evaluator.HasUnfinishedPrevious(now, dayShifts, ws.ID, marks), nil
}

func buildEngineInputs(schedules []schedule.WorkSchedule, records map[string]attendance.Attendance) ([]timewindow.DayShift, map[string]timewindow.Mark) {
	dayShifts := make([]timewindow.DayShift, 0, len(schedules))
	marks := make(map[string]timewindow.Mark, len(records))

	for _, ws := range schedules {
		dayShifts = append(dayShifts, timewindow.DayShift{
			ID:        ws.ID,
			WorkDate:  ws.WorkDate.Format("2006-01-02"),
			StartTime: ws.StartTime,
			EndTime:   ws.EndTime,
		})
		if rec, ok := records[ws.ID]; ok {
			marks[ws.ID] = timewindow.Mark{
				CheckIn:    rec.CheckIn,
				CheckOut:   rec.CheckOut,
				AutoClosed: rec.Status == attendance.StatusAutoClosed,
			}
		}
	}
	return dayShifts, marks
}

func formatInstant(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func mapToResponse(att attendance.Attendance) attendance.AttendanceResponse {
	return attendance.AttendanceResponse{
		ID:             att.ID,
		EmployeeID:     att.EmployeeID,
		WorkScheduleID: att.WorkScheduleID,
		CheckIn:        formatInstant(att.CheckIn),
		CheckOut:       formatInstant(att.CheckOut),
		Status:         att.Status,
		Note:           att.Note,
		CreatedAt:      att.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:      att.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
