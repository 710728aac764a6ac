package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngokanh/hrm-backend-go/internal/domain/schedule"
	"github.com/ngokanh/hrm-backend-go/internal/pkg/timewindow"
)

const testCompanyID = "company-1"

type fakeShiftRepo struct {
	shifts map[string]schedule.Shift
}

func (f *fakeShiftRepo) Create(_ context.Context, s schedule.Shift) (schedule.Shift, error) {
	for _, existing := range f.shifts {
		if existing.CompanyID == s.CompanyID && existing.Name == s.Name {
			return schedule.Shift{}, schedule.ErrShiftNameExists
		}
	}
	f.shifts[s.ID] = s
	return s, nil
}

func (f *fakeShiftRepo) GetByID(_ context.Context, id, companyID string) (schedule.Shift, error) {
	s, ok := f.shifts[id]
	if !ok || s.CompanyID != companyID {
		return schedule.Shift{}, schedule.ErrShiftNotFound
	}
	return s, nil
}

func (f *fakeShiftRepo) List(_ context.Context, companyID string) ([]schedule.Shift, error) {
	var out []schedule.Shift
	for _, s := range f.shifts {
		if s.CompanyID == companyID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeShiftRepo) Update(_ context.Context, s schedule.Shift) error {
	if _, ok := f.shifts[s.ID]; !ok {
		return schedule.ErrShiftNotFound
	}
	f.shifts[s.ID] = s
	return nil
}

func (f *fakeShiftRepo) Delete(_ context.Context, id, _ string) error {
	if _, ok := f.shifts[id]; !ok {
		return schedule.ErrShiftNotFound
	}
	delete(f.shifts, id)
	return nil
}

type fakeWorkScheduleRepo struct {
	schedules map[string]schedule.WorkSchedule
	shifts    *fakeShiftRepo
}

func (f *fakeWorkScheduleRepo) Create(_ context.Context, ws schedule.WorkSchedule) (schedule.WorkSchedule, error) {
	for _, existing := range f.schedules {
		if existing.EmployeeID == ws.EmployeeID && existing.ShiftID == ws.ShiftID && existing.WorkDate.Equal(ws.WorkDate) {
			return schedule.WorkSchedule{}, schedule.ErrDuplicateAssignment
		}
	}
	f.schedules[ws.ID] = ws
	return ws, nil
}

func (f *fakeWorkScheduleRepo) GetByID(_ context.Context, id, companyID string) (schedule.WorkSchedule, error) {
	ws, ok := f.schedules[id]
	if !ok || ws.CompanyID != companyID {
		return schedule.WorkSchedule{}, schedule.ErrWorkScheduleNotFound
	}
	return f.joined(ws), nil
}

func (f *fakeWorkScheduleRepo) ListByEmployeeAndDate(_ context.Context, employeeID string, date time.Time, companyID string) ([]schedule.WorkSchedule, error) {
	var out []schedule.WorkSchedule
	for _, ws := range f.schedules {
		if ws.EmployeeID == employeeID && ws.CompanyID == companyID && ws.WorkDate.Equal(date) {
			out = append(out, f.joined(ws))
		}
	}
	return out, nil
}

func (f *fakeWorkScheduleRepo) List(_ context.Context, _ schedule.WorkScheduleFilter, companyID string) ([]schedule.WorkSchedule, int64, error) {
	var out []schedule.WorkSchedule
	for _, ws := range f.schedules {
		if ws.CompanyID == companyID {
			out = append(out, f.joined(ws))
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeWorkScheduleRepo) Delete(_ context.Context, id, _ string) error {
	if _, ok := f.schedules[id]; !ok {
		return schedule.ErrWorkScheduleNotFound
	}
	delete(f.schedules, id)
	return nil
}

func (f *fakeWorkScheduleRepo) joined(ws schedule.WorkSchedule) schedule.WorkSchedule {
	if shift, ok := f.shifts.shifts[ws.ShiftID]; ok {
		ws.ShiftName = shift.Name
		ws.StartTime = shift.StartTime
		ws.EndTime = shift.EndTime
	}
	return ws
}

func newService(t *testing.T) (schedule.ScheduleService, *fakeShiftRepo, *fakeWorkScheduleRepo) {
	t.Helper()

	shiftRepo := &fakeShiftRepo{shifts: make(map[string]schedule.Shift)}
	wsRepo := &fakeWorkScheduleRepo{schedules: make(map[string]schedule.WorkSchedule), shifts: shiftRepo}
	evaluator := timewindow.NewEvaluator(timewindow.DefaultPolicy(), time.UTC)

	return NewScheduleService(nil, shiftRepo, wsRepo, evaluator), shiftRepo, wsRepo
}

func authedContext(t *testing.T) context.Context {
	t.Helper()

	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"employee_id": "employee-1",
		"company_id":  testCompanyID,
	})
	require.NoError(t, err)

	return jwtauth.NewContext(context.Background(), token, nil)
}

func TestCreateShift_NormalizesTimes(t *testing.T) {
	svc, _, _ := newService(t)

	resp, err := svc.CreateShift(authedContext(t), schedule.CreateShiftRequest{
		Name:      "Morning",
		StartTime: "8:00",
		EndTime:   "17:00:00",
	})

	require.NoError(t, err)
	assert.Equal(t, "08:00", resp.StartTime)
	assert.Equal(t, "17:00", resp.EndTime)
	assert.False(t, resp.Overnight)
	assert.NotEmpty(t, resp.ID)
}

func TestCreateShift_OvernightFlag(t *testing.T) {
	svc, _, _ := newService(t)

	resp, err := svc.CreateShift(authedContext(t), schedule.CreateShiftRequest{
		Name:      "Night",
		StartTime: "22:00",
		EndTime:   "06:00",
	})

	require.NoError(t, err)
	assert.True(t, resp.Overnight)
}

func TestCreateShift_InvalidTime(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.CreateShift(authedContext(t), schedule.CreateShiftRequest{
		Name:      "Broken",
		StartTime: "25:00",
		EndTime:   "17:00",
	})

	assert.Error(t, err)
}

func TestCreateShift_DuplicateName(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := authedContext(t)

	_, err := svc.CreateShift(ctx, schedule.CreateShiftRequest{Name: "Morning", StartTime: "08:00", EndTime: "17:00"})
	require.NoError(t, err)

	_, err = svc.CreateShift(ctx, schedule.CreateShiftRequest{Name: "Morning", StartTime: "09:00", EndTime: "18:00"})
	assert.ErrorIs(t, err, schedule.ErrShiftNameExists)
}

func TestUpdateShift_PartialUpdate(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := authedContext(t)

	created, err := svc.CreateShift(ctx, schedule.CreateShiftRequest{Name: "Morning", StartTime: "08:00", EndTime: "17:00"})
	require.NoError(t, err)

	newStart := "9:30"
	updated, err := svc.UpdateShift(ctx, schedule.UpdateShiftRequest{ID: created.ID, StartTime: &newStart})

	require.NoError(t, err)
	assert.Equal(t, "09:30", updated.StartTime)
	assert.Equal(t, "17:00", updated.EndTime)
	assert.Equal(t, "Morning", updated.Name)
}

func TestCreateWorkSchedule_NoOverlap(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := authedContext(t)

	morning, err := svc.CreateShift(ctx, schedule.CreateShiftRequest{Name: "Morning", StartTime: "08:00", EndTime: "12:00"})
	require.NoError(t, err)
	afternoon, err := svc.CreateShift(ctx, schedule.CreateShiftRequest{Name: "Afternoon", StartTime: "13:00", EndTime: "17:00"})
	require.NoError(t, err)

	_, err = svc.CreateWorkSchedule(ctx, schedule.CreateWorkScheduleRequest{
		EmployeeID: "employee-1", ShiftID: morning.ID, WorkDate: "2024-07-26",
	})
	require.NoError(t, err)

	resp, err := svc.CreateWorkSchedule(ctx, schedule.CreateWorkScheduleRequest{
		EmployeeID: "employee-1", ShiftID: afternoon.ID, WorkDate: "2024-07-26",
	})
	require.NoError(t, err)
	assert.False(t, resp.OverlapWarning)
	assert.Equal(t, "Afternoon", resp.ShiftName)
	assert.Equal(t, "2024-07-26", resp.WorkDate)
}

func TestCreateWorkSchedule_OverlapIsWarningNotRejection(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := authedContext(t)

	day, err := svc.CreateShift(ctx, schedule.CreateShiftRequest{Name: "Day", StartTime: "08:00", EndTime: "16:00"})
	require.NoError(t, err)
	late, err := svc.CreateShift(ctx, schedule.CreateShiftRequest{Name: "Late", StartTime: "15:00", EndTime: "23:00"})
	require.NoError(t, err)

	_, err = svc.CreateWorkSchedule(ctx, schedule.CreateWorkScheduleRequest{
		EmployeeID: "employee-1", ShiftID: day.ID, WorkDate: "2024-07-26",
	})
	require.NoError(t, err)

	resp, err := svc.CreateWorkSchedule(ctx, schedule.CreateWorkScheduleRequest{
		EmployeeID: "employee-1", ShiftID: late.ID, WorkDate: "2024-07-26",
	})
	require.NoError(t, err)
	assert.True(t, resp.OverlapWarning)
}

func TestCreateWorkSchedule_TouchingShiftsDoNotWarn(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := authedContext(t)

	first, err := svc.CreateShift(ctx, schedule.CreateShiftRequest{Name: "First", StartTime: "08:00", EndTime: "12:00"})
	require.NoError(t, err)
	second, err := svc.CreateShift(ctx, schedule.CreateShiftRequest{Name: "Second", StartTime: "12:00", EndTime: "16:00"})
	require.NoError(t, err)

	_, err = svc.CreateWorkSchedule(ctx, schedule.CreateWorkScheduleRequest{
		EmployeeID: "employee-1", ShiftID: first.ID, WorkDate: "2024-07-26",
	})
	require.NoError(t, err)

	resp, err := svc.CreateWorkSchedule(ctx, schedule.CreateWorkScheduleRequest{
		EmployeeID: "employee-1", ShiftID: second.ID, WorkDate: "2024-07-26",
	})
	require.NoError(t, err)
	assert.False(t, resp.OverlapWarning)
}

func TestCreateWorkSchedule_UnknownShift(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.CreateWorkSchedule(authedContext(t), schedule.CreateWorkScheduleRequest{
		EmployeeID: "employee-1", ShiftID: "missing", WorkDate: "2024-07-26",
	})

	assert.ErrorIs(t, err, schedule.ErrShiftNotFound)
}
