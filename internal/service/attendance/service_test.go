package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngokanh/hrm-backend-go/internal/domain/attendance"
	"github.com/ngokanh/hrm-backend-go/internal/domain/schedule"
	"github.com/ngokanh/hrm-backend-go/internal/pkg/timewindow"
)

const (
	testCompanyID  = "company-1"
	testEmployeeID = "employee-1"
)

type fakeWorkScheduleRepo struct {
	schedules map[string]schedule.WorkSchedule
}

func (f *fakeWorkScheduleRepo) Create(_ context.Context, ws schedule.WorkSchedule) (schedule.WorkSchedule, error) {
	f.schedules[ws.ID] = ws
	return ws, nil
}

func (f *fakeWorkScheduleRepo) GetByID(_ context.Context, id, companyID string) (schedule.WorkSchedule, error) {
	ws, ok := f.schedules[id]
	if !ok || ws.CompanyID != companyID {
		return schedule.WorkSchedule{}, schedule.ErrWorkScheduleNotFound
	}
	return ws, nil
}

func (f *fakeWorkScheduleRepo) ListByEmployeeAndDate(_ context.Context, employeeID string, date time.Time, companyID string) ([]schedule.WorkSchedule, error) {
	var out []schedule.WorkSchedule
	for _, ws := range f.schedules {
		if ws.EmployeeID == employeeID && ws.CompanyID == companyID && ws.WorkDate.Equal(date) {
			out = append(out, ws)
		}
	}
	// Repository contract: ordered by shift start time ascending.
	for i := range out {
		for j := i + 1; j < len(out); j++ {
			if out[j].StartTime < out[i].StartTime {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (f *fakeWorkScheduleRepo) List(_ context.Context, _ schedule.WorkScheduleFilter, _ string) ([]schedule.WorkSchedule, int64, error) {
	return nil, 0, nil
}

func (f *fakeWorkScheduleRepo) Delete(_ context.Context, id, _ string) error {
	delete(f.schedules, id)
	return nil
}

type fakeAttendanceRepo struct {
	// keyed by work schedule ID; at most one record per schedule
	records map[string]attendance.Attendance
}

func (f *fakeAttendanceRepo) Create(_ context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	f.records[att.WorkScheduleID] = att
	return att, nil
}

func (f *fakeAttendanceRepo) GetByWorkScheduleID(_ context.Context, workScheduleID, companyID string) (*attendance.Attendance, error) {
	att, ok := f.records[workScheduleID]
	if !ok || att.CompanyID != companyID {
		return nil, nil
	}
	return &att, nil
}

func (f *fakeAttendanceRepo) GetByWorkScheduleIDs(_ context.Context, workScheduleIDs []string, companyID string) (map[string]attendance.Attendance, error) {
	out := make(map[string]attendance.Attendance)
	for _, id := range workScheduleIDs {
		if att, ok := f.records[id]; ok && att.CompanyID == companyID {
			out[id] = att
		}
	}
	return out, nil
}

func (f *fakeAttendanceRepo) Update(_ context.Context, att attendance.Attendance) error {
	if _, ok := f.records[att.WorkScheduleID]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	f.records[att.WorkScheduleID] = att
	return nil
}

func (f *fakeAttendanceRepo) List(_ context.Context, filter attendance.AttendanceFilter, companyID string) ([]attendance.Attendance, int64, error) {
	var out []attendance.Attendance
	for _, att := range f.records {
		if att.CompanyID == companyID {
			out = append(out, att)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeAttendanceRepo) ListOpenSessions(_ context.Context) ([]attendance.OpenSession, error) {
	return nil, nil
}

type fixture struct {
	svc            *AttendanceServiceImpl
	workSchedules  *fakeWorkScheduleRepo
	attendanceRepo *fakeAttendanceRepo
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	wsRepo := &fakeWorkScheduleRepo{schedules: make(map[string]schedule.WorkSchedule)}
	attRepo := &fakeAttendanceRepo{records: make(map[string]attendance.Attendance)}
	evaluator := timewindow.NewEvaluator(timewindow.DefaultPolicy(), time.UTC)

	svc := NewAttendanceService(nil, attRepo, wsRepo, evaluator).(*AttendanceServiceImpl)
	svc.clock = func() time.Time { return now }
	svc.runTx = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

	return &fixture{svc: svc, workSchedules: wsRepo, attendanceRepo: attRepo}
}

func (f *fixture) addSchedule(id, startTime, endTime string) {
	f.workSchedules.schedules[id] = schedule.WorkSchedule{
		ID:         id,
		CompanyID:  testCompanyID,
		EmployeeID: testEmployeeID,
		ShiftID:    "shift-" + id,
		ShiftName:  "Shift " + id,
		WorkDate:   time.Date(2024, 7, 26, 0, 0, 0, 0, time.UTC),
		StartTime:  startTime,
		EndTime:    endTime,
	}
}

func authedContext(t *testing.T) context.Context {
	t.Helper()

	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"employee_id": testEmployeeID,
		"company_id":  testCompanyID,
	})
	require.NoError(t, err)

	return jwtauth.NewContext(context.Background(), token, nil)
}

func instant(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02T15:04:05", value, time.UTC)
	require.NoError(t, err)
	return parsed
}

func TestCheckIn_TooEarly(t *testing.T) {
	f := newFixture(t, instant(t, "2024-07-26T07:29:00"))
	f.addSchedule("ws-1", "08:00", "17:00")

	_, err := f.svc.CheckIn(authedContext(t), attendance.CheckInRequest{WorkScheduleID: "ws-1"})

	assert.ErrorIs(t, err, attendance.ErrTooEarlyToCheckIn)
}

func TestCheckIn_AtGraceBoundary(t *testing.T) {
	f := newFixture(t, instant(t, "2024-07-26T07:30:00"))
	f.addSchedule("ws-1", "08:00", "17:00")

	resp, err := f.svc.CheckIn(authedContext(t), attendance.CheckInRequest{WorkScheduleID: "ws-1"})

	require.NoError(t, err)
	assert.Equal(t, attendance.StatusCheckedIn, resp.Status)
	assert.Equal(t, "ws-1", resp.WorkScheduleID)
	require.NotNil(t, resp.CheckIn)
	assert.Equal(t, "2024-07-26T07:30:00Z", *resp.CheckIn)
	assert.Nil(t, resp.CheckOut)
}

func TestCheckIn_AfterShiftEnd(t *testing.T) {
	f := newFixture(t, instant(t, "2024-07-26T17:00:00"))
	f.addSchedule("ws-1", "08:00", "17:00")

	_, err := f.svc.CheckIn(authedContext(t), attendance.CheckInRequest{WorkScheduleID: "ws-1"})

	assert.ErrorIs(t, err, attendance.ErrShiftAlreadyEnded)
}

func TestCheckIn_AlreadyCheckedIn(t *testing.T) {
	f := newFixture(t, instant(t, "2024-07-26T09:00:00"))
	f.addSchedule("ws-1", "08:00", "17:00")

	ctx := authedContext(t)
	_, err := f.svc.CheckIn(ctx, attendance.CheckInRequest{WorkScheduleID: "ws-1"})
	require.NoError(t, err)

	_, err = f.svc.CheckIn(ctx, attendance.CheckInRequest{WorkScheduleID: "ws-1"})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestCheckIn_ScheduleBelongsToOtherEmployee(t *testing.T) {
	f := newFixture(t, instant(t, "2024-07-26T09:00:00"))
	f.addSchedule("ws-1", "08:00", "17:00")
	ws := f.workSchedules.schedules["ws-1"]
	ws.EmployeeID = "someone-else"
	f.workSchedules.schedules["ws-1"] = ws

	_, err := f.svc.CheckIn(authedContext(t), attendance.CheckInRequest{WorkScheduleID: "ws-1"})

	assert.ErrorIs(t, err, schedule.ErrWorkScheduleNotFound)
}

func TestCheckIn_BlockedByOpenPreviousShift(t *testing.T) {
	// Morning shift checked in and never closed; its checkout grace runs to
	// 18:00, so at 13:05 the afternoon shift is still blocked.
	f := newFixture(t, instant(t, "2024-07-26T13:05:00"))
	f.addSchedule("ws-morning", "08:00", "12:00")
	f.addSchedule("ws-afternoon", "13:00", "17:00")

	checkIn := instant(t, "2024-07-26T08:00:00")
	f.attendanceRepo.records["ws-morning"] = attendance.Attendance{
		ID:             "att-1",
		CompanyID:      testCompanyID,
		EmployeeID:     testEmployeeID,
		WorkScheduleID: "ws-morning",
		CheckIn:        &checkIn,
		Status:         attendance.StatusCheckedIn,
	}

	_, err := f.svc.CheckIn(authedContext(t), attendance.CheckInRequest{WorkScheduleID: "ws-afternoon"})

	assert.ErrorIs(t, err, attendance.ErrPreviousShiftUnfinished)
}

func TestCheckIn_LapsedPreviousShiftDoesNotBlock(t *testing.T) {
	// Morning shift's checkout grace lapsed at 18:00; at 19:00 the evening
	// shift opens normally and the stale record is the auto-close job's
	// problem.
	f := newFixture(t, instant(t, "2024-07-26T19:00:00"))
	f.addSchedule("ws-morning", "08:00", "12:00")
	f.addSchedule("ws-evening", "18:30", "22:00")

	checkIn := instant(t, "2024-07-26T08:00:00")
	f.attendanceRepo.records["ws-morning"] = attendance.Attendance{
		ID:             "att-1",
		CompanyID:      testCompanyID,
		EmployeeID:     testEmployeeID,
		WorkScheduleID: "ws-morning",
		CheckIn:        &checkIn,
		Status:         attendance.StatusCheckedIn,
	}

	resp, err := f.svc.CheckIn(authedContext(t), attendance.CheckInRequest{WorkScheduleID: "ws-evening"})

	require.NoError(t, err)
	assert.Equal(t, attendance.StatusCheckedIn, resp.Status)
}

func TestCheckOut_Success(t *testing.T) {
	f := newFixture(t, instant(t, "2024-07-26T09:00:00"))
	f.addSchedule("ws-1", "08:00", "17:00")

	ctx := authedContext(t)
	_, err := f.svc.CheckIn(ctx, attendance.CheckInRequest{WorkScheduleID: "ws-1"})
	require.NoError(t, err)

	f.svc.clock = func() time.Time { return instant(t, "2024-07-26T17:10:00") }
	resp, err := f.svc.CheckOut(ctx, attendance.CheckOutRequest{WorkScheduleID: "ws-1"})

	require.NoError(t, err)
	assert.Equal(t, attendance.StatusCompleted, resp.Status)
	require.NotNil(t, resp.CheckOut)
	assert.Equal(t, "2024-07-26T17:10:00Z", *resp.CheckOut)
}

func TestCheckOut_NotCheckedIn(t *testing.T) {
	f := newFixture(t, instant(t, "2024-07-26T09:00:00"))
	f.addSchedule("ws-1", "08:00", "17:00")

	_, err := f.svc.CheckOut(authedContext(t), attendance.CheckOutRequest{WorkScheduleID: "ws-1"})

	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestCheckOut_AlreadyCheckedOut(t *testing.T) {
	f := newFixture(t, instant(t, "2024-07-26T17:10:00"))
	f.addSchedule("ws-1", "08:00", "17:00")

	checkIn := instant(t, "2024-07-26T08:00:00")
	checkOut := instant(t, "2024-07-26T17:05:00")
	f.attendanceRepo.records["ws-1"] = attendance.Attendance{
		ID:             "att-1",
		CompanyID:      testCompanyID,
		EmployeeID:     testEmployeeID,
		WorkScheduleID: "ws-1",
		CheckIn:        &checkIn,
		CheckOut:       &checkOut,
		Status:         attendance.StatusCompleted,
	}

	_, err := f.svc.CheckOut(authedContext(t), attendance.CheckOutRequest{WorkScheduleID: "ws-1"})

	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
}

func TestCheckOut_GraceWindowClosed(t *testing.T) {
	// 17:00 end + 6h grace = 23:00 inclusive; one second past is denied.
	f := newFixture(t, instant(t, "2024-07-26T23:00:01"))
	f.addSchedule("ws-1", "08:00", "17:00")

	checkIn := instant(t, "2024-07-26T08:00:00")
	f.attendanceRepo.records["ws-1"] = attendance.Attendance{
		ID:             "att-1",
		CompanyID:      testCompanyID,
		EmployeeID:     testEmployeeID,
		WorkScheduleID: "ws-1",
		CheckIn:        &checkIn,
		Status:         attendance.StatusCheckedIn,
	}

	_, err := f.svc.CheckOut(authedContext(t), attendance.CheckOutRequest{WorkScheduleID: "ws-1"})

	assert.ErrorIs(t, err, attendance.ErrCheckoutWindowClosed)
}

func TestCheckOut_AtGraceBoundary(t *testing.T) {
	f := newFixture(t, instant(t, "2024-07-26T23:00:00"))
	f.addSchedule("ws-1", "08:00", "17:00")

	checkIn := instant(t, "2024-07-26T08:00:00")
	f.attendanceRepo.records["ws-1"] = attendance.Attendance{
		ID:             "att-1",
		CompanyID:      testCompanyID,
		EmployeeID:     testEmployeeID,
		WorkScheduleID: "ws-1",
		CheckIn:        &checkIn,
		Status:         attendance.StatusCheckedIn,
	}

	resp, err := f.svc.CheckOut(authedContext(t), attendance.CheckOutRequest{WorkScheduleID: "ws-1"})

	require.NoError(t, err)
	assert.Equal(t, attendance.StatusCompleted, resp.Status)
}

func TestMyDay_ComposesEligibility(t *testing.T) {
	// 13:05: morning shift open (check-out allowed), afternoon shift blocked
	// by the unfinished morning shift.
	f := newFixture(t, instant(t, "2024-07-26T13:05:00"))
	f.addSchedule("ws-morning", "08:00", "12:00")
	f.addSchedule("ws-afternoon", "13:00", "17:00")

	checkIn := instant(t, "2024-07-26T08:00:00")
	f.attendanceRepo.records["ws-morning"] = attendance.Attendance{
		ID:             "att-1",
		CompanyID:      testCompanyID,
		EmployeeID:     testEmployeeID,
		WorkScheduleID: "ws-morning",
		CheckIn:        &checkIn,
		Status:         attendance.StatusCheckedIn,
	}

	resp, err := f.svc.MyDay(authedContext(t), "2024-07-26")

	require.NoError(t, err)
	assert.Equal(t, "2024-07-26", resp.Date)
	require.Len(t, resp.Schedules, 2)

	morning := resp.Schedules[0]
	assert.Equal(t, "ws-morning", morning.WorkScheduleID)
	assert.False(t, morning.CanCheckIn)
	assert.True(t, morning.CanCheckOut)
	assert.True(t, morning.PastEnd)
	require.NotNil(t, morning.Status)
	assert.Equal(t, attendance.StatusCheckedIn, *morning.Status)

	afternoon := resp.Schedules[1]
	assert.Equal(t, "ws-afternoon", afternoon.WorkScheduleID)
	assert.False(t, afternoon.CanCheckIn)
	assert.True(t, afternoon.BlockedByPrevious)
	assert.NotEmpty(t, afternoon.CheckInReason)
	assert.False(t, afternoon.CanCheckOut)
	assert.Nil(t, afternoon.Status)
	assert.False(t, afternoon.OverlapWarning)
}

func TestMyDay_OverlapWarning(t *testing.T) {
	f := newFixture(t, instant(t, "2024-07-26T09:00:00"))
	f.addSchedule("ws-a", "08:00", "16:00")
	f.addSchedule("ws-b", "15:00", "23:00")

	resp, err := f.svc.MyDay(authedContext(t), "2024-07-26")

	require.NoError(t, err)
	require.Len(t, resp.Schedules, 2)
	assert.True(t, resp.Schedules[0].OverlapWarning)
	assert.True(t, resp.Schedules[1].OverlapWarning)
}

func TestMyDay_DefaultsToToday(t *testing.T) {
	f := newFixture(t, instant(t, "2024-07-26T09:00:00"))
	f.addSchedule("ws-1", "08:00", "17:00")

	resp, err := f.svc.MyDay(authedContext(t), "")

	require.NoError(t, err)
	assert.Equal(t, "2024-07-26", resp.Date)
	require.Len(t, resp.Schedules, 1)
	assert.True(t, resp.Schedules[0].CanCheckIn)
}

func TestMyDay_InvalidDate(t *testing.T) {
	f := newFixture(t, instant(t, "2024-07-26T09:00:00"))

	_, err := f.svc.MyDay(authedContext(t), "26-07-2024")

	assert.ErrorIs(t, err, schedule.ErrInvalidDateFormat)
}

func TestList_ReturnsCompanyRecords(t *testing.T) {
	f := newFixture(t, instant(t, "2024-07-26T09:00:00"))
	f.addSchedule("ws-1", "08:00", "17:00")

	ctx := authedContext(t)
	_, err := f.svc.CheckIn(ctx, attendance.CheckInRequest{WorkScheduleID: "ws-1"})
	require.NoError(t, err)

	resp, err := f.svc.List(ctx, attendance.AttendanceFilter{})

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.TotalCount)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.Limit)
	require.Len(t, resp.Attendances, 1)
	assert.Equal(t, attendance.StatusCheckedIn, resp.Attendances[0].Status)
}
