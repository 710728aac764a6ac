package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ngokanh/hrm-backend-go/internal/domain/attendance"
	"github.com/ngokanh/hrm-backend-go/internal/pkg/timewindow"
)

type AttendanceJobs struct {
	attendanceRepo attendance.AttendanceRepository
	evaluator      *timewindow.Evaluator
}

func NewAttendanceJobs(
	attendanceRepo attendance.AttendanceRepository,
	evaluator *timewindow.Evaluator,
) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceRepo: attendanceRepo,
		evaluator:      evaluator,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("auto_close_lapsed_attendances", 1*time.Hour, j.AutoCloseLapsedAttendances)
}

// AutoCloseLapsedAttendances force-closes open check-ins whose checkout grace
// window has lapsed. The scheduled shift end is used as the checkout instant
// and the record is stamped auto_closed, which removes it from the
// unfinished-previous blocking set on the next evaluation.
func (j *AttendanceJobs) AutoCloseLapsedAttendances(ctx context.Context) error {
	now := time.Now()

	sessions, err := j.attendanceRepo.ListOpenSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list open sessions: %w", err)
	}

	if len(sessions) == 0 {
		return nil
	}

	closedCount := 0
	for _, session := range sessions {
		workDate := session.WorkDate.Format("2006-01-02")

		if !j.evaluator.IsAfterMaxCheckoutDelay(now, workDate, session.StartTime, session.EndTime) {
			continue
		}

		r := j.evaluator.Range(workDate, session.StartTime, session.EndTime)
		if r == nil {
			// Shift times failed to resolve; leave the record for manual review.
			slog.Warn("Cron: Skipping open session with unresolvable shift times",
				"attendance_id", session.ID,
				"work_schedule_id", session.WorkScheduleID)
			continue
		}

		checkOut := r.End.UTC()
		att := session.Attendance
		att.CheckOut = &checkOut
		att.Status = attendance.StatusAutoClosed
		note := "Auto-closed: no checkout recorded within the grace period after shift end."
		att.Note = &note

		if err := j.attendanceRepo.Update(ctx, att); err != nil {
			slog.Error("Cron: Failed to auto-close attendance",
				"attendance_id", session.ID,
				"employee_id", session.EmployeeID,
				"error", err)
			continue
		}

		closedCount++
	}

	if closedCount > 0 {
		slog.Info("Cron: Auto-closed lapsed attendances", "count", closedCount)
	}
	return nil
}
