package timewindow

import (
	"sort"
	"time"
)

// Reason texts returned on denied evaluations. These are rendered to the
// employee as-is, so keep them sentence fragments.
const (
	ReasonTooEarly             = "too early to check in"
	ReasonPastShiftEnd         = "shift has already ended"
	ReasonCheckoutWindowClosed = "exceeded checkout grace period after shift end"
)

// Policy holds the grace periods shared with the mobile/web clients. The
// values must match on both sides; they are loaded from configuration once
// rather than passed as literals at call sites.
type Policy struct {
	CheckInGraceMinutes int
	CheckOutGraceHours  int
}

// DefaultPolicy returns the production policy values.
func DefaultPolicy() Policy {
	return Policy{
		CheckInGraceMinutes: 30,
		CheckOutGraceHours:  6,
	}
}

// WindowState is the result of one evaluator call. Reason is empty when the
// action is allowed. Denials are values, never errors: the caller renders the
// reason inline instead of branching on an error type.
type WindowState struct {
	Allowed bool
	Reason  string
}

// DayShift is the engine's view of one work schedule on a day.
type DayShift struct {
	ID        string
	WorkDate  string
	StartTime string
	EndTime   string
}

// Mark is the engine's view of one attendance record.
type Mark struct {
	CheckIn    *time.Time
	CheckOut   *time.Time
	AutoClosed bool
}

// Open reports whether the mark is an in-progress shift: checked in, not
// checked out, not force-closed by the system.
func (m Mark) Open() bool {
	return m.CheckIn != nil && m.CheckOut == nil && !m.AutoClosed
}

// Evaluator applies a grace policy to shift ranges in a fixed location. It is
// pure and safe for concurrent use; every method takes the evaluation instant
// explicitly so decisions are deterministic under test.
type Evaluator struct {
	policy Policy
	loc    *time.Location
}

// NewEvaluator creates an evaluator. A nil location falls back to time.Local.
func NewEvaluator(policy Policy, loc *time.Location) *Evaluator {
	if loc == nil {
		loc = time.Local
	}
	return &Evaluator{policy: policy, loc: loc}
}

// Policy returns the grace policy the evaluator was built with.
func (e *Evaluator) Policy() Policy {
	return e.policy
}

// Location returns the location shift times are interpreted in.
func (e *Evaluator) Location() *time.Location {
	return e.loc
}

// Range resolves a shift occurrence into instants, nil on unparseable input.
func (e *Evaluator) Range(workDate, startTime, endTime string) *LocalRange {
	return ComputeLocalRange(workDate, startTime, endTime, e.loc)
}

// ShiftsOverlap reports whether two shifts on the same work date intersect in
// the evaluator's location.
func (e *Evaluator) ShiftsOverlap(workDate, startA, endA, startB, endB string) bool {
	return ShiftsOverlap(workDate, startA, endA, startB, endB, e.loc)
}

// CheckInWindowState decides whether check-in is currently permitted. The
// window is [start - grace, end). Unresolvable shifts fail open.
func (e *Evaluator) CheckInWindowState(now time.Time, workDate, startTime, endTime string) WindowState {
	r := e.Range(workDate, startTime, endTime)
	if r == nil {
		return WindowState{Allowed: true}
	}

	windowStart := r.Start.Add(-time.Duration(e.policy.CheckInGraceMinutes) * time.Minute)
	switch {
	case now.Before(windowStart):
		return WindowState{Reason: ReasonTooEarly}
	case !now.Before(r.End):
		return WindowState{Reason: ReasonPastShiftEnd}
	default:
		return WindowState{Allowed: true}
	}
}

// IsWithinCheckInWindow is the boolean companion of CheckInWindowState and is
// derived from the same computation, so the two can never disagree.
func (e *Evaluator) IsWithinCheckInWindow(now time.Time, workDate, startTime, endTime string) bool {
	return e.CheckInWindowState(now, workDate, startTime, endTime).Allowed
}

// CheckOutDelayState decides whether check-out is still permitted. Check-out
// stays open through end + grace inclusive; past that the shift is lapsed and
// belongs to the auto-close job. Unresolvable shifts fail open.
func (e *Evaluator) CheckOutDelayState(now time.Time, workDate, startTime, endTime string) WindowState {
	r := e.Range(workDate, startTime, endTime)
	if r == nil {
		return WindowState{Allowed: true}
	}

	maxCheckout := r.End.Add(time.Duration(e.policy.CheckOutGraceHours) * time.Hour)
	if now.After(maxCheckout) {
		return WindowState{Reason: ReasonCheckoutWindowClosed}
	}
	return WindowState{Allowed: true}
}

// IsAfterMaxCheckoutDelay is the boolean companion of CheckOutDelayState.
func (e *Evaluator) IsAfterMaxCheckoutDelay(now time.Time, workDate, startTime, endTime string) bool {
	return !e.CheckOutDelayState(now, workDate, startTime, endTime).Allowed
}

// IsAfterEnd reports whether now is at or past the shift end, ignoring any
// grace period. Used for labeling only, never for gating.
func (e *Evaluator) IsAfterEnd(now time.Time, workDate, startTime, endTime string) bool {
	r := e.Range(workDate, startTime, endTime)
	if r == nil {
		return false
	}
	return !now.Before(r.End)
}

// HasUnfinishedPrevious reports whether an earlier shift on the same day is
// still legitimately in progress, in which case check-in on the current shift
// must be blocked. A predecessor counts only while it is open AND its own
// check-out grace window has not lapsed; once lapsed it is treated as
// abandoned (the auto-close job will claim it) so the employee is not locked
// out of later shifts forever.
func (e *Evaluator) HasUnfinishedPrevious(now time.Time, shifts []DayShift, currentID string, marks map[string]Mark) bool {
	sorted := make([]DayShift, len(shifts))
	copy(sorted, shifts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return startSortKey(sorted[i].StartTime) < startSortKey(sorted[j].StartTime)
	})

	idx := -1
	for i, s := range sorted {
		if s.ID == currentID {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return false
	}

	for _, prev := range sorted[:idx] {
		mark, ok := marks[prev.ID]
		if !ok || !mark.Open() {
			continue
		}
		if e.CheckOutDelayState(now, prev.WorkDate, prev.StartTime, prev.EndTime).Allowed {
			return true
		}
	}
	return false
}

// startSortKey normalizes a start time to zero-padded "HH:mm" so the sort
// matches the chronological order schedule lists are displayed in. Raw input
// is kept as the key when it does not parse.
func startSortKey(startTime string) string {
	t, err := ParseTimeOfDay(startTime)
	if err != nil {
		return startTime
	}
	return t.String()
}
