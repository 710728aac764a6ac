package timewindow

import "time"

// LocalRange is the concrete start/end instant pair for one shift occurrence
// on one calendar date, with overnight rollover already applied. It is built
// fresh for every evaluation and never cached.
type LocalRange struct {
	Start time.Time
	End   time.Time
}

// ComputeLocalRange resolves a work date and a shift's start/end times into
// local instants. It returns nil if any input is missing or unparseable:
// callers must treat a nil range as insufficient data and fail open, because
// this engine is advisory and the server remains the authoritative gate.
func ComputeLocalRange(workDate, startTime, endTime string, loc *time.Location) *LocalRange {
	date, err := ParseWorkDate(workDate)
	if err != nil {
		return nil
	}
	start, err := ParseTimeOfDay(startTime)
	if err != nil {
		return nil
	}
	end, err := ParseTimeOfDay(endTime)
	if err != nil {
		return nil
	}
	r := RangeOn(date, start, end, loc)
	return &r
}

// RangeOn builds the shift range for callers that already hold parsed values.
// An end at or before the start signals an overnight shift and rolls the end
// forward by exactly 24 hours.
func RangeOn(date time.Time, start, end TimeOfDay, loc *time.Location) LocalRange {
	if loc == nil {
		loc = time.Local
	}

	s := time.Date(date.Year(), date.Month(), date.Day(), start.Hour, start.Minute, 0, 0, loc)
	e := time.Date(date.Year(), date.Month(), date.Day(), end.Hour, end.Minute, 0, 0, loc)
	if !e.After(s) {
		e = e.Add(24 * time.Hour)
	}

	return LocalRange{Start: s, End: e}
}

// Overlaps reports whether two ranges intersect. Ranges are half-open, so
// touching endpoints do not count as overlapping.
func (r LocalRange) Overlaps(other LocalRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// ShiftsOverlap reports whether two shifts on the same work date intersect.
// Returns false when either shift cannot be resolved into a range.
func ShiftsOverlap(workDate, startA, endA, startB, endB string, loc *time.Location) bool {
	a := ComputeLocalRange(workDate, startA, endA, loc)
	b := ComputeLocalRange(workDate, startB, endB, loc)
	if a == nil || b == nil {
		return false
	}
	return a.Overlaps(*b)
}
