// Package schedule resolves which of a screen's schedules is authoritative
// at a given instant. Everything here is pure: callers inject "now" so the
// player can be driven deterministically in tests.
package schedule

import (
	"time"

	"github.com/Nixie-Tech-LLC/stheno/internal/model"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Resolve returns the single schedule governing the screen at now, or nil
// when no schedule is active (the baseline playlist applies).
//
// Ties between simultaneously active schedules break on highest priority,
// then most recent created_at, then lowest id. The rule is deterministic on
// purpose: two players resolving the same data at the same instant must
// agree.
func Resolve(now time.Time, schedules []model.Schedule) *model.Schedule {
	var winner *model.Schedule
	for i := range schedules {
		s := &schedules[i]
		if !ActiveAt(now, s) {
			continue
		}
		if winner == nil || beats(s, winner) {
			winner = s
		}
	}
	return winner
}

func beats(a, b *model.Schedule) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

// ActiveAt reports whether a single schedule matches now: the kill-switch,
// the outer validity bounds, the recurrence rule, and the time-of-day window
// all have to pass. Misconfigured schedules (unparseable times, start >= end,
// month_day past the end of the month) simply do not match.
func ActiveAt(now time.Time, s *model.Schedule) bool {
	if !s.Active {
		return false
	}
	if !DateInRange(s.ValidityStart, s.ValidityEnd, now) {
		return false
	}
	if !recurrenceMatches(now, s) {
		return false
	}
	if s.AllDay {
		return true
	}
	return TimeOfDayMatches(s.StartTime, s.EndTime, now)
}

func recurrenceMatches(now time.Time, s *model.Schedule) bool {
	switch s.RepeatType {
	case model.RepeatDaily:
		return true
	case model.RepeatWeekly:
		return DayMatches(s.Days, now)
	case model.RepeatMonthly:
		// no clamping: month_day 31 never matches a 30-day month
		return now.Day() == s.MonthDay
	case model.RepeatOnce:
		if s.SpecificDate == nil {
			return false
		}
		return now.Format(dateLayout) == *s.SpecificDate
	default:
		return false
	}
}

// DayMatches reports whether now's weekday is in days (0=Sunday..6=Saturday).
func DayMatches(days []int, now time.Time) bool {
	wd := int(now.Weekday())
	for _, d := range days {
		if d == wd {
			return true
		}
	}
	return false
}

// DateInRange checks optional YYYY-MM-DD bounds, inclusive on both ends.
// An unparseable bound never matches: a typo in validity dates deactivates
// the schedule rather than widening it.
func DateInRange(from, to *string, now time.Time) bool {
	day := now.Format(dateLayout)
	if from != nil && *from != "" {
		if _, err := time.Parse(dateLayout, *from); err != nil {
			return false
		}
		if day < *from {
			return false
		}
	}
	if to != nil && *to != "" {
		if _, err := time.Parse(dateLayout, *to); err != nil {
			return false
		}
		if day > *to {
			return false
		}
	}
	return true
}

// TimeOfDayMatches evaluates the half-open HH:MM window [start, end) against
// now. start == end and start > end never match; overnight windows are an
// unresolved product question and must stay inactive instead of guessing
// wraparound intent.
func TimeOfDayMatches(start, end string, now time.Time) bool {
	startMin, ok := minuteOfDay(start)
	if !ok {
		return false
	}
	endMin, ok := minuteOfDay(end)
	if !ok {
		return false
	}
	if startMin >= endMin {
		return false
	}
	nowMin := now.Hour()*60 + now.Minute()
	return nowMin >= startMin && nowMin < endMin
}

func minuteOfDay(hhmm string) (int, bool) {
	t, err := time.Parse(timeLayout, hhmm)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
