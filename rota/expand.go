/*
expand.go - Recurrence expansion and exception application

PURPOSE:
  Turns one RecurrencePattern into concrete (date, start, end) occurrences
  over a closed window, then drops any date the scheduler has explicitly
  deleted for that pattern.

INTERVAL RULES:
  daily:    every day in the validity window.
  weekly:   weekday must be in the pattern's weekday set.
  biweekly: weekly rule AND the Monday-anchored week distance between the
            day's week start and the pattern start date's week start is
            even. Parity is pinned per-pattern, never to a shared epoch,
            so two patterns starting a week apart never share a week.
  monthly:  weekly rule AND the day falls in the same week-of-month
            (ceil(day/7)) as the pattern's start date.
  one_off:  fires on the distinct weekdays spanned by the pattern's own
            [start, end] range; the window is exactly that range.

An empty weekday set yields no occurrences for weekly/biweekly/monthly.
Time-of-day combines with the date as a naive local timestamp.
*/
package rota

import (
	"time"
)

// Occurrence is one concrete firing of a pattern on a specific date.
type Occurrence struct {
	Pattern *RecurrencePattern
	Date    TimePoint
	Start   time.Time
	End     time.Time
}

// Expand returns every occurrence of the pattern within the closed
// window, in date order. The pattern must have passed Validate; Expand
// itself never fails, it just yields nothing for out-of-range input.
func Expand(p *RecurrencePattern, window Window) []Occurrence {
	var out []Occurrence
	for _, day := range window.Days() {
		if !firesOn(p, day) {
			continue
		}
		out = append(out, Occurrence{
			Pattern: p,
			Date:    day,
			Start:   day.At(p.StartTime),
			End:     day.At(p.EndTime),
		})
	}
	return out
}

// ExpandWithExceptions expands the pattern and drops dates present in
// the exception set (keyed by TimePoint.String()).
func ExpandWithExceptions(p *RecurrencePattern, window Window, deleted map[string]bool) []Occurrence {
	occurrences := Expand(p, window)
	if len(deleted) == 0 {
		return occurrences
	}
	kept := occurrences[:0]
	for _, occ := range occurrences {
		if deleted[occ.Date.String()] {
			continue
		}
		kept = append(kept, occ)
	}
	return kept
}

// firesOn applies the validity window and the interval rule for one day.
func firesOn(p *RecurrencePattern, day TimePoint) bool {
	if day.Before(p.StartDate) {
		return false
	}
	if p.EndDate != nil && day.After(*p.EndDate) {
		return false
	}

	switch p.Interval {
	case IntervalDaily:
		return true

	case IntervalWeekly:
		return p.hasWeekday(day.Weekday())

	case IntervalBiweekly:
		if !p.hasWeekday(day.Weekday()) {
			return false
		}
		// Parity is anchored to the pattern's own start week.
		weeks := WeeksBetween(p.StartDate.WeekStart(), day.WeekStart())
		return weeks%2 == 0

	case IntervalMonthly:
		if !p.hasWeekday(day.Weekday()) {
			return false
		}
		return day.WeekOfMonth() == p.StartDate.WeekOfMonth()

	case IntervalOneOff:
		// The one-off range IS the validity window; fire on each weekday
		// the range spans.
		return spansWeekday(p.StartDate, *p.EndDate, day.Weekday())

	default:
		return false
	}
}

// spansWeekday reports whether [from, to] contains at least one day with
// the given weekday.
func spansWeekday(from, to TimePoint, wd time.Weekday) bool {
	if DaysBetween(from, to) >= 6 {
		return true
	}
	current := from
	for current.BeforeOrEqual(to) {
		if current.Weekday() == wd {
			return true
		}
		current = current.AddDays(1)
	}
	return false
}
