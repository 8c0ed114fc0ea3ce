package rota

import (
	"time"
)

// =============================================================================
// TIME POINT - Naive local calendar day (the engine has no time zones)
// =============================================================================

// TimePoint is a calendar day. All engine arithmetic is naive local-day
// arithmetic; DST and zones are out of scope.
type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DayOf(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return tp.Before(other) || tp.Equal(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return tp.After(other) || tp.Equal(other) }

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint   { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }
func (tp TimePoint) AddMonths(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, n, 0)} }
func (tp TimePoint) AddYears(n int) TimePoint  { return TimePoint{Time: tp.Time.AddDate(n, 0, 0)} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

func (tp TimePoint) String() string { return tp.normalize().Format("2006-01-02") }

// WeekStart returns the Monday of the week containing tp.
// Biweekly parity is anchored on Monday week starts.
func (tp TimePoint) WeekStart() TimePoint {
	offset := (int(tp.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return tp.AddDays(-offset)
}

// WeekOfMonth returns ceil(day-of-month / 7): 1 for days 1-7, 2 for 8-14, etc.
func (tp TimePoint) WeekOfMonth() int {
	return (tp.Day()-1)/7 + 1
}

// At combines the day with a minute-of-day into a naive local timestamp.
func (tp TimePoint) At(m MinuteOfDay) time.Time {
	return time.Date(tp.Year(), tp.Month(), tp.Day(), m.Hour(), m.Minute(), 0, 0, time.UTC)
}

func DaysBetween(from, to TimePoint) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

func WeeksBetween(from, to TimePoint) int {
	return DaysBetween(from, to) / 7
}

func StartOfMonth(year int, month time.Month) TimePoint { return NewTimePoint(year, month, 1) }
func EndOfMonth(year int, month time.Month) TimePoint {
	t := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return TimePoint{Time: t}
}

// =============================================================================
// MINUTE OF DAY - Time-of-day for shift boundaries
// =============================================================================

// MinuteOfDay is minutes since local midnight (0..1439).
type MinuteOfDay int

func NewMinuteOfDay(hour, minute int) MinuteOfDay { return MinuteOfDay(hour*60 + minute) }

func (m MinuteOfDay) Hour() int   { return int(m) / 60 }
func (m MinuteOfDay) Minute() int { return int(m) % 60 }

func (m MinuteOfDay) Valid() bool { return m >= 0 && m < 24*60 }

// =============================================================================
// WINDOW - Closed day range for a resolution pass
// =============================================================================

// Window is a closed [From, To] day range.
type Window struct {
	From TimePoint
	To   TimePoint
}

func (w Window) Contains(t TimePoint) bool {
	return t.AfterOrEqual(w.From) && t.BeforeOrEqual(w.To)
}

// Days returns every day in the window in order.
func (w Window) Days() []TimePoint {
	var days []TimePoint
	current := w.From
	for current.BeforeOrEqual(w.To) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

// Clip intersects two windows; ok is false when they are disjoint.
func (w Window) Clip(other Window) (Window, bool) {
	from := w.From
	if other.From.After(from) {
		from = other.From
	}
	to := w.To
	if other.To.Before(to) {
		to = other.To
	}
	if from.After(to) {
		return Window{}, false
	}
	return Window{From: from, To: to}, true
}

func (w Window) String() string { return "[" + w.From.String() + ", " + w.To.String() + "]" }
