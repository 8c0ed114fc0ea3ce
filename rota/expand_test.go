package rota_test

import (
	"testing"
	"time"

	"github.com/warp/rota-engine/rota"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) rota.TimePoint {
	return rota.NewTimePoint(year, month, day)
}

func window(from, to rota.TimePoint) rota.Window {
	return rota.Window{From: from, To: to}
}

func january2024() rota.Window {
	return window(date(2024, time.January, 1), date(2024, time.January, 31))
}

func endDate(tp rota.TimePoint) *rota.TimePoint { return &tp }

func weeklyPattern(id string, subject string, weekdays ...time.Weekday) rota.RecurrencePattern {
	return rota.RecurrencePattern{
		ID:        rota.PatternID(id),
		SubjectID: rota.SubjectID(subject),
		ClientID:  "client-1",
		Weekdays:  weekdays,
		StartTime: rota.NewMinuteOfDay(9, 0),
		EndTime:   rota.NewMinuteOfDay(17, 0),
		StartDate: date(2024, time.January, 1),
		Interval:  rota.IntervalWeekly,
	}
}

func occurrenceDates(occs []rota.Occurrence) []string {
	var out []string
	for _, o := range occs {
		out = append(out, o.Date.String())
	}
	return out
}

// =============================================================================
// WEEKLY EXPANSION
// =============================================================================

func TestExpand_Weekly_MondayWednesday_January2024(t *testing.T) {
	// GIVEN: Weekly pattern starting Monday 2024-01-01, weekdays {Mon, Wed},
	//        ending 2024-01-31
	// WHEN: Expanding over January 2024
	// THEN: Every Monday and Wednesday in range appears, in date order

	p := weeklyPattern("p1", "emp-1", time.Monday, time.Wednesday)
	p.EndDate = endDate(date(2024, time.January, 31))

	occs := rota.Expand(&p, january2024())

	want := []string{
		"2024-01-01", "2024-01-03",
		"2024-01-08", "2024-01-10",
		"2024-01-15", "2024-01-17",
		"2024-01-22", "2024-01-24",
		"2024-01-29", "2024-01-31",
	}
	got := occurrenceDates(occs)
	if len(got) != len(want) {
		t.Fatalf("expected %d occurrences, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("occurrence %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestExpand_Weekly_TimesCombineWithDate(t *testing.T) {
	p := weeklyPattern("p1", "emp-1", time.Monday)
	occs := rota.Expand(&p, window(date(2024, time.January, 1), date(2024, time.January, 1)))

	if len(occs) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(occs))
	}
	if occs[0].Start.Hour() != 9 || occs[0].End.Hour() != 17 {
		t.Errorf("expected 09:00-17:00, got %v-%v", occs[0].Start, occs[0].End)
	}
	if occs[0].Start.Day() != 1 {
		t.Errorf("start should land on the occurrence date, got %v", occs[0].Start)
	}
}

func TestExpand_Weekly_EmptyWeekdaySet_NoOccurrences(t *testing.T) {
	// GIVEN: Weekly pattern with an empty weekday set
	// WHEN: Expanding over a month
	// THEN: No occurrences

	p := weeklyPattern("p1", "emp-1")
	if got := rota.Expand(&p, january2024()); len(got) != 0 {
		t.Errorf("expected no occurrences, got %d", len(got))
	}
}

func TestExpand_ValidityWindow_Clipped(t *testing.T) {
	// GIVEN: Pattern valid Jan 10 - Jan 20
	// WHEN: Expanding over all of January
	// THEN: Only occurrences within the validity window appear

	p := weeklyPattern("p1", "emp-1", time.Monday)
	p.StartDate = date(2024, time.January, 10)
	p.EndDate = endDate(date(2024, time.January, 20))

	got := occurrenceDates(rota.Expand(&p, january2024()))
	if len(got) != 1 || got[0] != "2024-01-15" {
		t.Errorf("expected only 2024-01-15, got %v", got)
	}
}

// =============================================================================
// DAILY EXPANSION
// =============================================================================

func TestExpand_Daily_EveryDayInWindow(t *testing.T) {
	p := weeklyPattern("p1", "emp-1")
	p.Interval = rota.IntervalDaily

	occs := rota.Expand(&p, window(date(2024, time.January, 1), date(2024, time.January, 7)))
	if len(occs) != 7 {
		t.Errorf("expected 7 daily occurrences, got %d", len(occs))
	}
}

// =============================================================================
// BIWEEKLY EXPANSION
// =============================================================================

func TestExpand_Biweekly_AlternatingWeeks(t *testing.T) {
	// GIVEN: Biweekly Monday pattern starting Monday 2024-01-01
	// WHEN: Expanding over January
	// THEN: Jan 1, 15, 29 fire; Jan 8, 22 do not

	p := weeklyPattern("p1", "emp-1", time.Monday)
	p.Interval = rota.IntervalBiweekly

	got := occurrenceDates(rota.Expand(&p, january2024()))
	want := []string{"2024-01-01", "2024-01-15", "2024-01-29"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("occurrence %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestExpand_Biweekly_ParityAnchoredPerPattern(t *testing.T) {
	// GIVEN: Two biweekly patterns with identical weekday sets, start
	//        dates one week apart
	// WHEN: Expanding both over the same window
	// THEN: They never share an occurrence week

	a := weeklyPattern("a", "emp-1", time.Monday)
	a.Interval = rota.IntervalBiweekly
	b := weeklyPattern("b", "emp-2", time.Monday)
	b.Interval = rota.IntervalBiweekly
	b.StartDate = date(2024, time.January, 8)

	w := window(date(2024, time.January, 1), date(2024, time.March, 31))
	weeksA := make(map[string]bool)
	for _, occ := range rota.Expand(&a, w) {
		weeksA[occ.Date.WeekStart().String()] = true
	}
	for _, occ := range rota.Expand(&b, w) {
		if weeksA[occ.Date.WeekStart().String()] {
			t.Errorf("patterns share occurrence week %s", occ.Date.WeekStart())
		}
	}
}

func TestExpand_Biweekly_MidweekStart_SameWeekFires(t *testing.T) {
	// Parity is measured from the Monday week start, so a pattern
	// starting Wednesday still fires on Friday of its own start week.
	p := weeklyPattern("p1", "emp-1", time.Friday)
	p.Interval = rota.IntervalBiweekly
	p.StartDate = date(2024, time.January, 3) // Wednesday

	got := occurrenceDates(rota.Expand(&p, january2024()))
	want := []string{"2024-01-05", "2024-01-19"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("expected %v, got %v", want, got)
	}
}

// =============================================================================
// MONTHLY EXPANSION
// =============================================================================

func TestExpand_Monthly_SameWeekOfMonth(t *testing.T) {
	// GIVEN: Monthly Wednesday pattern starting 2024-01-03 (first week)
	// WHEN: Expanding January through March
	// THEN: Only the first Wednesday of each month fires

	p := weeklyPattern("p1", "emp-1", time.Wednesday)
	p.Interval = rota.IntervalMonthly
	p.StartDate = date(2024, time.January, 3)

	got := occurrenceDates(rota.Expand(&p, window(date(2024, time.January, 1), date(2024, time.March, 31))))
	want := []string{"2024-01-03", "2024-02-07", "2024-03-06"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("occurrence %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestExpand_Monthly_FifthWeekStart(t *testing.T) {
	// A pattern anchored in week 5 only fires in months long enough to
	// have that weekday five times.
	p := weeklyPattern("p1", "emp-1", time.Monday)
	p.Interval = rota.IntervalMonthly
	p.StartDate = date(2024, time.January, 29) // 5th Monday

	got := occurrenceDates(rota.Expand(&p, window(date(2024, time.January, 1), date(2024, time.April, 30))))
	want := []string{"2024-01-29", "2024-04-29"} // Feb/Mar 2024 have 4 Mondays
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("expected %v, got %v", want, got)
	}
}

// =============================================================================
// ONE-OFF EXPANSION
// =============================================================================

func TestExpand_OneOff_SpannedWeekdaysOnly(t *testing.T) {
	// GIVEN: One-off range Wed Jan 3 - Fri Jan 5
	// WHEN: Expanding over January
	// THEN: Exactly those three dates fire; nothing outside the range

	p := weeklyPattern("p1", "emp-1")
	p.Interval = rota.IntervalOneOff
	p.StartDate = date(2024, time.January, 3)
	p.EndDate = endDate(date(2024, time.January, 5))

	got := occurrenceDates(rota.Expand(&p, january2024()))
	want := []string{"2024-01-03", "2024-01-04", "2024-01-05"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("occurrence %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

// =============================================================================
// EXCEPTION APPLICATION
// =============================================================================

func TestExpandWithExceptions_DeletedDatesDropped(t *testing.T) {
	// GIVEN: Weekly Monday pattern with Jan 15 deleted
	// WHEN: Expanding over January
	// THEN: Jan 15 is absent, all other Mondays remain

	p := weeklyPattern("p1", "emp-1", time.Monday)
	deleted := map[string]bool{"2024-01-15": true}

	got := occurrenceDates(rota.ExpandWithExceptions(&p, january2024(), deleted))
	want := []string{"2024-01-01", "2024-01-08", "2024-01-22", "2024-01-29"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for _, d := range got {
		if d == "2024-01-15" {
			t.Error("deleted date 2024-01-15 survived exception application")
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate_RejectsMalformedPatterns(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*rota.RecurrencePattern)
	}{
		{"start time >= end time", func(p *rota.RecurrencePattern) {
			p.StartTime = rota.NewMinuteOfDay(17, 0)
			p.EndTime = rota.NewMinuteOfDay(9, 0)
		}},
		{"invalid weekday", func(p *rota.RecurrencePattern) {
			p.Weekdays = []time.Weekday{time.Weekday(7)}
		}},
		{"one_off without end date", func(p *rota.RecurrencePattern) {
			p.Interval = rota.IntervalOneOff
			p.EndDate = nil
		}},
		{"unknown interval", func(p *rota.RecurrencePattern) {
			p.Interval = rota.RecurrenceInterval("fortnightly")
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := weeklyPattern("p1", "emp-1", time.Monday)
			tc.mutate(&p)
			if p.Validate() == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidate_AcceptsWellFormedPattern(t *testing.T) {
	p := weeklyPattern("p1", "emp-1", time.Monday)
	if err := p.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}
