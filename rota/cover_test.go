package rota_test

import (
	"testing"
	"time"

	"github.com/warp/rota-engine/rota"
)

func approvedRequest(id string, kind rota.RequestKind, subject string, from, to rota.TimePoint) rota.ExceptionRequest {
	return rota.ExceptionRequest{
		ID:        rota.RequestID(id),
		SubjectID: rota.SubjectID(subject),
		Kind:      kind,
		From:      from,
		To:        to,
		Status:    rota.RequestApproved,
	}
}

// =============================================================================
// SHIFT-COVER DERIVATION
// =============================================================================

func TestCover_ShiftCover_DerivesFromResolvedInstances(t *testing.T) {
	// GIVEN: emp-1 has a Monday shift and emp-2 holds an approved
	//        shift-cover request naming emp-1 for that date
	// WHEN: Resolving
	// THEN: One cover instance: emp-2 acting, emp-1 referenced, time and
	//       client copied from the covered shift

	day := date(2024, time.January, 1)
	req := approvedRequest("req1", rota.KindShiftCover, "emp-2", day, day)
	req.CoveredSubjectID = "emp-1"

	snap := rota.Snapshot{
		Patterns: []rota.RecurrencePattern{weeklyPattern("p1", "emp-1", time.Monday)},
		Requests: []rota.ExceptionRequest{req},
	}

	result := rota.Resolve(snap, window(day, day), day.Time)

	if len(result.Covers) != 1 {
		t.Fatalf("expected 1 cover instance, got %d", len(result.Covers))
	}
	cover := result.Covers[0]
	if cover.SubjectID != "emp-2" {
		t.Errorf("acting subject should be the covering party, got %s", cover.SubjectID)
	}
	if cover.CoveredSubjectID != "emp-1" {
		t.Errorf("back-reference should name emp-1, got %s", cover.CoveredSubjectID)
	}
	if cover.ClientID != "client-1" {
		t.Errorf("client should be copied from the covered shift, got %s", cover.ClientID)
	}
	if cover.Origin != rota.OriginCover {
		t.Errorf("expected cover origin, got %s", cover.Origin)
	}
	if cover.Start.Hour() != 9 || cover.End.Hour() != 17 {
		t.Errorf("times should be copied from the covered shift, got %v-%v", cover.Start, cover.End)
	}
}

func TestCover_SuppressedInstancesStillCoverable(t *testing.T) {
	// The covered party being on approved leave (their instance
	// suppressed) is exactly what creates the need for cover.

	day := date(2024, time.January, 1)
	req := approvedRequest("req1", rota.KindShiftCover, "emp-2", day, day)
	req.CoveredSubjectID = "emp-1"

	snap := rota.Snapshot{
		Patterns: []rota.RecurrencePattern{weeklyPattern("p1", "emp-1", time.Monday)},
		Leave:    []rota.LeaveRecord{approvedLeave("lv1", "emp-1", day, day)},
		Requests: []rota.ExceptionRequest{req},
	}

	result := rota.Resolve(snap, window(day, day), day.Time)
	if len(result.Covers) != 1 {
		t.Fatalf("expected 1 cover instance for a suppressed shift, got %d", len(result.Covers))
	}
	if result.Covers[0].Suppressed {
		t.Error("cover instances are never suppressed")
	}
}

func TestCover_ZeroResolvableInstances_ContributesNothing(t *testing.T) {
	// GIVEN: A cover request for a subject with no shifts that date
	// WHEN: Resolving
	// THEN: No cover instances and no error - silent absence

	day := date(2024, time.January, 2) // Tuesday; emp-1 works Mondays
	req := approvedRequest("req1", rota.KindShiftCover, "emp-2", day, day)
	req.CoveredSubjectID = "emp-1"

	snap := rota.Snapshot{
		Patterns: []rota.RecurrencePattern{weeklyPattern("p1", "emp-1", time.Monday)},
		Requests: []rota.ExceptionRequest{req},
	}

	result := rota.Resolve(snap, window(day, day), day.Time)
	if len(result.Covers) != 0 {
		t.Errorf("expected no cover instances, got %d", len(result.Covers))
	}
	if len(result.Problems) != 0 {
		t.Errorf("unresolvable cover must not surface as an error, got %v", result.Problems)
	}
}

func TestCover_FallbackToPatternDerivation(t *testing.T) {
	// GIVEN: The resolution window excludes the covered date, so no
	//        resolved row exists for the covered subject that day
	// WHEN: A cover request spans a date inside the window where the
	//       covered subject's pattern fires but was merged away
	// THEN: Cover falls back to re-deriving from the subject's patterns

	day := date(2024, time.January, 1)
	req := approvedRequest("req1", rota.KindShiftCover, "emp-2", day, day)
	req.CoveredSubjectID = "emp-1"

	// Pattern exists but is excluded from the pass by an exception, so
	// no resolved instance materializes; the fallback re-derives from
	// the raw pattern.
	snap := rota.Snapshot{
		Patterns:   []rota.RecurrencePattern{weeklyPattern("p1", "emp-1", time.Monday)},
		Exceptions: []rota.PatternException{{PatternID: "p1", Date: day}},
		Requests:   []rota.ExceptionRequest{req},
	}

	result := rota.Resolve(snap, window(day, day), day.Time)
	if len(result.Instances) != 0 {
		t.Fatalf("expected the exception to remove the resolved row, got %d", len(result.Instances))
	}
	if len(result.Covers) != 1 {
		t.Fatalf("expected fallback derivation to produce 1 cover, got %d", len(result.Covers))
	}
}

// =============================================================================
// OVERTIME-COVERING-LEAVE DERIVATION
// =============================================================================

func TestCover_OvertimeLinkedToLeave_ResolvesCoveredSubject(t *testing.T) {
	// GIVEN: emp-1 on approved leave; emp-2 holds an approved overtime
	//        request linked to that leave record
	// WHEN: Resolving
	// THEN: Cover instances derive against emp-1's shifts

	day := date(2024, time.January, 1)
	req := approvedRequest("req1", rota.KindOvertime, "emp-2", day, day)
	req.LinkedLeaveID = "lv1"

	snap := rota.Snapshot{
		Patterns: []rota.RecurrencePattern{weeklyPattern("p1", "emp-1", time.Monday)},
		Leave:    []rota.LeaveRecord{approvedLeave("lv1", "emp-1", day, day)},
		Requests: []rota.ExceptionRequest{req},
	}

	result := rota.Resolve(snap, window(day, day), day.Time)
	if len(result.Covers) != 1 {
		t.Fatalf("expected 1 cover instance, got %d", len(result.Covers))
	}
	if result.Covers[0].CoveredSubjectID != "emp-1" {
		t.Errorf("covered subject should resolve via the linked leave, got %s", result.Covers[0].CoveredSubjectID)
	}
	if !result.Covers[0].Overtime {
		t.Error("overtime-kind cover should be flagged overtime")
	}
}

func TestCover_OvertimeWithoutLinkedLeave_NoDerivation(t *testing.T) {
	// Plain extra-work overtime derives nothing here; it only feeds the
	// pay forecast.

	day := date(2024, time.January, 1)
	req := approvedRequest("req1", rota.KindOvertime, "emp-2", day, day)

	snap := rota.Snapshot{
		Patterns: []rota.RecurrencePattern{weeklyPattern("p1", "emp-1", time.Monday)},
		Requests: []rota.ExceptionRequest{req},
	}

	result := rota.Resolve(snap, window(day, day), day.Time)
	if len(result.Covers) != 0 {
		t.Errorf("expected no covers for unlinked overtime, got %d", len(result.Covers))
	}
}

func TestCover_PendingRequestIgnored(t *testing.T) {
	day := date(2024, time.January, 1)
	req := approvedRequest("req1", rota.KindShiftCover, "emp-2", day, day)
	req.CoveredSubjectID = "emp-1"
	req.Status = rota.RequestPending

	snap := rota.Snapshot{
		Patterns: []rota.RecurrencePattern{weeklyPattern("p1", "emp-1", time.Monday)},
		Requests: []rota.ExceptionRequest{req},
	}

	result := rota.Resolve(snap, window(day, day), day.Time)
	if len(result.Covers) != 0 {
		t.Errorf("pending requests must not derive cover, got %d", len(result.Covers))
	}
}

func TestCover_MultiDayRequest_OneCoverPerCoveredShift(t *testing.T) {
	// GIVEN: emp-1 works Mon and Wed; a cover request spans the whole week
	// WHEN: Resolving the week
	// THEN: Two cover instances, one per covered shift

	from := date(2024, time.January, 1)
	to := date(2024, time.January, 7)
	req := approvedRequest("req1", rota.KindShiftCover, "emp-2", from, to)
	req.CoveredSubjectID = "emp-1"

	snap := rota.Snapshot{
		Patterns: []rota.RecurrencePattern{weeklyPattern("p1", "emp-1", time.Monday, time.Wednesday)},
		Requests: []rota.ExceptionRequest{req},
	}

	result := rota.Resolve(snap, window(from, to), from.Time)
	if len(result.Covers) != 2 {
		t.Errorf("expected 2 cover instances, got %d", len(result.Covers))
	}
}
