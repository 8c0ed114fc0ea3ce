package rota_test

import (
	"testing"
	"time"

	"github.com/warp/rota-engine/rota"
)

// =============================================================================
// FULL RESOLUTION PASS
// =============================================================================

func TestResolve_Deterministic(t *testing.T) {
	// GIVEN: A snapshot with all record kinds populated
	// WHEN: Resolving twice with the same window and now
	// THEN: Outputs are identical

	day := date(2024, time.January, 1)
	req := approvedRequest("req1", rota.KindShiftCover, "emp-2", day, day)
	req.CoveredSubjectID = "emp-1"

	snap := rota.Snapshot{
		Patterns: []rota.RecurrencePattern{
			weeklyPattern("p1", "emp-1", time.Monday, time.Wednesday),
			weeklyPattern("p2", "emp-2", time.Tuesday),
		},
		Manual:   []rota.ManualShiftInstance{manualShift("m1", "emp-1", "client-1", day, 9, 17)},
		Leave:    []rota.LeaveRecord{approvedLeave("lv1", "emp-1", day, day)},
		Requests: []rota.ExceptionRequest{req},
	}
	w := january2024()

	first := rota.Resolve(snap, w, day.Time)
	second := rota.Resolve(snap, w, day.Time)

	if len(first.Instances) != len(second.Instances) || len(first.Covers) != len(second.Covers) {
		t.Fatal("resolution pass is not deterministic")
	}
	for i := range first.Instances {
		if first.Instances[i] != second.Instances[i] {
			t.Errorf("instance %d differs between passes", i)
		}
	}
}

func TestResolve_MalformedPatternIsolated(t *testing.T) {
	// GIVEN: emp-1 has a malformed pattern, emp-2 a valid one
	// WHEN: Resolving
	// THEN: emp-2's timeline is intact and the problem is reported

	bad := weeklyPattern("p-bad", "emp-1", time.Monday)
	bad.StartTime = rota.NewMinuteOfDay(17, 0)
	bad.EndTime = rota.NewMinuteOfDay(9, 0)

	snap := rota.Snapshot{
		Patterns: []rota.RecurrencePattern{bad, weeklyPattern("p-good", "emp-2", time.Monday)},
	}

	result := rota.Resolve(snap, january2024(), date(2024, time.January, 1).Time)

	if len(result.Problems) != 1 {
		t.Fatalf("expected 1 reported problem, got %d", len(result.Problems))
	}
	if len(result.Instances) == 0 {
		t.Fatal("valid subject's timeline should be unaffected")
	}
	for _, inst := range result.Instances {
		if inst.SubjectID != "emp-2" {
			t.Errorf("unexpected instance for subject %s", inst.SubjectID)
		}
	}
}

func TestResolve_FilterHelpers(t *testing.T) {
	day := date(2024, time.January, 1)
	snap := rota.Snapshot{
		Patterns: []rota.RecurrencePattern{
			weeklyPattern("p1", "emp-1", time.Monday),
			weeklyPattern("p2", "emp-2", time.Monday),
		},
	}

	result := rota.Resolve(snap, window(day, day), day.Time)

	if got := result.ForSubject("emp-1"); len(got) != 1 {
		t.Errorf("expected 1 instance for emp-1, got %d", len(got))
	}
	if got := result.ForClient("client-1"); len(got) != 2 {
		t.Errorf("expected 2 instances for client-1, got %d", len(got))
	}
}

func TestResolve_EmptySnapshot(t *testing.T) {
	result := rota.Resolve(rota.Snapshot{}, january2024(), time.Now())
	if len(result.Instances) != 0 || len(result.Covers) != 0 || len(result.Problems) != 0 {
		t.Error("empty snapshot should resolve to an empty result")
	}
}
