package rota_test

import (
	"testing"
	"time"

	"github.com/warp/rota-engine/rota"
)

func manualShift(id, subject, client string, day rota.TimePoint, startHour, endHour int) rota.ManualShiftInstance {
	return rota.ManualShiftInstance{
		ID:        rota.InstanceID(id),
		SubjectID: rota.SubjectID(subject),
		ClientID:  rota.ClientID(client),
		Start:     day.At(rota.NewMinuteOfDay(startHour, 0)),
		End:       day.At(rota.NewMinuteOfDay(endHour, 0)),
	}
}

func expandOne(p rota.RecurrencePattern, w rota.Window) []rota.Occurrence {
	return rota.Expand(&p, w)
}

// =============================================================================
// MANUAL PRECEDENCE
// =============================================================================

func TestMerge_ManualWinsOverSameSlotVirtual(t *testing.T) {
	// GIVEN: A manual shift and a pattern occurrence for the same
	//        subject, client, and start time
	// WHEN: Merging
	// THEN: Only the manual instance survives

	day := date(2024, time.January, 1) // Monday
	manual := []rota.ManualShiftInstance{manualShift("m1", "emp-1", "client-1", day, 9, 17)}
	virtual := expandOne(weeklyPattern("p1", "emp-1", time.Monday), window(day, day))

	merged := rota.Merge(manual, virtual)

	if len(merged) != 1 {
		t.Fatalf("expected 1 instance after de-dup, got %d", len(merged))
	}
	if merged[0].Origin != rota.OriginManual {
		t.Errorf("expected manual origin, got %s", merged[0].Origin)
	}
	if merged[0].SourceID != "m1" {
		t.Errorf("expected source m1, got %s", merged[0].SourceID)
	}
}

func TestMerge_DifferentClientSameTime_BothKept(t *testing.T) {
	// The de-dup key includes the client: same subject and time at a
	// different client is a distinct slot.

	day := date(2024, time.January, 1)
	manual := []rota.ManualShiftInstance{manualShift("m1", "emp-1", "client-2", day, 9, 17)}
	virtual := expandOne(weeklyPattern("p1", "emp-1", time.Monday), window(day, day))

	merged := rota.Merge(manual, virtual)
	if len(merged) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(merged))
	}
}

func TestMerge_Idempotent(t *testing.T) {
	// GIVEN: The same inputs merged twice
	// WHEN: Comparing outputs
	// THEN: Results are identical

	day := date(2024, time.January, 1)
	manual := []rota.ManualShiftInstance{
		manualShift("m1", "emp-1", "client-1", day, 9, 17),
		manualShift("m2", "emp-2", "client-1", day, 10, 14),
	}
	virtual := expandOne(weeklyPattern("p1", "emp-1", time.Monday), january2024())

	first := rota.Merge(manual, virtual)
	second := rota.Merge(manual, virtual)

	if len(first) != len(second) {
		t.Fatalf("merge not idempotent: %d vs %d instances", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("instance %d differs between runs", i)
		}
	}
}

func TestMerge_VirtualCarriesPatternMetadata(t *testing.T) {
	day := date(2024, time.January, 1)
	p := weeklyPattern("p1", "emp-1", time.Monday)
	p.Overtime = true

	merged := rota.Merge(nil, expandOne(p, window(day, day)))
	if len(merged) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(merged))
	}
	if merged[0].Origin != rota.OriginPattern || merged[0].SourceID != "p1" {
		t.Errorf("expected pattern origin with source p1, got %s/%s", merged[0].Origin, merged[0].SourceID)
	}
	if !merged[0].Overtime {
		t.Error("overtime flag should carry through from the pattern")
	}
}

func TestMerge_OutputSortedByStart(t *testing.T) {
	day := date(2024, time.January, 1)
	manual := []rota.ManualShiftInstance{
		manualShift("m-late", "emp-1", "client-1", day, 14, 18),
		manualShift("m-early", "emp-1", "client-1", day, 8, 12),
	}

	merged := rota.Merge(manual, nil)
	if merged[0].SourceID != "m-early" {
		t.Errorf("expected earliest instance first, got %s", merged[0].SourceID)
	}
}
