package rota_test

import (
	"testing"
	"time"

	"github.com/warp/rota-engine/rota"
)

func instanceAt(day rota.TimePoint, startHour, endHour int) rota.ResolvedInstance {
	return rota.ResolvedInstance{
		SubjectID: "emp-1",
		ClientID:  "client-1",
		Start:     day.At(rota.NewMinuteOfDay(startHour, 0)),
		End:       day.At(rota.NewMinuteOfDay(endHour, 0)),
		Origin:    rota.OriginManual,
	}
}

// rowsByIndex maps input position -> assigned row.
func rowsByIndex(assignments []rota.RowAssignment) map[int]int {
	rows := make(map[int]int, len(assignments))
	for _, a := range assignments {
		rows[a.Index] = a.Row
	}
	return rows
}

// =============================================================================
// ROW PACKING
// =============================================================================

func TestPackRows_NonOverlapping_ShareOneRow(t *testing.T) {
	day := date(2024, time.January, 1)
	instances := []rota.ResolvedInstance{
		instanceAt(day, 9, 11),
		instanceAt(day, 12, 14),
		instanceAt(day, 15, 17),
	}

	_, rowCount := rota.PackRows(instances)
	if rowCount != 1 {
		t.Errorf("expected 1 row for disjoint instances, got %d", rowCount)
	}
}

func TestPackRows_FullyOverlapping_OneRowEach(t *testing.T) {
	// GIVEN: N instances that all mutually overlap
	// WHEN: Packing
	// THEN: Exactly N rows

	day := date(2024, time.January, 1)
	instances := []rota.ResolvedInstance{
		instanceAt(day, 9, 17),
		instanceAt(day, 10, 16),
		instanceAt(day, 11, 15),
		instanceAt(day, 12, 14),
	}

	assignments, rowCount := rota.PackRows(instances)
	if rowCount != len(instances) {
		t.Errorf("expected %d rows, got %d", len(instances), rowCount)
	}

	seen := make(map[int]bool)
	for _, a := range assignments {
		if seen[a.Row] {
			t.Errorf("row %d used twice for mutually overlapping instances", a.Row)
		}
		seen[a.Row] = true
	}
}

func TestPackRows_TouchingEndpoints_ShareRow(t *testing.T) {
	// GIVEN: One instance ending exactly as another starts
	// WHEN: Packing
	// THEN: They share a row - touching is not overlap

	day := date(2024, time.January, 1)
	instances := []rota.ResolvedInstance{
		instanceAt(day, 9, 12),
		instanceAt(day, 12, 15),
	}

	assignments, rowCount := rota.PackRows(instances)
	if rowCount != 1 {
		t.Errorf("touching instances should share a row, got %d rows", rowCount)
	}
	rows := rowsByIndex(assignments)
	if rows[0] != rows[1] {
		t.Errorf("expected same row, got %d and %d", rows[0], rows[1])
	}
}

func TestPackRows_NeverColocatesOverlaps(t *testing.T) {
	// GIVEN: A mixed bag of overlapping and disjoint instances
	// WHEN: Packing
	// THEN: No row holds two overlapping instances

	day := date(2024, time.January, 1)
	instances := []rota.ResolvedInstance{
		instanceAt(day, 9, 13),
		instanceAt(day, 10, 12),
		instanceAt(day, 12, 16),
		instanceAt(day, 13, 14),
		instanceAt(day, 8, 9),
	}

	assignments, _ := rota.PackRows(instances)
	rows := rowsByIndex(assignments)
	for i := range instances {
		for j := i + 1; j < len(instances); j++ {
			if rows[i] == rows[j] && instances[i].Overlaps(instances[j]) {
				t.Errorf("instances %d and %d overlap but share row %d", i, j, rows[i])
			}
		}
	}
}

func TestPackRows_FirstFitInCreationOrder(t *testing.T) {
	// GIVEN: Two open rows where both could take the next instance
	// WHEN: Packing
	// THEN: The earlier-created row wins

	day := date(2024, time.January, 1)
	instances := []rota.ResolvedInstance{
		instanceAt(day, 9, 10),  // row 0
		instanceAt(day, 9, 11),  // overlaps -> row 1
		instanceAt(day, 12, 13), // fits both -> row 0
	}

	assignments, _ := rota.PackRows(instances)
	rows := rowsByIndex(assignments)
	if rows[2] != 0 {
		t.Errorf("expected first-fit placement in row 0, got row %d", rows[2])
	}
}

func TestPackRows_Empty(t *testing.T) {
	assignments, rowCount := rota.PackRows(nil)
	if assignments != nil || rowCount != 0 {
		t.Errorf("expected empty packing, got %d assignments in %d rows", len(assignments), rowCount)
	}
}
