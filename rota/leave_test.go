package rota_test

import (
	"testing"
	"time"

	"github.com/warp/rota-engine/rota"
)

func approvedLeave(id, subject string, from, to rota.TimePoint) rota.LeaveRecord {
	return rota.LeaveRecord{
		ID:          rota.LeaveID(id),
		SubjectID:   rota.SubjectID(subject),
		Type:        "annual",
		From:        from,
		To:          to,
		Status:      rota.LeaveApproved,
		DaysCharged: rota.DaysBetween(from, to) + 1,
	}
}

// =============================================================================
// SUPPRESSION
// =============================================================================

func TestLeave_StandardOccurrenceSuppressed(t *testing.T) {
	// GIVEN: Approved leave covering Monday Jan 1, and a standard weekly
	//        Monday pattern
	// WHEN: Resolving the week
	// THEN: The Monday occurrence is suppressed and names the leave record

	day := date(2024, time.January, 1)
	snap := rota.Snapshot{
		Patterns: []rota.RecurrencePattern{weeklyPattern("p1", "emp-1", time.Monday)},
		Leave:    []rota.LeaveRecord{approvedLeave("lv1", "emp-1", day, day)},
	}

	result := rota.Resolve(snap, window(day, date(2024, time.January, 7)), day.Time)

	if len(result.Instances) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(result.Instances))
	}
	inst := result.Instances[0]
	if !inst.Suppressed {
		t.Error("standard occurrence on a leave date should be suppressed")
	}
	if inst.SuppressedBy != "lv1" {
		t.Errorf("expected governing leave lv1, got %s", inst.SuppressedBy)
	}
}

func TestLeave_OvertimeOccurrenceNotSuppressed(t *testing.T) {
	// GIVEN: Approved leave covering a date where the subject has BOTH a
	//        standard and an overtime-flagged occurrence
	// WHEN: Resolving that date
	// THEN: The standard occurrence is suppressed, the overtime one is not

	day := date(2024, time.January, 1)
	standard := weeklyPattern("p-std", "emp-1", time.Monday)
	overtime := weeklyPattern("p-ot", "emp-1", time.Monday)
	overtime.Overtime = true
	overtime.StartTime = rota.NewMinuteOfDay(18, 0)
	overtime.EndTime = rota.NewMinuteOfDay(22, 0)

	snap := rota.Snapshot{
		Patterns: []rota.RecurrencePattern{standard, overtime},
		Leave:    []rota.LeaveRecord{approvedLeave("lv1", "emp-1", day, day)},
	}

	result := rota.Resolve(snap, window(day, day), day.Time)

	if len(result.Instances) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(result.Instances))
	}
	for _, inst := range result.Instances {
		switch inst.SourceID {
		case "p-std":
			if !inst.Suppressed {
				t.Error("standard occurrence should be suppressed")
			}
		case "p-ot":
			if inst.Suppressed {
				t.Error("overtime occurrence should NOT be suppressed on a leave date")
			}
		}
	}
}

func TestLeave_PendingLeaveDoesNotSuppress(t *testing.T) {
	day := date(2024, time.January, 1)
	leave := approvedLeave("lv1", "emp-1", day, day)
	leave.Status = rota.LeavePending

	snap := rota.Snapshot{
		Patterns: []rota.RecurrencePattern{weeklyPattern("p1", "emp-1", time.Monday)},
		Leave:    []rota.LeaveRecord{leave},
	}

	result := rota.Resolve(snap, window(day, day), day.Time)
	if result.Instances[0].Suppressed {
		t.Error("pending leave must not suppress occurrences")
	}
}

func TestLeave_OtherSubjectUnaffected(t *testing.T) {
	// GIVEN: emp-1 on leave, emp-2 working the same rotation
	// WHEN: Resolving
	// THEN: Only emp-1's occurrence is suppressed

	day := date(2024, time.January, 1)
	snap := rota.Snapshot{
		Patterns: []rota.RecurrencePattern{
			weeklyPattern("p1", "emp-1", time.Monday),
			weeklyPattern("p2", "emp-2", time.Monday),
		},
		Leave: []rota.LeaveRecord{approvedLeave("lv1", "emp-1", day, day)},
	}

	result := rota.Resolve(snap, window(day, day), day.Time)
	for _, inst := range result.Instances {
		if inst.SubjectID == "emp-2" && inst.Suppressed {
			t.Error("emp-2 should not be suppressed by emp-1's leave")
		}
	}
}

// =============================================================================
// STANDARD-WORKING-DAY DETECTION
// =============================================================================

func TestLeave_IsSuppressed_OvertimeOnlyDayIsNotStandard(t *testing.T) {
	// GIVEN: A subject whose only occurrence on a leave date is
	//        overtime-flagged
	// WHEN: Asking whether the date is leave-suppressed
	// THEN: It is not - overtime-only days are not standard working days

	day := date(2024, time.January, 1)
	overtime := weeklyPattern("p-ot", "emp-1", time.Monday)
	overtime.Overtime = true

	snap := rota.Snapshot{
		Patterns: []rota.RecurrencePattern{overtime},
		Leave:    []rota.LeaveRecord{approvedLeave("lv1", "emp-1", day, day)},
	}

	resolver := rota.NewLeaveConflictResolver(snap)
	suppressed, leave := resolver.IsSuppressed("emp-1", day)
	if suppressed {
		t.Error("overtime-only day should not count as leave-suppressed")
	}
	if leave == nil || leave.ID != "lv1" {
		t.Error("governing leave record should still be reported")
	}
}

func TestLeave_IsSuppressed_ManualInstanceCountsAsStandard(t *testing.T) {
	day := date(2024, time.January, 1)
	snap := rota.Snapshot{
		Manual: []rota.ManualShiftInstance{manualShift("m1", "emp-1", "client-1", day, 9, 17)},
		Leave:  []rota.LeaveRecord{approvedLeave("lv1", "emp-1", day, day)},
	}

	resolver := rota.NewLeaveConflictResolver(snap)
	suppressed, _ := resolver.IsSuppressed("emp-1", day)
	if !suppressed {
		t.Error("a manual instance makes the date a standard working day")
	}
}

func TestLeave_IsSuppressed_NoLeaveNoSuppression(t *testing.T) {
	day := date(2024, time.January, 1)
	snap := rota.Snapshot{
		Patterns: []rota.RecurrencePattern{weeklyPattern("p1", "emp-1", time.Monday)},
	}

	resolver := rota.NewLeaveConflictResolver(snap)
	suppressed, leave := resolver.IsSuppressed("emp-1", day)
	if suppressed || leave != nil {
		t.Error("no approved leave means no suppression")
	}
}
