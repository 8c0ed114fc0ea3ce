/*
leave.go - Leave conflict resolution

PURPOSE:
  Decides which resolved occurrences are swallowed by approved leave.
  A date is leave-suppressed for a subject only when approved leave
  covers it AND the subject would standardly work it. "Standardly work"
  is computed by re-running expansion and merge restricted to
  non-overtime patterns and the subject's manual instances for that
  single date.

OVERTIME EXEMPTION:
  Overtime-only occurrences on a leave date are NOT suppressed: a subject
  may work overtime while on leave from their normal rotation. Only the
  refined overtime-exempt policy is implemented; earlier variants that
  suppressed everything on a leave date were inconsistent with cover
  derivation.
*/
package rota

// LeaveConflictResolver answers "is this subject on leave from their
// standard rotation on this date, and under which leave record".
type LeaveConflictResolver struct {
	snapshot Snapshot
}

func NewLeaveConflictResolver(snapshot Snapshot) *LeaveConflictResolver {
	return &LeaveConflictResolver{snapshot: snapshot}
}

// GoverningLeave returns the approved leave record covering the date for
// the subject, or nil.
func (r *LeaveConflictResolver) GoverningLeave(subject SubjectID, day TimePoint) *LeaveRecord {
	for i := range r.snapshot.Leave {
		l := &r.snapshot.Leave[i]
		if l.Status != LeaveApproved || l.SubjectID != subject {
			continue
		}
		if l.Covers(day) {
			return l
		}
	}
	return nil
}

// IsSuppressed reports whether the date is leave-suppressed for the
// subject: approved leave covers it and it is a standard working day.
// The governing leave record is returned alongside.
func (r *LeaveConflictResolver) IsSuppressed(subject SubjectID, day TimePoint) (bool, *LeaveRecord) {
	leave := r.GoverningLeave(subject, day)
	if leave == nil {
		return false, nil
	}
	if !r.isStandardWorkingDay(subject, day) {
		return false, leave
	}
	return true, leave
}

// Apply stamps the suppressed flag onto non-overtime instances whose
// date falls under approved leave. Cover-origin instances are never
// suppressed: they exist because of someone else's leave.
func (r *LeaveConflictResolver) Apply(instances []ResolvedInstance) []ResolvedInstance {
	out := make([]ResolvedInstance, len(instances))
	copy(out, instances)
	for i := range out {
		ri := &out[i]
		if ri.Overtime || ri.Origin == OriginCover {
			continue
		}
		leave := r.GoverningLeave(ri.SubjectID, ri.Day())
		if leave == nil {
			continue
		}
		ri.Suppressed = true
		ri.SuppressedBy = leave.ID
	}
	return out
}

// isStandardWorkingDay re-runs expansion + merge for the single date,
// restricted to non-overtime patterns and the subject's manual
// instances.
func (r *LeaveConflictResolver) isStandardWorkingDay(subject SubjectID, day TimePoint) bool {
	return len(r.standardInstances(subject, day)) > 0
}

// standardInstances materializes the subject's standard (non-overtime)
// shifts for one date. Shared with cover derivation, which falls back to
// it when no resolved row exists for the covered party.
func (r *LeaveConflictResolver) standardInstances(subject SubjectID, day TimePoint) []ResolvedInstance {
	window := Window{From: day, To: day}
	exceptions := r.snapshot.exceptionSet()

	var virtual []Occurrence
	for i := range r.snapshot.Patterns {
		p := &r.snapshot.Patterns[i]
		if p.SubjectID != subject || p.Overtime {
			continue
		}
		if p.Validate() != nil {
			continue
		}
		virtual = append(virtual, ExpandWithExceptions(p, window, exceptions[p.ID])...)
	}

	var manual []ManualShiftInstance
	for _, m := range r.snapshot.Manual {
		if m.SubjectID == subject && DayOf(m.Start).Equal(day) {
			manual = append(manual, m)
		}
	}

	return Merge(manual, virtual)
}
