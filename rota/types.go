/*
Package rota is the core scheduling resolution engine.

PURPOSE:
  Resolves who is working where and when from three independent signal
  sources - recurring rotation patterns, one-off manual assignments, and
  staff-initiated exception requests (leave, overtime, shift cover) - into
  one consistent instance timeline, ready for display packing and pay
  forecasting.

KEY CONCEPTS IN THIS FILE (types.go):
  - RecurrencePattern: a recurring rotation rule (weekdays + interval)
  - PatternException: one deleted occurrence of a pattern
  - ManualShiftInstance: a concrete, hand-entered shift
  - LeaveRecord / ExceptionRequest: staff-initiated absence and cover signals
  - ResolvedInstance: the unified output record with an explicit origin tag
  - DerivedCoverInstance: a computed stand-in shift, never persisted

DESIGN PRINCIPLES:
  1. Purity: a resolution pass is a deterministic function of an immutable
     snapshot plus an explicit "now"; the engine performs no I/O.
  2. Explicit provenance: origin is a tagged field, never inferred from
     the textual shape of an identifier.
  3. Local recovery: a malformed pattern is rejected at validation and
     skipped during a pass; it never blocks other subjects.

SEE ALSO:
  - expand.go: pattern -> occurrence expansion
  - merge.go:  manual/virtual de-duplication
  - leave.go:  leave suppression
  - cover.go:  derived cover instances
  - pack.go:   display row packing
  - resolve.go: the full pipeline
*/
package rota

import (
	"time"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type SubjectID string
type ClientID string
type PatternID string
type InstanceID string
type LeaveID string
type RequestID string

// =============================================================================
// RECURRENCE PATTERN - One recurring rotation rule
// =============================================================================

type RecurrenceInterval string

const (
	IntervalDaily    RecurrenceInterval = "daily"
	IntervalWeekly   RecurrenceInterval = "weekly"
	IntervalBiweekly RecurrenceInterval = "biweekly"
	IntervalMonthly  RecurrenceInterval = "monthly"
	IntervalOneOff   RecurrenceInterval = "one_off"
)

type RecurrencePattern struct {
	ID        PatternID
	SubjectID SubjectID
	ClientID  ClientID

	// Weekdays the pattern can fire on (ignored for daily).
	Weekdays []time.Weekday

	StartTime MinuteOfDay
	EndTime   MinuteOfDay

	// Validity window. EndDate nil = open-ended.
	StartDate TimePoint
	EndDate   *TimePoint

	Interval RecurrenceInterval

	// Overtime-flagged patterns are exempt from leave suppression and
	// contribute overtime days to pay forecasting.
	Overtime bool

	Label string
	Notes string
}

// Validate rejects patterns that must never reach expansion.
func (p RecurrencePattern) Validate() error {
	if !p.StartTime.Valid() || !p.EndTime.Valid() {
		return ErrMalformedPattern
	}
	if p.StartTime >= p.EndTime {
		return ErrMalformedPattern
	}
	for _, wd := range p.Weekdays {
		if wd < time.Sunday || wd > time.Saturday {
			return ErrMalformedPattern
		}
	}
	if p.StartDate.IsZero() {
		return ErrMalformedPattern
	}
	if p.Interval == IntervalOneOff && p.EndDate == nil {
		return ErrMalformedPattern
	}
	switch p.Interval {
	case IntervalDaily, IntervalWeekly, IntervalBiweekly, IntervalMonthly, IntervalOneOff:
		return nil
	default:
		return ErrMalformedPattern
	}
}

// hasWeekday reports whether the pattern fires on the given weekday.
func (p RecurrencePattern) hasWeekday(wd time.Weekday) bool {
	for _, w := range p.Weekdays {
		if w == wd {
			return true
		}
	}
	return false
}

// =============================================================================
// PATTERN EXCEPTION - One occurrence deleted from a pattern
// =============================================================================

// PatternException marks a single occurrence of a pattern as deleted.
// The (PatternID, Date) pair is unique.
type PatternException struct {
	PatternID PatternID
	Date      TimePoint
}

// =============================================================================
// MANUAL SHIFT INSTANCE - Hand-entered, independent of any pattern
// =============================================================================

type ManualShiftInstance struct {
	ID        InstanceID
	SubjectID SubjectID
	ClientID  ClientID
	Start     time.Time
	End       time.Time
}

// =============================================================================
// LEAVE RECORD
// =============================================================================

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

type LeaveRecord struct {
	ID        LeaveID
	SubjectID SubjectID
	Type      string // e.g. "annual", "sick", "unpaid"
	From      TimePoint
	To        TimePoint
	Status    LeaveStatus

	// DaysCharged is the number of allowance days this leave consumes.
	DaysCharged int

	// NoCoverRequired suppresses cover-need detection for this leave.
	NoCoverRequired bool
}

func (l LeaveRecord) Covers(day TimePoint) bool {
	return day.AfterOrEqual(l.From) && day.BeforeOrEqual(l.To)
}

// =============================================================================
// EXCEPTION REQUEST - Overtime / leave / shift-cover, staff-initiated
// =============================================================================

type RequestKind string

const (
	KindOvertime   RequestKind = "overtime"
	KindLeave      RequestKind = "leave"
	KindShiftCover RequestKind = "shift_cover"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

type ExceptionRequest struct {
	ID        RequestID
	SubjectID SubjectID // the requesting / covering party
	Kind      RequestKind

	// For shift_cover: the party being covered.
	CoveredSubjectID SubjectID

	// For overtime covering someone's leave: the governing leave record.
	LinkedLeaveID LeaveID

	From   TimePoint
	To     TimePoint
	Status RequestStatus

	// CoverApplied guards the one-time manual-shift reassignment side
	// effect of a shift-cover approval against replay.
	CoverApplied bool
}

func (r ExceptionRequest) SpansDay(day TimePoint) bool {
	return day.AfterOrEqual(r.From) && day.BeforeOrEqual(r.To)
}

// =============================================================================
// RESOLVED INSTANCE - The unified pipeline output
// =============================================================================

// Origin distinguishes how an instance entered the timeline.
type Origin string

const (
	OriginManual  Origin = "manual"
	OriginPattern Origin = "pattern"
	OriginCover   Origin = "cover"
)

type ResolvedInstance struct {
	SubjectID SubjectID
	ClientID  ClientID
	Start     time.Time
	End       time.Time

	// Origin plus the source record's id; meaning is never derived from
	// the textual form of an identifier.
	Origin   Origin
	SourceID string

	// Overtime is carried from the source pattern; manual instances are
	// always standard.
	Overtime bool

	// Suppressed marks an occurrence swallowed by approved leave.
	// Suppressed instances stay in the output so the caller can render
	// them greyed-out and so cover derivation can see them.
	Suppressed   bool
	SuppressedBy LeaveID
}

// Overlaps uses the half-open interval test: touching endpoints do not
// count as overlap.
func (ri ResolvedInstance) Overlaps(other ResolvedInstance) bool {
	return ri.Start.Before(other.End) && ri.End.After(other.Start)
}

// Day returns the calendar day the instance starts on.
func (ri ResolvedInstance) Day() TimePoint { return DayOf(ri.Start) }

// DerivedCoverInstance is a stand-in shift computed per resolution pass
// from an approved cover/overtime request. It is never persisted.
type DerivedCoverInstance struct {
	ResolvedInstance

	// CoveredSubjectID names whose shift is being stood in for.
	CoveredSubjectID SubjectID

	// RequestID references the approved request this was derived from.
	RequestID RequestID
}

// =============================================================================
// SNAPSHOT - Immutable input to one resolution pass
// =============================================================================

// Snapshot is the full record set a resolution pass works from. The
// engine never mutates it; the caller fetches it from the store.
type Snapshot struct {
	Patterns   []RecurrencePattern
	Exceptions []PatternException
	Manual     []ManualShiftInstance
	Leave      []LeaveRecord
	Requests   []ExceptionRequest
}

// ApprovedLeave returns only approved leave records.
func (s Snapshot) ApprovedLeave() []LeaveRecord {
	var out []LeaveRecord
	for _, l := range s.Leave {
		if l.Status == LeaveApproved {
			out = append(out, l)
		}
	}
	return out
}

// LeaveByID looks up a leave record; nil if absent.
func (s Snapshot) LeaveByID(id LeaveID) *LeaveRecord {
	for i := range s.Leave {
		if s.Leave[i].ID == id {
			return &s.Leave[i]
		}
	}
	return nil
}

// exceptionSet builds the per-pattern deleted-date set for O(1) lookups.
// Dates are keyed by their ISO string form so map equality never depends
// on time.Time internals.
func (s Snapshot) exceptionSet() map[PatternID]map[string]bool {
	set := make(map[PatternID]map[string]bool, len(s.Exceptions))
	for _, ex := range s.Exceptions {
		dates := set[ex.PatternID]
		if dates == nil {
			dates = make(map[string]bool)
			set[ex.PatternID] = dates
		}
		dates[ex.Date.String()] = true
	}
	return set
}
