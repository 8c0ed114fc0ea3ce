package rota

import "errors"

// Sentinel errors for the engine. All conditions are local and
// recoverable; a resolution pass skips the offending record and
// continues.
var (
	// ErrMalformedPattern is returned for an invalid weekday set,
	// start >= end time, or a missing validity window. Rejected at
	// creation; never reaches expansion.
	ErrMalformedPattern = errors.New("malformed recurrence pattern")

	// ErrUnknownSubject is returned by stores for lookups against a
	// subject with no records.
	ErrUnknownSubject = errors.New("unknown subject")

	// ErrRequestNotPending is returned when an approval or rejection is
	// attempted on a request that has already reached a terminal status.
	// Status transitions are monotonic: pending -> terminal only.
	ErrRequestNotPending = errors.New("request is not pending")

	// ErrReassignmentReplayed is returned when the shift-cover
	// reassignment side effect is attempted a second time for the same
	// request. The caller treats it as a no-op, not a retry.
	ErrReassignmentReplayed = errors.New("cover reassignment already applied")
)
