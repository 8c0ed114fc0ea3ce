package rota

import "context"

// =============================================================================
// RECORD STORE - The engine's only external contract
// =============================================================================

// RecordStore is the filtered read/write store a calling shell fetches
// snapshots from. The engine itself never touches it; handlers load a
// Snapshot, run Resolve, and occasionally write derived reassignments
// back.
type RecordStore interface {
	// Snapshot loading. Window filtering is advisory: stores may return
	// supersets (e.g. all open-ended patterns); the engine re-filters.
	ListPatterns(ctx context.Context, window Window) ([]RecurrencePattern, error)
	ListExceptions(ctx context.Context) ([]PatternException, error)
	ListManualInstances(ctx context.Context, window Window) ([]ManualShiftInstance, error)
	ListLeave(ctx context.Context, window Window, statuses ...LeaveStatus) ([]LeaveRecord, error)
	ListRequests(ctx context.Context, window Window, statuses ...RequestStatus) ([]ExceptionRequest, error)

	// Record writes.
	SavePattern(ctx context.Context, p RecurrencePattern) error
	DeletePattern(ctx context.Context, id PatternID) error
	SaveException(ctx context.Context, ex PatternException) error
	SaveManualInstance(ctx context.Context, m ManualShiftInstance) error
	SaveLeave(ctx context.Context, l LeaveRecord) error
	SaveRequest(ctx context.Context, r ExceptionRequest) error
	GetRequest(ctx context.Context, id RequestID) (*ExceptionRequest, error)

	// TransitionRequest moves a pending request to a terminal status.
	// Transitions are monotonic: anything but pending -> approved or
	// pending -> rejected fails with ErrRequestNotPending.
	TransitionRequest(ctx context.Context, id RequestID, to RequestStatus) (*ExceptionRequest, error)

	// ReassignManualShifts moves the covered subject's manual instances
	// within the window to the covering subject. The one-time side
	// effect of a shift-cover approval: the store marks the request
	// CoverApplied and fails replays with ErrReassignmentReplayed.
	ReassignManualShifts(ctx context.Context, requestID RequestID) (int, error)
}

// LoadSnapshot assembles a resolution-pass snapshot from the store.
// Pending leave and requests are included so callers can render them;
// the engine only acts on approved ones.
func LoadSnapshot(ctx context.Context, store RecordStore, window Window) (Snapshot, error) {
	var snap Snapshot
	var err error

	if snap.Patterns, err = store.ListPatterns(ctx, window); err != nil {
		return Snapshot{}, err
	}
	if snap.Exceptions, err = store.ListExceptions(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Manual, err = store.ListManualInstances(ctx, window); err != nil {
		return Snapshot{}, err
	}
	if snap.Leave, err = store.ListLeave(ctx, window, LeavePending, LeaveApproved); err != nil {
		return Snapshot{}, err
	}
	if snap.Requests, err = store.ListRequests(ctx, window, RequestPending, RequestApproved); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
