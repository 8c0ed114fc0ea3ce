// Package store provides RecordStore implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/rota-engine/rota"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	patterns   map[rota.PatternID]rota.RecurrencePattern
	exceptions map[exceptionKey]rota.PatternException
	manual     map[rota.InstanceID]rota.ManualShiftInstance
	leave      map[rota.LeaveID]rota.LeaveRecord
	requests   map[rota.RequestID]rota.ExceptionRequest
}

type exceptionKey struct {
	PatternID rota.PatternID
	Date      string
}

func NewMemory() *Memory {
	return &Memory{
		patterns:   make(map[rota.PatternID]rota.RecurrencePattern),
		exceptions: make(map[exceptionKey]rota.PatternException),
		manual:     make(map[rota.InstanceID]rota.ManualShiftInstance),
		leave:      make(map[rota.LeaveID]rota.LeaveRecord),
		requests:   make(map[rota.RequestID]rota.ExceptionRequest),
	}
}

var _ rota.RecordStore = (*Memory)(nil)

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

func (m *Memory) ListPatterns(_ context.Context, window rota.Window) ([]rota.RecurrencePattern, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []rota.RecurrencePattern
	for _, p := range m.patterns {
		// Keep any pattern whose validity window touches the query window.
		if p.EndDate != nil && p.EndDate.Before(window.From) {
			continue
		}
		if p.StartDate.After(window.To) {
			continue
		}
		out = append(out, p)
	}
	sortPatterns(out)
	return out, nil
}

func (m *Memory) ListExceptions(_ context.Context) ([]rota.PatternException, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]rota.PatternException, 0, len(m.exceptions))
	for _, ex := range m.exceptions {
		out = append(out, ex)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PatternID != out[j].PatternID {
			return out[i].PatternID < out[j].PatternID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (m *Memory) ListManualInstances(_ context.Context, window rota.Window) ([]rota.ManualShiftInstance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []rota.ManualShiftInstance
	for _, inst := range m.manual {
		if window.Contains(rota.DayOf(inst.Start)) {
			out = append(out, inst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ListLeave(_ context.Context, window rota.Window, statuses ...rota.LeaveStatus) ([]rota.LeaveRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []rota.LeaveRecord
	for _, l := range m.leave {
		if !statusInLeave(l.Status, statuses) {
			continue
		}
		if l.To.Before(window.From) || l.From.After(window.To) {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ListRequests(_ context.Context, window rota.Window, statuses ...rota.RequestStatus) ([]rota.ExceptionRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []rota.ExceptionRequest
	for _, r := range m.requests {
		if !statusInRequest(r.Status, statuses) {
			continue
		}
		if r.To.Before(window.From) || r.From.After(window.To) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetRequest(_ context.Context, id rota.RequestID) (*rota.ExceptionRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.requests[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// -----------------------------------------------------------------------------
// Writes
// -----------------------------------------------------------------------------

func (m *Memory) SavePattern(_ context.Context, p rota.RecurrencePattern) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns[p.ID] = p
	return nil
}

func (m *Memory) DeletePattern(_ context.Context, id rota.PatternID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.patterns, id)
	for k := range m.exceptions {
		if k.PatternID == id {
			delete(m.exceptions, k)
		}
	}
	return nil
}

func (m *Memory) SaveException(_ context.Context, ex rota.PatternException) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// (pattern, date) is unique; saving twice is a no-op overwrite.
	m.exceptions[exceptionKey{PatternID: ex.PatternID, Date: ex.Date.String()}] = ex
	return nil
}

func (m *Memory) SaveManualInstance(_ context.Context, inst rota.ManualShiftInstance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.manual[inst.ID] = inst
	return nil
}

func (m *Memory) SaveLeave(_ context.Context, l rota.LeaveRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.leave[l.ID]; ok {
		// Monotonic: a terminal status never moves again.
		if existing.Status != rota.LeavePending && existing.Status != l.Status {
			return rota.ErrRequestNotPending
		}
	}
	m.leave[l.ID] = l
	return nil
}

func (m *Memory) SaveRequest(_ context.Context, r rota.ExceptionRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[r.ID] = r
	return nil
}

func (m *Memory) TransitionRequest(_ context.Context, id rota.RequestID, to rota.RequestStatus) (*rota.ExceptionRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.requests[id]
	if !ok {
		return nil, rota.ErrRequestNotPending
	}
	if r.Status != rota.RequestPending {
		return nil, rota.ErrRequestNotPending
	}
	r.Status = to
	m.requests[id] = r
	return &r, nil
}

func (m *Memory) ReassignManualShifts(_ context.Context, requestID rota.RequestID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.requests[requestID]
	if !ok {
		return 0, rota.ErrRequestNotPending
	}
	if req.CoverApplied {
		return 0, rota.ErrReassignmentReplayed
	}

	span := rota.Window{From: req.From, To: req.To}
	moved := 0
	for id, inst := range m.manual {
		if inst.SubjectID != req.CoveredSubjectID {
			continue
		}
		if !span.Contains(rota.DayOf(inst.Start)) {
			continue
		}
		inst.SubjectID = req.SubjectID
		m.manual[id] = inst
		moved++
	}

	req.CoverApplied = true
	m.requests[requestID] = req
	return moved, nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func sortPatterns(ps []rota.RecurrencePattern) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
}

func statusInLeave(s rota.LeaveStatus, set []rota.LeaveStatus) bool {
	if len(set) == 0 {
		return true
	}
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func statusInRequest(s rota.RequestStatus, set []rota.RequestStatus) bool {
	if len(set) == 0 {
		return true
	}
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
