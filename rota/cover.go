/*
cover.go - Derived cover instance resolution

PURPOSE:
  Turns approved shift-cover and overtime-covering-leave requests into
  DerivedCoverInstances: the covering party standing in for each shift
  the covered party would have worked. Cover instances are computed per
  resolution pass and never persisted.

COVERED-PARTY RESOLUTION:
  shift_cover: the request names the covered subject directly.
  overtime:    the covered subject is looked up via the linked
               LeaveRecord; an overtime request without a linked leave is
               plain extra work and derives nothing here.

CANDIDATE GATHERING:
  First, the covered subject's resolved instances for the date
  (suppressed ones included - leave suppression is exactly what creates
  the need for cover; cover-origin rows excluded to avoid covering
  cover). If none exist, fall back to re-deriving the subject's standard
  pattern occurrences for that single date, so cover stays meaningful
  even when no row was materialized.

  A request with zero resolvable covered instances contributes nothing;
  that is a silent outcome, never an error.

SIDE EFFECT:
  Approving a shift-cover request additionally reassigns the covered
  subject's ManualShiftInstances in the request range to the covering
  subject. That is a one-time store write owned by the approval
  transition (see store.go), distinct from the live derivation here.
*/
package rota

// CoverResolver derives stand-in shifts from approved requests.
type CoverResolver struct {
	snapshot Snapshot
}

func NewCoverResolver(snapshot Snapshot) *CoverResolver {
	return &CoverResolver{snapshot: snapshot}
}

// Resolve emits one DerivedCoverInstance per covered shift per day of
// each qualifying approved request, clipped to the window.
func (cr *CoverResolver) Resolve(window Window, resolved []ResolvedInstance) []DerivedCoverInstance {
	var out []DerivedCoverInstance

	for i := range cr.snapshot.Requests {
		req := &cr.snapshot.Requests[i]
		if req.Status != RequestApproved {
			continue
		}

		covered, ok := cr.coveredSubject(req)
		if !ok {
			continue
		}

		span, ok := window.Clip(Window{From: req.From, To: req.To})
		if !ok {
			continue
		}

		for _, day := range span.Days() {
			for _, candidate := range cr.candidates(covered, day, resolved) {
				out = append(out, DerivedCoverInstance{
					ResolvedInstance: ResolvedInstance{
						SubjectID: req.SubjectID,
						ClientID:  candidate.ClientID,
						Start:     candidate.Start,
						End:       candidate.End,
						Origin:    OriginCover,
						SourceID:  string(req.ID),
						Overtime:  req.Kind == KindOvertime,
					},
					CoveredSubjectID: covered,
					RequestID:        req.ID,
				})
			}
		}
	}

	return out
}

// coveredSubject resolves whose shifts the request covers.
func (cr *CoverResolver) coveredSubject(req *ExceptionRequest) (SubjectID, bool) {
	switch req.Kind {
	case KindShiftCover:
		if req.CoveredSubjectID == "" {
			return "", false
		}
		return req.CoveredSubjectID, true

	case KindOvertime:
		if req.LinkedLeaveID == "" {
			return "", false
		}
		leave := cr.snapshot.LeaveByID(req.LinkedLeaveID)
		if leave == nil {
			return "", false
		}
		return leave.SubjectID, true

	default:
		return "", false
	}
}

// candidates gathers the covered subject's shifts for the date: resolved
// rows first, direct standard-pattern re-derivation as fallback.
func (cr *CoverResolver) candidates(subject SubjectID, day TimePoint, resolved []ResolvedInstance) []ResolvedInstance {
	var found []ResolvedInstance
	for _, ri := range resolved {
		if ri.SubjectID != subject || ri.Origin == OriginCover {
			continue
		}
		if !ri.Day().Equal(day) {
			continue
		}
		found = append(found, ri)
	}
	if len(found) > 0 {
		return found
	}
	return cr.rederive(subject, day)
}

// rederive expands the subject's standard patterns directly for one
// date, bypassing the merged set. Unlike the standard-working-day check
// it does not consult the exception set: when no row materialized at
// all, the pattern itself is the only signal left for what the covered
// party would have worked.
func (cr *CoverResolver) rederive(subject SubjectID, day TimePoint) []ResolvedInstance {
	window := Window{From: day, To: day}
	var virtual []Occurrence
	for i := range cr.snapshot.Patterns {
		p := &cr.snapshot.Patterns[i]
		if p.SubjectID != subject || p.Overtime {
			continue
		}
		if p.Validate() != nil {
			continue
		}
		virtual = append(virtual, Expand(p, window)...)
	}
	return Merge(nil, virtual)
}
