/*
resolve.go - One full resolution pass

PURPOSE:
  Runs the whole pipeline over an immutable snapshot:

    patterns + exceptions -> virtual occurrences
    virtual + manual      -> merged instance set
    approved leave        -> suppression flags
    approved requests     -> derived cover instances

  The pass is a pure, idempotent function of (snapshot, window, now) and
  is safe for concurrent re-invocation. It performs no I/O and holds no
  mutable state; "now" is threaded explicitly and never read from the
  environment.

FAILURE ISOLATION:
  A malformed pattern is skipped and reported in Result.Problems; it
  never blocks another subject's timeline.
*/
package rota

import (
	"fmt"
	"time"
)

// Result is the output of one resolution pass.
type Result struct {
	// Instances is the merged, suppression-flagged manual + pattern set.
	Instances []ResolvedInstance

	// Covers are the derived stand-in shifts for the window.
	Covers []DerivedCoverInstance

	// Problems records skipped records (malformed patterns). The pass
	// still succeeds for everything else.
	Problems []error

	// Now is the wall-clock time the pass was computed against.
	Now time.Time
}

// All returns instances plus covers as one flat list, for packing and
// rendering.
func (r Result) All() []ResolvedInstance {
	out := make([]ResolvedInstance, 0, len(r.Instances)+len(r.Covers))
	out = append(out, r.Instances...)
	for _, c := range r.Covers {
		out = append(out, c.ResolvedInstance)
	}
	return out
}

// ForSubject filters the flat instance list to one staff member.
func (r Result) ForSubject(subject SubjectID) []ResolvedInstance {
	var out []ResolvedInstance
	for _, ri := range r.All() {
		if ri.SubjectID == subject {
			out = append(out, ri)
		}
	}
	return out
}

// ForClient filters the flat instance list to one client.
func (r Result) ForClient(client ClientID) []ResolvedInstance {
	var out []ResolvedInstance
	for _, ri := range r.All() {
		if ri.ClientID == client {
			out = append(out, ri)
		}
	}
	return out
}

// Resolve runs one resolution pass over the snapshot for the window.
func Resolve(snapshot Snapshot, window Window, now time.Time) Result {
	result := Result{Now: now}
	exceptions := snapshot.exceptionSet()

	// 1. Expand every valid pattern; collect problems, keep going.
	var virtual []Occurrence
	for i := range snapshot.Patterns {
		p := &snapshot.Patterns[i]
		if err := p.Validate(); err != nil {
			result.Problems = append(result.Problems,
				fmt.Errorf("pattern %s (subject %s): %w", p.ID, p.SubjectID, err))
			continue
		}
		virtual = append(virtual, ExpandWithExceptions(p, window, exceptions[p.ID])...)
	}

	// 2. Merge with manual instances; manual wins on slot collision.
	merged := Merge(snapshot.Manual, virtual)

	// 3. Apply leave suppression (overtime-exempt).
	leaveResolver := NewLeaveConflictResolver(snapshot)
	result.Instances = leaveResolver.Apply(merged)

	// 4. Derive cover instances from approved requests.
	coverResolver := NewCoverResolver(snapshot)
	result.Covers = coverResolver.Resolve(window, result.Instances)

	return result
}
