/*
pack.go - Overlap-aware timeline row packing

PURPOSE:
  Assigns each instance of one subject-group (one client or one staff
  member) on one day to a display row, minimizing row count so that no
  two instances sharing a row overlap.

POLICY:
  Overlap is the half-open test new.start < existing.end AND
  new.end > existing.start. Touching endpoints (one ends exactly as
  another starts) do NOT overlap and may share a row. This is the single
  packing policy for the whole system; there are no per-view variants.

ALGORITHM:
  Sort by start ascending (stable), then place each instance in the
  first existing row, in creation order, whose most recent occupant does
  not overlap it; open a new row when none fits. Greedy first-fit
  interval coloring - optimal row count for this sorted variant when
  rows track their latest end, with the documented caveat that the
  specific row an instance lands in is a heuristic choice.
*/
package rota

import (
	"sort"
	"time"
)

// RowAssignment maps an instance (by its position in the input slice)
// to a display row index.
type RowAssignment struct {
	Index int // position in the input slice
	Row   int
}

// PackRows assigns row indices to the given instances. Row numbering is
// dense starting at 0; the returned count is the number of rows opened.
func PackRows(instances []ResolvedInstance) (assignments []RowAssignment, rowCount int) {
	if len(instances) == 0 {
		return nil, 0
	}

	order := make([]int, len(instances))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return instances[order[a]].Start.Before(instances[order[b]].Start)
	})

	// rowEnds[r] is the end of the most recent occupant of row r.
	var rowEnds []time.Time
	assignments = make([]RowAssignment, 0, len(instances))

	for _, idx := range order {
		inst := instances[idx]
		placed := -1
		for r, end := range rowEnds {
			// Touching is allowed: end == start fits.
			if !inst.Start.Before(end) {
				placed = r
				break
			}
		}
		if placed == -1 {
			rowEnds = append(rowEnds, inst.End)
			placed = len(rowEnds) - 1
		} else if inst.End.After(rowEnds[placed]) {
			rowEnds[placed] = inst.End
		}
		assignments = append(assignments, RowAssignment{Index: idx, Row: placed})
	}

	sort.Slice(assignments, func(a, b int) bool {
		return assignments[a].Index < assignments[b].Index
	})
	return assignments, len(rowEnds)
}
