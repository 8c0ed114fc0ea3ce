/*
merge.go - Manual/virtual instance de-duplication

PURPOSE:
  Combines hand-entered ManualShiftInstances with pattern-derived virtual
  occurrences into one de-duplicated ResolvedInstance list. An explicit
  override must always win over an automatically generated rotation entry
  for the same slot, regardless of input order.

SLOT KEY:
  (subject, client, minute-rounded start). A virtual occurrence colliding
  with a manual entry on that key is discarded; manual entries are never
  discarded. Merging is idempotent.
*/
package rota

import (
	"sort"
	"time"
)

type slotKey struct {
	Subject SubjectID
	Client  ClientID
	Start   int64 // unix minutes
}

func newSlotKey(subject SubjectID, client ClientID, start time.Time) slotKey {
	return slotKey{Subject: subject, Client: client, Start: start.Unix() / 60}
}

// Merge produces the combined, de-duplicated instance list, tagged with
// origin manual or pattern. Output is ordered by start time, then
// subject, for determinism.
func Merge(manual []ManualShiftInstance, virtual []Occurrence) []ResolvedInstance {
	out := make([]ResolvedInstance, 0, len(manual)+len(virtual))
	taken := make(map[slotKey]bool, len(manual))

	for _, m := range manual {
		out = append(out, ResolvedInstance{
			SubjectID: m.SubjectID,
			ClientID:  m.ClientID,
			Start:     m.Start,
			End:       m.End,
			Origin:    OriginManual,
			SourceID:  string(m.ID),
		})
		taken[newSlotKey(m.SubjectID, m.ClientID, m.Start)] = true
	}

	for _, occ := range virtual {
		p := occ.Pattern
		k := newSlotKey(p.SubjectID, p.ClientID, occ.Start)
		if taken[k] {
			continue
		}
		taken[k] = true
		out = append(out, ResolvedInstance{
			SubjectID: p.SubjectID,
			ClientID:  p.ClientID,
			Start:     occ.Start,
			End:       occ.End,
			Origin:    OriginPattern,
			SourceID:  string(p.ID),
			Overtime:  p.Overtime,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].SubjectID < out[j].SubjectID
	})
	return out
}
