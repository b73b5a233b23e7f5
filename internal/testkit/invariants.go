// Package testkit holds cross-cutting invariant checks shared by tests.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"provel/internal/plugin"
	"provel/internal/source"
)

// CheckUnitInvariants runs the structural invariants every generated unit
// must hold against the file its mappings point into:
// 1) every generated range is non-empty and within the unit content
// 2) every original span is non-empty and within the origin file content
// 3) mappings appear in emission order (non-decreasing generated starts)
func CheckUnitInvariants(u *plugin.GeneratedUnit, origin *source.File) error {
	if u == nil || origin == nil {
		return fmt.Errorf("nil unit or origin file")
	}
	contentLen, err := safecast.Conv[uint32](len(u.Content))
	if err != nil {
		return fmt.Errorf("unit content overflow: %w", err)
	}
	originLen, err := safecast.Conv[uint32](len(origin.Content))
	if err != nil {
		return fmt.Errorf("origin content overflow: %w", err)
	}

	prevStart := uint32(0)
	for i, m := range u.Mappings {
		if m.Generated.End <= m.Generated.Start {
			return fmt.Errorf("mapping %d: empty generated range %d..%d", i, m.Generated.Start, m.Generated.End)
		}
		if m.Generated.End > contentLen {
			return fmt.Errorf("mapping %d: generated range end beyond content: %d > %d", i, m.Generated.End, contentLen)
		}
		if m.Original.Empty() {
			return fmt.Errorf("mapping %d: empty original span %v", i, m.Original)
		}
		if m.Original.File != origin.ID {
			return fmt.Errorf("mapping %d: original span points to different file: got=%d want=%d", i, m.Original.File, origin.ID)
		}
		if m.Original.End > originLen {
			return fmt.Errorf("mapping %d: original span end beyond content: %d > %d", i, m.Original.End, originLen)
		}
		if m.Generated.Start < prevStart {
			return fmt.Errorf("mapping %d: out of emission order: start %d after %d", i, m.Generated.Start, prevStart)
		}
		prevStart = m.Generated.Start
	}
	return nil
}
