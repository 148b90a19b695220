package convert

import (
	"fmt"

	"github.com/coderbot16/cemconv/pkg/formats"
)

// TopologyError reports the first morph target whose face topology
// differs from its base. Frame is the candidate's zero-based position
// in the linkage sequence.
type TopologyError struct {
	Frame int
}

func (e *TopologyError) Error() string {
	return fmt.Sprintf("morph target %d uses different geometry than its base", e.Frame)
}

// validateTopology proves that every candidate shares the base's face
// topology: equal attribute array counts and pairwise-identical shape
// lists. Candidates may differ only in the values stored at the
// referenced indices. Validation stops at the first failing candidate.
func validateTopology(base *formats.Object, candidates []*formats.Object) error {
	for i, candidate := range candidates {
		if len(base.Positions) != len(candidate.Positions) ||
			len(base.Normals) != len(candidate.Normals) ||
			len(base.TexCoords) != len(candidate.TexCoords) {
			return &TopologyError{Frame: i}
		}

		if len(base.Shapes) != len(candidate.Shapes) {
			return &TopologyError{Frame: i}
		}
		for j := range base.Shapes {
			if base.Shapes[j] != candidate.Shapes[j] {
				return &TopologyError{Frame: i}
			}
		}
	}
	return nil
}
