// Package seed resolves seed selections against an ordered label list.
package seed

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Mode picks which seed set a selection addresses
type Mode int

const (
	// Regions selects region-average seeds
	Regions Mode = iota
	// Nodes selects node-response seeds
	Nodes
)

func (m Mode) String() string {
	switch m {
	case Regions:
		return "regions"
	case Nodes:
		return "nodes"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps "regions" or "nodes" to a Mode. An empty string is Regions.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "regions":
		return Regions, nil
	case "nodes":
		return Nodes, nil
	default:
		return Regions, errors.Errorf("unknown seed mode %q", s)
	}
}

// Selection describes which seeds to extract. Labels and Indices are unioned;
// only All selects every seed.
type Selection struct {
	Mode    Mode
	Labels  []string
	Indices []int
	All     bool

	// ModeSet records that Mode was given explicitly rather than defaulted.
	ModeSet bool

	// Exact matches whole labels instead of substrings.
	Exact bool

	// Flatten is reserved for collapsing the matched seeds into one combined
	// seed. It is accepted and currently has no effect.
	Flatten bool
}

// Mask marks the selected seeds, one entry per label
type Mask []bool

// Indices returns the selected positions in ascending order
func (m Mask) Indices() []int {
	indices := []int{}
	for i, ok := range m {
		if ok {
			indices = append(indices, i)
		}
	}

	return indices
}

// Count returns the number of selected seeds
func (m Mask) Count() int {
	n := 0
	for _, ok := range m {
		if ok {
			n++
		}
	}

	return n
}

// SelectionError reports a selection that resolved to no usable seeds
type SelectionError struct {
	Reason    string
	Selection Selection
}

func (e *SelectionError) Error() string {
	if e.Reason == "" {
		return "no seeds identified to extract"
	}

	return "no seeds identified to extract: " + e.Reason
}

// Match reports whether label contains any of the substrings, or equals one of
// them when exact is set. Matching is case-sensitive.
func Match(label string, substrings []string, exact bool) bool {
	for _, s := range substrings {
		if exact && label == s {
			return true
		}
		if !exact && strings.Contains(label, s) {
			return true
		}
	}

	return false
}

// Resolve turns sel into a mask over labels. A selection that matches nothing,
// including one with no criteria at all, is a SelectionError.
func Resolve(labels []string, sel Selection) (Mask, error) {
	mask := make(Mask, len(labels))

	if sel.All {
		for i := range mask {
			mask[i] = true
		}
	} else {
		for i, label := range labels {
			mask[i] = Match(label, sel.Labels, sel.Exact)
		}

		for _, idx := range sel.Indices {
			if idx < 0 || idx >= len(labels) {
				return nil, &SelectionError{
					Reason:    fmt.Sprintf("index %d out of range for %d seeds", idx, len(labels)),
					Selection: sel,
				}
			}
			mask[idx] = true
		}
	}

	if mask.Count() == 0 {
		return nil, &SelectionError{Selection: sel}
	}

	return mask, nil
}

// ResolveIndices is Resolve returning sorted indices
func ResolveIndices(labels []string, sel Selection) ([]int, error) {
	mask, err := Resolve(labels, sel)
	if err != nil {
		return nil, err
	}

	indices := mask.Indices()
	sort.Ints(indices)
	return indices, nil
}
