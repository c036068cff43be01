package seed

import (
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/KyungWonPark/seedmap/internal/logging"
)

// Parse builds a Selection from free-form tokens. Keywords are "regions",
// "nodes", "all", "exact" and "flatten"; integer tokens become indices.
// Any other token is logged as unrecognized and kept as a label substring.
func Parse(tokens []string, logger logrus.FieldLogger) Selection {
	if logger == nil {
		logger = logging.Discard()
	}

	var sel Selection
	for _, tok := range tokens {
		switch tok {
		case "regions":
			sel.Mode, sel.ModeSet = Regions, true
		case "nodes":
			sel.Mode, sel.ModeSet = Nodes, true
		case "all":
			sel.All = true
		case "exact":
			sel.Exact = true
		case "flatten":
			sel.Flatten = true
		default:
			if idx, err := strconv.Atoi(tok); err == nil {
				sel.Indices = append(sel.Indices, idx)
				continue
			}

			logger.WithField("action", "seed_parse").
				WithField("token", tok).
				Warn("unrecognized option, using it as a label")
			sel.Labels = append(sel.Labels, tok)
		}
	}

	return sel
}

// Merge returns s with the criteria of other appended. An explicit mode in
// other replaces the mode of s.
func (s Selection) Merge(other Selection) Selection {
	out := s
	out.Labels = append(append([]string{}, s.Labels...), other.Labels...)
	out.Indices = append(append([]int{}, s.Indices...), other.Indices...)
	out.All = s.All || other.All
	out.Exact = s.Exact || other.Exact
	out.Flatten = s.Flatten || other.Flatten
	if other.ModeSet {
		out.Mode = other.Mode
		out.ModeSet = true
	}

	return out
}
