package seed

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeywordsAndIndices(t *testing.T) {
	logger, hook := test.NewNullLogger()

	sel := Parse([]string{"nodes", "flatten", "3", "exact", "all"}, logger)

	assert.Equal(t, Selection{
		Mode:    Nodes,
		ModeSet: true,
		Indices: []int{3},
		All:     true,
		Exact:   true,
		Flatten: true,
	}, sel)
	assert.Empty(t, hook.AllEntries())
}

func TestParseUnrecognizedBecomesLabel(t *testing.T) {
	logger, hook := test.NewNullLogger()

	sel := Parse([]string{"regions", "DMN"}, logger)

	assert.Equal(t, Regions, sel.Mode)
	assert.Equal(t, []string{"DMN"}, sel.Labels)

	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "DMN", entry.Data["token"])
}

func TestParseNilLogger(t *testing.T) {
	sel := Parse([]string{"Visual"}, nil)

	assert.Equal(t, []string{"Visual"}, sel.Labels)
}

func TestMerge(t *testing.T) {
	base := Selection{Labels: []string{"DMN"}, Indices: []int{1}}
	merged := base.Merge(Selection{Mode: Nodes, ModeSet: true, Labels: []string{"Visual"}, Flatten: true})

	assert.Equal(t, Selection{
		Mode:    Nodes,
		ModeSet: true,
		Labels:  []string{"DMN", "Visual"},
		Indices: []int{1},
		Flatten: true,
	}, merged)
	assert.Equal(t, []string{"DMN"}, base.Labels)
}

func TestMergeExplicitRegionsOverridesNodes(t *testing.T) {
	base := Selection{Mode: Nodes, Labels: []string{"DMN"}}

	merged := base.Merge(Parse([]string{"regions"}, nil))
	assert.Equal(t, Regions, merged.Mode)

	merged = base.Merge(Parse([]string{"Visual"}, nil))
	assert.Equal(t, Nodes, merged.Mode)
	assert.Equal(t, []string{"DMN", "Visual"}, merged.Labels)
}
