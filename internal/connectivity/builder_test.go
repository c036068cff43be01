package connectivity

import (
	"errors"
	"math"
	"testing"

	"github.com/gonum/matrix/mat64"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KyungWonPark/seedmap/internal/atlas"
	"github.com/KyungWonPark/seedmap/internal/calc"
	"github.com/KyungWonPark/seedmap/internal/seed"
)

type fakeModel struct {
	regionDat    *mat64.Dense
	nodeDat      *mat64.Dense
	voxelDat     *mat64.Dense
	regionLabels []string
	nodeLabels   []string
	vol          atlas.VolInfo
}

func (m *fakeModel) RegionData() mat64.Matrix { return m.regionDat }

func (m *fakeModel) NodeData() mat64.Matrix {
	if m.nodeDat == nil {
		return nil
	}
	return m.nodeDat
}

func (m *fakeModel) VoxelData() mat64.Matrix { return m.voxelDat }
func (m *fakeModel) RegionLabels() []string  { return m.regionLabels }
func (m *fakeModel) NodeLabels() []string    { return m.nodeLabels }
func (m *fakeModel) VolInfo() atlas.VolInfo  { return m.vol }

func (m *fakeModel) SelectAtlasSubset(sel seed.Selection) ([]int, error) {
	return seed.ResolveIndices(m.regionLabels, sel)
}

// 5 time points, 3 regions, 4 voxels
func newFakeModel() *fakeModel {
	return &fakeModel{
		regionDat: mat64.NewDense(5, 3, []float64{
			1, 2, 5,
			2, 1, 3,
			3, 4, 4,
			4, 3, 1,
			5, 5, 2,
		}),
		voxelDat: mat64.NewDense(5, 4, []float64{
			1, 5, 2, 7,
			2, 4, 2, 7,
			3, 3, 5, 7,
			4, 2, 3, 7,
			5, 1, 6, 7,
		}),
		regionLabels: []string{"DMN_L", "DMN_R", "Visual"},
		vol: atlas.VolInfo{
			Dims:   [3]int{4, 1, 1},
			Voxels: []atlas.Voxel{{X: 0}, {X: 1}, {X: 2}, {X: 3}},
		},
	}
}

func newTestBuilder(logger logrus.FieldLogger) *Builder {
	return NewBuilder(calc.Init(2, 2, nil), logger)
}

func TestCorrelationMapsBySubstring(t *testing.T) {
	m := newFakeModel()

	coll, err := newTestBuilder(nil).CorrelationMaps(m, seed.Selection{Labels: []string{"DMN"}})
	require.NoError(t, err)

	require.Equal(t, 2, coll.Len())
	assert.Equal(t, []string{"DMN_L", "DMN_R"}, coll.Labels())
	assert.Equal(t, RegionDescription, coll.Description)
	assert.Equal(t, m.vol, coll.VolInfo)

	// region 0 equals voxel 0 and mirrors voxel 1; voxel 3 is constant
	dmnL := coll.Maps[0].Values
	require.Len(t, dmnL, 4)
	assert.InDelta(t, 1.0, dmnL[0], 1e-12)
	assert.InDelta(t, -1.0, dmnL[1], 1e-12)
	assert.True(t, math.IsNaN(dmnL[3]))
}

func TestCorrelationMapsByIndex(t *testing.T) {
	coll, err := newTestBuilder(nil).CorrelationMaps(newFakeModel(), seed.Selection{Indices: []int{2}})
	require.NoError(t, err)

	require.Equal(t, 1, coll.Len())
	assert.Equal(t, "Visual", coll.Maps[0].Label)
}

func TestCorrelationMapsNoMatch(t *testing.T) {
	coll, err := newTestBuilder(nil).CorrelationMaps(newFakeModel(), seed.Selection{Labels: []string{"Motor"}})
	assert.Nil(t, coll)

	var selErr *seed.SelectionError
	assert.True(t, errors.As(err, &selErr))
}

func TestCorrelationMapsNodesWithoutData(t *testing.T) {
	logger, hook := test.NewNullLogger()

	coll, err := newTestBuilder(logger).CorrelationMaps(newFakeModel(), seed.Selection{Mode: seed.Nodes})
	assert.NoError(t, err)
	assert.Nil(t, coll)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
}

func TestCorrelationMapsNodes(t *testing.T) {
	m := newFakeModel()
	m.nodeDat = mat64.NewDense(5, 2, []float64{
		5, 1,
		4, 2,
		3, 3,
		2, 4,
		1, 5,
	})
	m.nodeLabels = []string{"DMN_L_n1", "Visual_n1"}

	coll, err := newTestBuilder(nil).CorrelationMaps(m, seed.Selection{Mode: seed.Nodes, Labels: []string{"Visual"}})
	require.NoError(t, err)

	require.Equal(t, 1, coll.Len())
	assert.Equal(t, "Visual_n1", coll.Maps[0].Label)
	assert.Equal(t, NodeDescription, coll.Description)
	assert.InDelta(t, 1.0, coll.Maps[0].Values[0], 1e-12)

	_, err = newTestBuilder(nil).CorrelationMaps(m, seed.Selection{Mode: seed.Nodes, Labels: []string{"Motor"}})
	var selErr *seed.SelectionError
	assert.True(t, errors.As(err, &selErr))
}

func TestCorrelationMapsSingleTimePoint(t *testing.T) {
	m := newFakeModel()
	m.regionDat = mat64.NewDense(1, 3, []float64{1, 2, 3})
	m.voxelDat = mat64.NewDense(1, 4, []float64{1, 2, 3, 4})

	coll, err := newTestBuilder(nil).CorrelationMaps(m, seed.Selection{All: true})
	assert.Nil(t, coll)

	var dataErr *calc.DataError
	assert.True(t, errors.As(err, &dataErr))
}

func TestCorrelationMapsIdenticalSeeds(t *testing.T) {
	m := newFakeModel()
	m.regionDat.SetCol(1, mat64.Col(nil, 0, m.regionDat))

	coll, err := newTestBuilder(nil).CorrelationMaps(m, seed.Selection{Indices: []int{0, 1}})
	require.NoError(t, err)

	require.Equal(t, 2, coll.Len())
	for v := range coll.Maps[0].Values {
		a, b := coll.Maps[0].Values[v], coll.Maps[1].Values[v]
		if math.IsNaN(a) {
			assert.True(t, math.IsNaN(b))
			continue
		}
		assert.Equal(t, a, b)
	}
}

func TestCorrelationMapsLabelCountMismatch(t *testing.T) {
	m := newFakeModel()
	m.regionLabels = []string{"DMN_L", "DMN_R"}

	_, err := newTestBuilder(nil).CorrelationMaps(m, seed.Selection{All: true})

	var dataErr *calc.DataError
	assert.True(t, errors.As(err, &dataErr))
}

func TestCorrelationMapsFlattenIsNoOp(t *testing.T) {
	logger, hook := test.NewNullLogger()

	coll, err := newTestBuilder(logger).CorrelationMaps(newFakeModel(), seed.Selection{Labels: []string{"DMN"}, Flatten: true})
	require.NoError(t, err)

	assert.Equal(t, 2, coll.Len())

	warned := false
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestCorrelationMapsNoVoxels(t *testing.T) {
	m := newFakeModel()
	m.voxelDat = nil

	_, err := newTestBuilder(nil).CorrelationMaps(m, seed.Selection{Mode: seed.Nodes})

	var dataErr *calc.DataError
	assert.True(t, errors.As(err, &dataErr))
}

func TestCorrelationMapsWithoutCriteria(t *testing.T) {
	m := newFakeModel()
	m.nodeDat = mat64.NewDense(5, 2, []float64{
		5, 1,
		4, 2,
		3, 3,
		2, 4,
		1, 5,
	})
	m.nodeLabels = []string{"DMN_L_n1", "Visual_n1"}

	for _, mode := range []seed.Mode{seed.Regions, seed.Nodes} {
		coll, err := newTestBuilder(nil).CorrelationMaps(m, seed.Selection{Mode: mode})
		assert.Nil(t, coll)

		var selErr *seed.SelectionError
		assert.True(t, errors.As(err, &selErr), "mode %v", mode)
	}
}
