// Package connectivity builds seed-based correlation maps over voxel time series.
package connectivity

import (
	"fmt"

	"github.com/gonum/matrix/mat64"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/KyungWonPark/seedmap/internal/atlas"
	"github.com/KyungWonPark/seedmap/internal/calc"
	"github.com/KyungWonPark/seedmap/internal/logging"
	"github.com/KyungWonPark/seedmap/internal/seed"
)

// Model supplies the signals and labels maps are built from.
// All matrices are time by signal.
type Model interface {
	RegionData() mat64.Matrix
	// NodeData returns nil when the model has no node signals.
	NodeData() mat64.Matrix
	VoxelData() mat64.Matrix
	RegionLabels() []string
	NodeLabels() []string
	VolInfo() atlas.VolInfo
	// SelectAtlasSubset resolves a selection against the region atlas.
	SelectAtlasSubset(sel seed.Selection) ([]int, error)
}

// Builder turns a Model and a seed selection into correlation maps
type Builder struct {
	pl     *calc.PipeLine
	logger logrus.FieldLogger
}

// NewBuilder returns a Builder computing on pl
func NewBuilder(pl *calc.PipeLine, logger logrus.FieldLogger) *Builder {
	if logger == nil {
		logger = logging.Discard()
	}

	return &Builder{pl: pl, logger: logger}
}

// CorrelationMaps correlates every selected seed with every voxel of m.
// It returns (nil, nil) when node seeds are requested and m has no node data.
func (b *Builder) CorrelationMaps(m Model, sel seed.Selection) (*MapCollection, error) {
	logger := b.logger.WithField("action", "correlation_maps").WithField("mode", sel.Mode.String())

	voxelDat := m.VoxelData()
	if calc.IsEmpty(voxelDat) {
		return nil, &calc.DataError{Op: "CorrelationMaps", Reason: "no voxel data"}
	}

	if sel.Flatten {
		logger.Warn("flatten is not supported, seeds are kept separate")
	}

	var (
		refDat      mat64.Matrix
		labels      []string
		indices     []int
		description string
		err         error
	)

	switch sel.Mode {
	case seed.Regions:
		refDat = m.RegionData()
		labels = m.RegionLabels()
		description = RegionDescription

		indices, err = m.SelectAtlasSubset(sel)
		if err != nil {
			return nil, err
		}
		if len(indices) == 0 {
			return nil, &seed.SelectionError{Selection: sel}
		}

	case seed.Nodes:
		refDat = m.NodeData()
		if calc.IsEmpty(refDat) {
			logger.Info("no node data, skipping node correlation maps")
			return nil, nil
		}
		labels = m.NodeLabels()
		description = NodeDescription

		indices, err = seed.ResolveIndices(labels, sel)
		if err != nil {
			return nil, err
		}

	default:
		return nil, errors.Errorf("unknown seed mode %v", sel.Mode)
	}

	if calc.IsEmpty(refDat) {
		return nil, &calc.DataError{Op: "CorrelationMaps", Reason: "no " + sel.Mode.String() + " data"}
	}
	if _, cols := refDat.Dims(); cols != len(labels) {
		return nil, &calc.DataError{
			Op:     "CorrelationMaps",
			Reason: fmt.Sprintf("%d %s signals but %d labels", cols, sel.Mode, len(labels)),
		}
	}

	selected := make([]string, len(indices))
	for k, i := range indices {
		if i < 0 || i >= len(labels) {
			return nil, &seed.SelectionError{
				Reason:    fmt.Sprintf("index %d out of range for %d seeds", i, len(labels)),
				Selection: sel,
			}
		}
		selected[k] = labels[i]
	}

	logger.WithField("seeds", len(indices)).Debug("seeds resolved")

	refSel, err := calc.Columns(refDat, indices)
	if err != nil {
		return nil, err
	}

	r, err := b.pl.Pearson(refSel, voxelDat)
	if err != nil {
		return nil, err
	}

	_, numVoxels := voxelDat.Dims()
	logger.WithField("seeds", len(indices)).
		WithField("voxels", numVoxels).
		Debug("correlation computed")

	return BuildMaps(r.T(), selected, m.VolInfo(), description)
}
