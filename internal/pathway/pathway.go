// Package pathway holds region, node and voxel signals for one atlas.
package pathway

import (
	"github.com/gonum/matrix/mat64"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/KyungWonPark/seedmap/internal/atlas"
	"github.com/KyungWonPark/seedmap/internal/calc"
	"github.com/KyungWonPark/seedmap/internal/logging"
	"github.com/KyungWonPark/seedmap/internal/seed"
)

// Model is an atlas with its voxel signals, the region averages derived from
// them, and optional node signals.
type Model struct {
	atlas      *atlas.Atlas
	regionDat  *mat64.Dense
	nodeDat    *mat64.Dense
	voxelDat   *mat64.Dense
	nodeLabels []string
	logger     logrus.FieldLogger
}

// New builds a Model. voxelDat is time by voxel in atlas voxel order; nodeDat
// may be nil, otherwise it is time by node with one label per column.
func New(atl *atlas.Atlas, voxelDat *mat64.Dense, nodeDat *mat64.Dense, nodeLabels []string, pl *calc.PipeLine, logger logrus.FieldLogger) (*Model, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if calc.IsEmpty(voxelDat) {
		return nil, errors.New("[pathway] no voxel data")
	}

	timePoints, numVoxels := voxelDat.Dims()
	if numVoxels != atl.VolInfo.NumVoxels() {
		return nil, errors.Errorf("[pathway] voxel data has %d columns but atlas has %d voxels", numVoxels, atl.VolInfo.NumVoxels())
	}

	if calc.IsEmpty(nodeDat) {
		nodeDat = nil
		nodeLabels = nil
	} else {
		rows, cols := nodeDat.Dims()
		if rows != timePoints {
			return nil, errors.Errorf("[pathway] node data has %d time points but voxel data has %d", rows, timePoints)
		}
		if cols != len(nodeLabels) {
			return nil, errors.Errorf("[pathway] node data has %d columns but %d node labels", cols, len(nodeLabels))
		}
	}

	regionDat, err := pl.RegionAverage(voxelDat, atl.Membership, atl.NumRegions())
	if err != nil {
		return nil, errors.Wrap(err, "[pathway] region averages")
	}

	logger.WithField("action", "pathway_new").
		WithField("time_points", timePoints).
		WithField("voxels", numVoxels).
		WithField("regions", atl.NumRegions()).
		WithField("nodes", len(nodeLabels)).
		Debug("pathway model ready")

	return &Model{
		atlas:      atl,
		regionDat:  regionDat,
		nodeDat:    nodeDat,
		voxelDat:   voxelDat,
		nodeLabels: nodeLabels,
		logger:     logger,
	}, nil
}

// RegionData returns the time by region average signals
func (m *Model) RegionData() mat64.Matrix {
	return m.regionDat
}

// NodeData returns the time by node signals, nil when there are none
func (m *Model) NodeData() mat64.Matrix {
	if m.nodeDat == nil {
		return nil
	}

	return m.nodeDat
}

// VoxelData returns the time by voxel signals
func (m *Model) VoxelData() mat64.Matrix {
	return m.voxelDat
}

// RegionLabels returns the atlas region labels
func (m *Model) RegionLabels() []string {
	return m.atlas.Labels
}

// NodeLabels returns the node labels
func (m *Model) NodeLabels() []string {
	return m.nodeLabels
}

// VolInfo returns the atlas volume geometry
func (m *Model) VolInfo() atlas.VolInfo {
	return m.atlas.VolInfo
}

// SelectAtlasSubset resolves sel against the atlas regions
func (m *Model) SelectAtlasSubset(sel seed.Selection) ([]int, error) {
	return m.atlas.SelectSubset(sel, m.logger)
}
