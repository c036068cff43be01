package pathway

import (
	"context"

	"github.com/gonum/matrix/mat64"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/KyungWonPark/seedmap/internal/atlas"
	"github.com/KyungWonPark/seedmap/internal/calc"
	"github.com/KyungWonPark/seedmap/internal/io"
	"github.com/KyungWonPark/seedmap/internal/logging"
)

// Source names the files a Model is loaded from. Voxel signals come from
// VoxelsNpy when set, otherwise from Nifti over [TimeStart, TimeEnd).
type Source struct {
	AtlasDir   string
	Nifti      string
	VoxelsNpy  string
	TimeStart  int
	TimeEnd    int
	NodesNpy   string
	NodeLabels string
}

// Load reads the atlas first, then voxel and node inputs concurrently
func Load(ctx context.Context, src Source, pl *calc.PipeLine, logger logrus.FieldLogger) (*Model, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.WithField("action", "pathway_load")

	atl, err := atlas.Load(src.AtlasDir)
	if err != nil {
		return nil, err
	}
	logger.WithField("regions", atl.NumRegions()).
		WithField("voxels", atl.VolInfo.NumVoxels()).
		Debug("atlas loaded")

	var (
		voxelDat   *mat64.Dense
		nodeDat    *mat64.Dense
		nodeLabels []string
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if src.VoxelsNpy != "" {
			voxelDat, err = io.NpytoMat64(src.VoxelsNpy)
		} else {
			coords := make([][3]int, atl.VolInfo.NumVoxels())
			for i, v := range atl.VolInfo.Voxels {
				coords[i] = [3]int{v.X, v.Y, v.Z}
			}
			voxelDat, err = io.NiftiToMat64(src.Nifti, coords, src.TimeStart, src.TimeEnd, pl.GetNP())
		}
		if err != nil {
			return errors.Wrap(err, "[pathway] voxel data")
		}

		return ctx.Err()
	})

	if src.NodesNpy != "" {
		g.Go(func() error {
			var err error
			nodeDat, err = io.NpytoMat64(src.NodesNpy)
			if err != nil {
				return errors.Wrap(err, "[pathway] node data")
			}

			return ctx.Err()
		})

		g.Go(func() error {
			var err error
			nodeLabels, err = io.ReadLabels(src.NodeLabels)
			if err != nil {
				return errors.Wrap(err, "[pathway] node labels")
			}

			return ctx.Err()
		})
	} else {
		logger.Debug("no node data configured")
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return New(atl, voxelDat, nodeDat, nodeLabels, pl, logger)
}
