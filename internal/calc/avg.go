package calc

import (
	"math"

	"github.com/gonum/matrix/mat64"
	"gonum.org/v1/gonum/floats"
)

// acc adds column index of inputMat into dst
func acc(inputMat mat64.Matrix, index int, dst []float64) {
	rows, _ := inputMat.Dims()

	for t := 0; t < rows; t++ {
		dst[t] += inputMat.At(t, index)
	}

	return
}

// RegionAverage averages voxel columns into region columns.
// membership[j] is the region index of voxel column j, or -1 for no region.
// Regions without member voxels come out as NaN columns.
func (p *PipeLine) RegionAverage(voxelMat mat64.Matrix, membership []int, numRegions int) (*mat64.Dense, error) {
	rows, cols := voxelMat.Dims()

	if len(membership) != cols {
		return nil, dataErrorf("RegionAverage", "%d voxel columns but %d membership entries", cols, len(membership))
	}
	if numRegions < 1 {
		return nil, dataErrorf("RegionAverage", "need at least one region, got %d", numRegions)
	}

	members := make([][]int, numRegions)
	for j, r := range membership {
		if r < 0 {
			continue
		}
		if r >= numRegions {
			return nil, dataErrorf("RegionAverage", "voxel %d belongs to region %d of %d", j, r, numRegions)
		}
		members[r] = append(members[r], j)
	}

	outputMat := mat64.NewDense(rows, numRegions, nil)

	p.dispatch(numRegions, func(index int) {
		region := make([]float64, rows)
		if len(members[index]) == 0 {
			for t := range region {
				region[t] = math.NaN()
			}
		} else {
			for _, j := range members[index] {
				acc(voxelMat, j, region)
			}
			floats.Scale(1/float64(len(members[index])), region)
		}

		for t := 0; t < rows; t++ {
			outputMat.Set(t, index, region[t])
		}
	})

	for r := range members {
		if len(members[r]) == 0 {
			p.logger.WithField("action", "region_average").
				WithField("region", r).
				Warn("region has no member voxels")
		}
	}

	return outputMat, nil
}
