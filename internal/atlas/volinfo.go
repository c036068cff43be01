package atlas

import (
	"math"

	"github.com/pkg/errors"
)

// Voxel is a position in the volume grid, zero based
type Voxel struct {
	X int
	Y int
	Z int
}

// VolInfo is the volume geometry of an atlas. Voxels lists the grid position
// of every voxel column in voxel-ordered signal matrices.
type VolInfo struct {
	Dims      [3]int        `json:"dims"`
	VoxelSize [3]float64    `json:"voxel_size"`
	Affine    [4][4]float64 `json:"affine"`
	Voxels    []Voxel       `json:"-"`
}

// NumVoxels returns the number of in-mask voxels
func (v VolInfo) NumVoxels() int {
	return len(v.Voxels)
}

// GridSize returns the number of grid positions
func (v VolInfo) GridSize() int {
	return v.Dims[0] * v.Dims[1] * v.Dims[2]
}

func (v VolInfo) offset(vox Voxel) (int, bool) {
	if vox.X < 0 || vox.Y < 0 || vox.Z < 0 || vox.X >= v.Dims[0] || vox.Y >= v.Dims[1] || vox.Z >= v.Dims[2] {
		return 0, false
	}

	// row-major (x, y, z), z fastest
	return (vox.X*v.Dims[1]+vox.Y)*v.Dims[2] + vox.Z, true
}

// Scatter places one value per voxel into a dense grid of GridSize entries.
// Positions outside the voxel list are NaN.
func (v VolInfo) Scatter(values []float64) ([]float64, error) {
	if len(values) != len(v.Voxels) {
		return nil, errors.Errorf("[Scatter] %d values for %d voxels", len(values), len(v.Voxels))
	}

	grid := make([]float64, v.GridSize())
	for i := range grid {
		grid[i] = math.NaN()
	}

	for i, vox := range v.Voxels {
		off, ok := v.offset(vox)
		if !ok {
			return nil, errors.Errorf("[Scatter] voxel %d at (%d, %d, %d) outside grid %v", i, vox.X, vox.Y, vox.Z, v.Dims)
		}
		grid[off] = values[i]
	}

	return grid, nil
}

// World maps a voxel to world coordinates through the affine
func (v VolInfo) World(vox Voxel) [3]float64 {
	var out [3]float64
	in := [4]float64{float64(vox.X), float64(vox.Y), float64(vox.Z), 1}

	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			out[r] += v.Affine[r][c] * in[c]
		}
	}

	return out
}
