package main

import (
	"os"
	"path/filepath"

	"github.com/gonum/matrix/mat64"
	"github.com/pkg/errors"

	"github.com/KyungWonPark/seedmap/internal/config"
	"github.com/KyungWonPark/seedmap/internal/connectivity"
	"github.com/KyungWonPark/seedmap/internal/io"
)

// Files written into a run directory
const (
	mapsBase        = "maps"
	labelsFile      = "labels.txt"
	descriptionFile = "description.txt"
	coordsFile      = "coords.csv"
	volumeFile      = "maps_volume.npy"
)

// writeMaps exports coll into dir: the voxel by seed matrix in the chosen
// format, seed labels, the description and per-voxel coordinates.
func writeMaps(dir string, out config.OutputConfig, coll *connectivity.MapCollection) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create output dir %s", dir)
	}

	matrix := coll.Matrix()

	var err error
	switch out.Format {
	case config.FormatNpy:
		err = io.Mat64toNpy(filepath.Join(dir, mapsBase+".npy"), matrix)
	case config.FormatCSV:
		err = io.Mat64toCSV(filepath.Join(dir, mapsBase+".csv"), matrix)
	case config.FormatBin:
		err = io.F64SliceToBin(filepath.Join(dir, mapsBase+".bin"), io.RowMajor(matrix))
	default:
		err = errors.Errorf("unknown output format %q", out.Format)
	}
	if err != nil {
		return err
	}

	if err := io.WriteLabels(filepath.Join(dir, labelsFile), coll.Labels()); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(dir, descriptionFile), []byte(coll.Description+"\n"), 0o644); err != nil {
		return errors.Wrap(err, "write description")
	}

	if err := io.Mat64toCSV(filepath.Join(dir, coordsFile), coordinates(coll)); err != nil {
		return err
	}

	if out.Volume {
		if err := writeVolume(filepath.Join(dir, volumeFile), coll); err != nil {
			return err
		}
	}

	return nil
}

// coordinates lists grid and world coordinates, one row per voxel
func coordinates(coll *connectivity.MapCollection) *mat64.Dense {
	vol := coll.VolInfo
	coords := mat64.NewDense(vol.NumVoxels(), 6, nil)

	for i, vox := range vol.Voxels {
		world := vol.World(vox)
		coords.SetRow(i, []float64{
			float64(vox.X), float64(vox.Y), float64(vox.Z),
			world[0], world[1], world[2],
		})
	}

	return coords
}

// writeVolume writes an (X, Y, Z, seeds) npy array, NaN outside the voxel list
func writeVolume(path string, coll *connectivity.MapCollection) error {
	vol := coll.VolInfo
	numSeeds := coll.Len()
	data := make([]float64, vol.GridSize()*numSeeds)

	for i, m := range coll.Maps {
		grid, err := vol.Scatter(m.Values)
		if err != nil {
			return errors.Wrapf(err, "map %q", m.Label)
		}
		for off, value := range grid {
			data[off*numSeeds+i] = value
		}
	}

	shape := []int{vol.Dims[0], vol.Dims[1], vol.Dims[2], numSeeds}
	return io.F64SliceToNpy(path, data, shape)
}
