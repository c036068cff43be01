package connectivity

import (
	"github.com/gonum/matrix/mat64"

	"github.com/KyungWonPark/seedmap/internal/atlas"
	"github.com/KyungWonPark/seedmap/internal/calc"
)

// Descriptions attached to collections, one per mode
const (
	RegionDescription = "Correlation maps for seed region averages in pathway object"
	NodeDescription   = "Correlation maps for node responses in pathway object"
)

// Map is one seed's connectivity map, a correlation value per voxel
type Map struct {
	Label  string
	Values []float64
}

// MapCollection is the ordered set of maps produced by one call
type MapCollection struct {
	Maps        []Map
	Description string
	VolInfo     atlas.VolInfo
}

// BuildMaps packages a voxel by seed correlation matrix into a MapCollection.
// Column i of r becomes the map labeled labels[i].
func BuildMaps(r mat64.Matrix, labels []string, vol atlas.VolInfo, description string) (*MapCollection, error) {
	numVoxels, numSeeds := r.Dims()

	if numSeeds != len(labels) {
		return nil, &calc.DataError{Op: "BuildMaps", Reason: "seed count does not match label count"}
	}

	coll := MapCollection{
		Maps:        make([]Map, numSeeds),
		Description: description,
		VolInfo:     vol,
	}

	for i := 0; i < numSeeds; i++ {
		values := make([]float64, numVoxels)
		mat64.Col(values, i, r)

		coll.Maps[i] = Map{Label: labels[i], Values: values}
	}

	return &coll, nil
}

// Len returns the number of maps
func (c *MapCollection) Len() int {
	if c == nil {
		return 0
	}

	return len(c.Maps)
}

// Labels returns the seed labels in map order
func (c *MapCollection) Labels() []string {
	labels := make([]string, c.Len())
	for i := range labels {
		labels[i] = c.Maps[i].Label
	}

	return labels
}

// Matrix stacks the maps as columns of a voxel by seed matrix, nil when empty
func (c *MapCollection) Matrix() *mat64.Dense {
	if c.Len() == 0 {
		return nil
	}

	numVoxels := len(c.Maps[0].Values)
	matrix := mat64.NewDense(numVoxels, len(c.Maps), nil)

	for i, m := range c.Maps {
		matrix.SetCol(i, m.Values)
	}

	return matrix
}
