package io

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gonum/matrix/mat64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNpyRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.npy")
	m := mat64.NewDense(2, 3, []float64{1, 2, 3, 4, math.NaN(), -6})

	require.NoError(t, Mat64toNpy(path, m))

	got, err := NpytoMat64(path)
	require.NoError(t, err)

	rows, cols := got.Dims()
	require.Equal(t, 2, rows)
	require.Equal(t, 3, cols)
	assert.Equal(t, 4.0, got.At(1, 0))
	assert.True(t, math.IsNaN(got.At(1, 1)))
	assert.Equal(t, -6.0, got.At(1, 2))
}

func TestNpyRejectsNon2D(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v.npy")
	require.NoError(t, F64SliceToNpy(path, []float64{1, 2, 3, 4, 5, 6, 7, 8}, []int{2, 2, 2}))

	_, err := NpytoMat64(path)
	assert.Error(t, err)
}

func TestF64SliceToNpyShapeMismatch(t *testing.T) {
	err := F64SliceToNpy(filepath.Join(t.TempDir(), "bad.npy"), []float64{1, 2, 3}, []int{2, 2})
	assert.Error(t, err)
}

func TestRowMajor(t *testing.T) {
	m := mat64.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	})

	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, RowMajor(m))
}

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.csv")
	m := mat64.NewDense(3, 2, []float64{0.5, -1, 2e-9, 3, 7, 0.125})

	require.NoError(t, Mat64toCSV(path, m))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0.5, -1\n2e-09, 3\n7, 0.125\n", string(raw))

	got, err := CSVtoMat64(path)
	require.NoError(t, err)
	assert.True(t, mat64.Equal(m, got))
}

func TestCSVtoMat64BadValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("1, 2\n3, x\n"), 0o644))

	_, err := CSVtoMat64(path)
	assert.Error(t, err)
}

func TestBinRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.bin")
	values := []float64{1.5, -2, 0, math.Inf(1)}

	require.NoError(t, F64SliceToBin(path, values))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(32), info.Size())

	got, err := BinToF64Slice(path)
	require.NoError(t, err)
	assert.Equal(t, values, got)
}

func TestLabelsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.txt")

	require.NoError(t, WriteLabels(path, []string{"DMN_L", "DMN_R", "Visual"}))

	got, err := ReadLabels(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"DMN_L", "DMN_R", "Visual"}, got)

	_, err = ReadLabels(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestNiftiToMat64ChecksArguments(t *testing.T) {
	coords := [][3]int{{1, 2, 3}}

	_, err := NiftiToMat64("img.nii", coords, 10, 10, 1)
	assert.Error(t, err)

	_, err = NiftiToMat64("img.nii", nil, 0, 10, 1)
	assert.Error(t, err)

	_, err = NiftiToMat64(filepath.Join(t.TempDir(), "missing.nii"), coords, 0, 10, 1)
	assert.Error(t, err)
}
