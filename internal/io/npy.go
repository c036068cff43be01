package io

import (
	"github.com/gonum/matrix/mat64"
	"github.com/kshedden/gonpy"
	"github.com/pkg/errors"
)

// Mat64toNpy writes mat64 matrix to Python numpy npy binary file
func Mat64toNpy(path string, matrix *mat64.Dense) error {
	rows, cols := matrix.Dims()
	return F64SliceToNpy(path, RowMajor(matrix), []int{rows, cols})
}

// RowMajor copies the matrix values row by row. RawMatrix data is only
// contiguous when the stride equals the column count.
func RowMajor(matrix *mat64.Dense) []float64 {
	rows, cols := matrix.Dims()
	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		data = append(data, matrix.RawRowView(i)...)
	}

	return data
}

// F64SliceToNpy writes a row-major float64 array of the given shape to an npy file
func F64SliceToNpy(path string, data []float64, shape []int) error {
	size := 1
	for _, d := range shape {
		size *= d
	}
	if size != len(data) {
		return errors.Errorf("[F64SliceToNpy] shape %v holds %d values, got %d", shape, size, len(data))
	}

	w, err := gonpy.NewFileWriter(path)
	if err != nil {
		return errors.Wrapf(err, "[F64SliceToNpy] failed to open file %s", path)
	}
	w.Shape = shape
	w.Version = 2

	if err := w.WriteFloat64(data); err != nil {
		return errors.Wrapf(err, "[F64SliceToNpy] failed to write file %s", path)
	}

	return nil
}

// NpytoMat64 reads Python numpy npy binary file as mat64 matrix
func NpytoMat64(path string) (*mat64.Dense, error) {
	r, err := gonpy.NewFileReader(path)
	if err != nil {
		return nil, errors.Wrapf(err, "[NpytoMat64] failed to open file %s", path)
	}

	if len(r.Shape) != 2 {
		return nil, errors.Errorf("[NpytoMat64] %s has shape %v, want a 2-D array", path, r.Shape)
	}

	rows := r.Shape[0]
	cols := r.Shape[1]
	data, err := r.GetFloat64()
	if err != nil {
		return nil, errors.Wrapf(err, "[NpytoMat64] failed to read file %s", path)
	}

	if r.ColumnMajor {
		var matrix mat64.Dense
		matrix.Clone(mat64.NewDense(cols, rows, data).T())
		return &matrix, nil
	}

	matrix := mat64.NewDense(rows, cols, data)
	return matrix, nil
}
