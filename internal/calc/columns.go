package calc

import (
	"github.com/gonum/matrix/mat64"
)

// Columns copies the listed columns of inputMat, in order, into a new matrix
func Columns(inputMat mat64.Matrix, indices []int) (*mat64.Dense, error) {
	rows, cols := inputMat.Dims()

	if len(indices) == 0 {
		return nil, dataErrorf("Columns", "no columns requested")
	}

	outputMat := mat64.NewDense(rows, len(indices), nil)
	for k, j := range indices {
		if j < 0 || j >= cols {
			return nil, dataErrorf("Columns", "column %d out of range for %d columns", j, cols)
		}
		for t := 0; t < rows; t++ {
			outputMat.Set(t, k, inputMat.At(t, j))
		}
	}

	return outputMat, nil
}

// IsEmpty reports a missing matrix or one without rows or columns
func IsEmpty(m mat64.Matrix) bool {
	if m == nil {
		return true
	}
	if d, ok := m.(*mat64.Dense); ok && d == nil {
		return true
	}

	rows, cols := m.Dims()
	return rows == 0 || cols == 0
}
