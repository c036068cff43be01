package calc

import (
	"math"

	"github.com/gonum/matrix/mat64"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func getStat(col []float64) statistic {
	if isConstant(col) {
		return statistic{avg: col[0], std: 0}
	}

	avg, std := stat.MeanStdDev(col, nil)
	return statistic{avg: avg, std: std}
}

// isConstant reports a column whose values are all equal. Its mean is pinned
// to the first value so centering yields exact zeros.
func isConstant(col []float64) bool {
	for _, v := range col[1:] {
		if v != col[0] {
			return false
		}
	}

	return true
}

// center returns the mean-centered columns of timeSeriesMat and their statistics
func (p *PipeLine) center(timeSeriesMat mat64.Matrix) ([][]float64, []statistic) {
	_, numCols := timeSeriesMat.Dims()

	cols := make([][]float64, numCols)
	stats := make([]statistic, numCols)

	p.dispatch(numCols, func(index int) {
		col := mat64.Col(nil, index, timeSeriesMat)
		stats[index] = getStat(col)
		for t := range col {
			col[t] -= stats[index].avg
		}
		cols[index] = col
	})

	return cols, stats
}

func clamp(r float64) float64 {
	if r > 1 {
		return 1
	}
	if r < -1 {
		return -1
	}

	return r
}

// Pearson does Pearson's correlation calculation between every column of
// refMat and every column of targetMat. Rows are time points. The result is
// (ref columns) by (target columns); entries involving a constant column are NaN.
// Neither input is modified.
func (p *PipeLine) Pearson(refMat mat64.Matrix, targetMat mat64.Matrix) (*mat64.Dense, error) {
	refRows, refCols := refMat.Dims()
	targetRows, targetCols := targetMat.Dims()

	{ // Check input matrix dimensions
		if refRows != targetRows {
			return nil, dataErrorf("Pearson", "reference has %d time points but target has %d", refRows, targetRows)
		}
		if refRows < 2 {
			return nil, dataErrorf("Pearson", "need at least 2 time points, got %d", refRows)
		}
		if refCols < 1 || targetCols < 1 {
			return nil, dataErrorf("Pearson", "reference is %d by %d and target is %d by %d", refRows, refCols, targetRows, targetCols)
		}
	}

	refCentered, refStats := p.center(refMat)
	targetCentered, targetStats := p.center(targetMat)

	outputMat := mat64.NewDense(refCols, targetCols, nil)
	div := float64(refRows - 1)
	blocks := (targetCols + p.blockSize - 1) / p.blockSize

	p.logger.WithField("action", "pearson").
		WithField("reference", refCols).
		WithField("target", targetCols).
		WithField("blocks", blocks).
		Debug("correlating reference signals against targets")

	{ // Calculate Pearson's correlation, one block of target columns per job
		p.dispatch(blocks, func(block int) {
			from := block * p.blockSize
			to := from + p.blockSize
			if to > targetCols {
				to = targetCols
			}

			for i := 0; i < refCols; i++ {
				for j := from; j < to; j++ {
					cov := floats.Dot(refCentered[i], targetCentered[j]) / div
					pearson := cov / (refStats[i].std * targetStats[j].std)
					if !math.IsNaN(pearson) {
						pearson = clamp(pearson)
					}

					outputMat.Set(i, j, pearson)
				}
			}
		})
	}

	return outputMat, nil
}
