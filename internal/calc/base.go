package calc

import (
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/KyungWonPark/seedmap/internal/logging"
)

// DefaultBlockSize is the number of target columns one job covers
const DefaultBlockSize = 512

// PipeLine represents a compute pipeline
type PipeLine struct {
	numWorkers int
	blockSize  int
	logger     logrus.FieldLogger
}

// Init returns a compute PipeLine.
// numWorkers <= 0 uses every CPU and blockSize <= 0 uses DefaultBlockSize.
func Init(numWorkers int, blockSize int, logger logrus.FieldLogger) *PipeLine {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	if logger == nil {
		logger = logging.Discard()
	}

	pl := PipeLine{
		numWorkers: numWorkers,
		blockSize:  blockSize,
		logger:     logger,
	}

	return &pl
}

// GetNP returns the number of workers
func (p *PipeLine) GetNP() int {
	return p.numWorkers
}

// GetBlockSize returns the number of target columns per job
func (p *PipeLine) GetBlockSize() int {
	return p.blockSize
}

func work(fn func(int), order <-chan int, wg *sync.WaitGroup) {
	for {
		index, ok := <-order
		if ok {
			fn(index)
			wg.Done()
		} else {
			break
		}
	}

	return
}

// dispatch runs fn once for every job index in [0, jobs) and waits for all of them
func (p *PipeLine) dispatch(jobs int, fn func(int)) {
	if jobs <= 0 {
		return
	}

	workers := p.numWorkers
	if workers > jobs {
		workers = jobs
	}

	order := make(chan int, workers)
	var wg sync.WaitGroup

	wg.Add(jobs)

	for i := 0; i < workers; i++ {
		go work(fn, order, &wg)
	}

	for i := 0; i < jobs; i++ {
		order <- i
	}

	wg.Wait()
	close(order)
	return
}

/*
	Workflow:

	Init -> Pearson / RegionAverage -> (results are owned by the caller)
*/

type statistic struct {
	avg float64
	std float64
}
