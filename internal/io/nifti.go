package io

import (
	"os"
	"sync"

	"github.com/KyungWonPark/nifti"
	"github.com/gonum/matrix/mat64"
	"github.com/pkg/errors"
)

// niftiHeaderSize is the fixed NIfTI-1 header length
const niftiHeaderSize = 348

func sampling(img *nifti.Nifti1Image, coords [][3]int, timeStart int, order <-chan int, wg *sync.WaitGroup, timeSeries *mat64.Dense, errs []error) {
	for {
		timePoint, ok := <-order
		if ok {
			errs[timePoint-timeStart] = sampleTimePoint(img, coords, timeStart, timePoint, timeSeries)
			wg.Done()
		} else {
			break
		}
	}

	return
}

// sampleTimePoint fills one row of timeSeries. GetAt does not check the
// data length, so a truncated image surfaces here as a recovered panic.
func sampleTimePoint(img *nifti.Nifti1Image, coords [][3]int, timeStart int, timePoint int, timeSeries *mat64.Dense) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("image data ends before time point %d: %v", timePoint, r)
		}
	}()

	for i, vox := range coords {
		value := img.GetAt(uint32(vox[0]), uint32(vox[1]), uint32(vox[2]), uint32(timePoint))
		timeSeries.Set(timePoint-timeStart, i, float64(value))
	}

	return nil
}

// niftiDims validates a NIfTI-1 header and returns its [x, y, z, t] extent.
// Images with fewer than four dimensions have a single time point.
func niftiDims(header nifti.Nifti1Header) ([4]int, error) {
	var dims [4]int

	switch header.Bitpix {
	case 8, 16, 32, 64:
	default:
		return dims, errors.Errorf("unsupported or missing bitpix %d, not a NIfTI-1 image", header.Bitpix)
	}
	if header.Dim[0] < 3 || header.Dim[0] > 7 {
		return dims, errors.Errorf("invalid dimension count %d", header.Dim[0])
	}
	if header.VoxOffset < niftiHeaderSize {
		return dims, errors.Errorf("invalid voxel offset %v", header.VoxOffset)
	}

	for i := 0; i < 3; i++ {
		dims[i] = int(header.Dim[i+1])
		if dims[i] < 1 {
			return dims, errors.Errorf("invalid spatial dimensions %v", header.Dim[1:4])
		}
	}

	dims[3] = 1
	if header.Dim[0] >= 4 && header.Dim[4] > 1 {
		dims[3] = int(header.Dim[4])
	}

	return dims, nil
}

// loadImage reads header and data. A voxel offset past the end of the file
// makes LoadImage panic on its slice expression.
func loadImage(path string) (img *nifti.Nifti1Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, errors.Errorf("failed to read image data: %v", r)
		}
	}()

	img = new(nifti.Nifti1Image)
	img.LoadImage(path, true)

	return img, nil
}

// NiftiToMat64 loads a 4-D NIfTI image and samples the listed voxels over the
// time points [timeStart, timeEnd). The result is time by voxel.
func NiftiToMat64(path string, coords [][3]int, timeStart int, timeEnd int, numLoader int) (*mat64.Dense, error) {
	if timeEnd-timeStart < 1 {
		return nil, errors.Errorf("[NiftiToMat64] empty time window [%d, %d)", timeStart, timeEnd)
	}
	if timeStart < 0 {
		return nil, errors.Errorf("[NiftiToMat64] negative time start %d", timeStart)
	}
	if len(coords) == 0 {
		return nil, errors.New("[NiftiToMat64] no voxels to sample")
	}
	for i, vox := range coords {
		if vox[0] < 0 || vox[1] < 0 || vox[2] < 0 {
			return nil, errors.Errorf("[NiftiToMat64] voxel %d has negative coordinates %v", i, vox)
		}
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "[NiftiToMat64] failed to open %s", path)
	}
	if numLoader < 1 {
		numLoader = 1
	}

	// LoadImage panics on an unknown bitpix, so the header is checked first
	var header nifti.Nifti1Header
	header.LoadHeader(path)

	dims, err := niftiDims(header)
	if err != nil {
		return nil, errors.Wrapf(err, "[NiftiToMat64] %s", path)
	}
	if timeEnd > dims[3] {
		return nil, errors.Errorf("[NiftiToMat64] time window [%d, %d) exceeds the %d time points of %s", timeStart, timeEnd, dims[3], path)
	}
	for i, vox := range coords {
		if vox[0] >= dims[0] || vox[1] >= dims[1] || vox[2] >= dims[2] {
			return nil, errors.Errorf("[NiftiToMat64] voxel %d at %v outside image grid %v", i, vox, dims[:3])
		}
	}

	img, err := loadImage(path)
	if err != nil {
		return nil, errors.Wrapf(err, "[NiftiToMat64] %s", path)
	}

	timePoints := timeEnd - timeStart
	timeSeries := mat64.NewDense(timePoints, len(coords), nil)
	errs := make([]error, timePoints)

	order := make(chan int, numLoader)
	var wg sync.WaitGroup

	wg.Add(timePoints)
	for i := 0; i < numLoader; i++ {
		go sampling(img, coords, timeStart, order, &wg, timeSeries, errs)
	}

	for timePoint := timeStart; timePoint < timeEnd; timePoint++ {
		order <- timePoint
	}
	wg.Wait()

	close(order)

	for _, err := range errs {
		if err != nil {
			return nil, errors.Wrapf(err, "[NiftiToMat64] %s", path)
		}
	}

	return timeSeries, nil
}
