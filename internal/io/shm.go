package io

import (
	"unsafe"

	"github.com/ghetzel/shmtool/shm"
	"github.com/gonum/matrix/mat64"
	"github.com/pkg/errors"
)

// Mat64toShm copies a matrix, row-major, into a new SysV shared memory segment
// so an external process can attach to it by id. The caller destroys the segment.
func Mat64toShm(matrix mat64.Matrix) (*shm.Segment, error) {
	rows, cols := matrix.Dims()

	segment, err := shm.Create(rows * cols * 8)
	if err != nil {
		return nil, errors.Wrap(err, "[Mat64toShm] failed to create shared memory region")
	}

	pBase, err := segment.Attach()
	if err != nil {
		segment.Destroy()
		return nil, errors.Wrap(err, "[Mat64toShm] failed to attach shared memory region")
	}

	mat64tocArr(matrix, pBase)

	if err := segment.Detach(pBase); err != nil {
		segment.Destroy()
		return nil, errors.Wrap(err, "[Mat64toShm] failed to detach shared memory region")
	}

	return segment, nil
}

func mat64tocArr(matrix mat64.Matrix, pArr unsafe.Pointer) {
	rows, cols := matrix.Dims()

	stride := uintptr(unsafe.Sizeof(float64(0)))

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			index := uintptr(i*cols + j)
			addr := (*float64)(unsafe.Pointer(uintptr(pArr) + index*stride))

			*addr = matrix.At(i, j)
		}
	}

	return
}
