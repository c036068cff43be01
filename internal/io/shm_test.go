package io

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/ghetzel/shmtool/shm"
	"github.com/gonum/matrix/mat64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMat64toShm(t *testing.T) {
	check, err := shm.Create(8)
	if err != nil {
		t.Skipf("SysV shared memory unavailable: %v", err)
	}
	check.Destroy()

	m := mat64.NewDense(2, 3, []float64{1, 2, 3, 4, math.NaN(), -6})

	segment, err := Mat64toShm(m)
	require.NoError(t, err)
	defer segment.Destroy()

	raw, err := segment.ReadChunk(6*8, 0)
	require.NoError(t, err)
	require.Len(t, raw, 6*8)

	got := make([]float64, 6)
	for i := range got {
		got[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
	}

	assert.Equal(t, []float64{1, 2, 3, 4}, got[:4])
	assert.True(t, math.IsNaN(got[4]))
	assert.Equal(t, -6.0, got[5])
}
