package io

import (
	"bufio"
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
)

// F64SliceToBin writes float64 slice to a file as little-endian raw values
func F64SliceToBin(path string, slice []float64) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "[F64SliceToBin] failed to create file %s", path)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := binary.Write(w, binary.LittleEndian, slice); err != nil {
		return errors.Wrapf(err, "[F64SliceToBin] failed to write file %s", path)
	}

	return errors.Wrapf(w.Flush(), "[F64SliceToBin] failed to write file %s", path)
}

// BinToF64Slice reads a file written by F64SliceToBin
func BinToF64Slice(path string) ([]float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "[BinToF64Slice] failed to stat file %s", path)
	}
	if info.Size()%8 != 0 {
		return nil, errors.Errorf("[BinToF64Slice] %s size %d is not a multiple of 8", path, info.Size())
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "[BinToF64Slice] failed to open file %s", path)
	}
	defer file.Close()

	slice := make([]float64, info.Size()/8)
	if err := binary.Read(bufio.NewReader(file), binary.LittleEndian, slice); err != nil {
		return nil, errors.Wrapf(err, "[BinToF64Slice] failed to read file %s", path)
	}

	return slice, nil
}
