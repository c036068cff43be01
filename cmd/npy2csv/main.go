package main

import (
	"fmt"
	"os"

	"github.com/KyungWonPark/seedmap/internal/io"
)

func main() { // npy2csv file.npy [out.csv]
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: npy2csv file.npy [out.csv]")
		os.Exit(2)
	}

	fileName := os.Args[1]
	outName := fileName + ".csv"
	if len(os.Args) > 2 {
		outName = os.Args[2]
	}

	npyFile, err := io.NpytoMat64(fileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Reading npy file complete")

	if err := io.Mat64toCSV(outName, npyFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	return
}
