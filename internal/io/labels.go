package io

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ReadLabels reads one label per line, skipping blank lines
func ReadLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "[ReadLabels] failed to open %s", path)
	}
	defer f.Close()

	var labels []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			labels = append(labels, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "[ReadLabels] failed to read %s", path)
	}

	return labels, nil
}

// WriteLabels writes one label per line
func WriteLabels(path string, labels []string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "[WriteLabels] failed to create %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, label := range labels {
		if _, err := fmt.Fprintln(w, label); err != nil {
			return errors.Wrapf(err, "[WriteLabels] failed to write %s", path)
		}
	}

	return errors.Wrapf(w.Flush(), "[WriteLabels] failed to write %s", path)
}
