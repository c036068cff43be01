// Package atlas holds a labeled partition of the imaging volume into regions.
package atlas

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/KyungWonPark/seedmap/internal/io"
	"github.com/KyungWonPark/seedmap/internal/logging"
	"github.com/KyungWonPark/seedmap/internal/seed"
)

// File names inside an atlas directory
const (
	LabelsFile  = "labels.txt"
	VoxelsFile  = "voxels.txt"
	VolInfoFile = "volinfo.json"
)

// Atlas is an ordered region label list plus the voxel-to-region membership
type Atlas struct {
	Labels  []string
	VolInfo VolInfo
	// Membership is the region index of each voxel in VolInfo.Voxels, -1 for none.
	Membership []int
}

// New checks the pieces of an atlas fit together
func New(labels []string, vol VolInfo, membership []int) (*Atlas, error) {
	if len(labels) == 0 {
		return nil, errors.New("[atlas] no region labels")
	}
	if len(membership) != len(vol.Voxels) {
		return nil, errors.Errorf("[atlas] %d voxels but %d membership entries", len(vol.Voxels), len(membership))
	}
	for i, r := range membership {
		if r < -1 || r >= len(labels) {
			return nil, errors.Errorf("[atlas] voxel %d assigned to region %d of %d", i, r, len(labels))
		}
	}

	return &Atlas{Labels: labels, VolInfo: vol, Membership: membership}, nil
}

// Load reads an atlas directory.
//
//	labels.txt   one region label per line
//	voxels.txt   "x,y,z,region" per voxel; zero based coordinates, one based region, 0 for none
//	volinfo.json {"dims": [...], "voxel_size": [...], "affine": [[...], ...]}
func Load(dir string) (*Atlas, error) {
	labels, err := io.ReadLabels(filepath.Join(dir, LabelsFile))
	if err != nil {
		return nil, err
	}

	var vol VolInfo
	{ // Volume geometry
		raw, err := os.ReadFile(filepath.Join(dir, VolInfoFile))
		if err != nil {
			return nil, errors.Wrap(err, "[atlas] read volume info")
		}
		if err := json.Unmarshal(raw, &vol); err != nil {
			return nil, errors.Wrap(err, "[atlas] parse volume info")
		}
	}

	var membership []int
	{ // Voxel list
		path := filepath.Join(dir, VoxelsFile)
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "[atlas] open %s", path)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		line := 0
		for scanner.Scan() {
			line++
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}

			fields := strings.Split(text, ",")
			if len(fields) != 4 {
				return nil, errors.Errorf("[atlas] %s:%d: want x,y,z,region", path, line)
			}

			var xyzr [4]int
			for k, field := range fields {
				xyzr[k], err = strconv.Atoi(strings.TrimSpace(field))
				if err != nil {
					return nil, errors.Wrapf(err, "[atlas] %s:%d", path, line)
				}
			}

			vol.Voxels = append(vol.Voxels, Voxel{X: xyzr[0], Y: xyzr[1], Z: xyzr[2]})
			membership = append(membership, xyzr[3]-1)
		}
		if err := scanner.Err(); err != nil {
			return nil, errors.Wrapf(err, "[atlas] read %s", path)
		}
	}

	return New(labels, vol, membership)
}

// NumRegions returns the number of labeled regions
func (a *Atlas) NumRegions() int {
	return len(a.Labels)
}

// SelectSubset resolves sel against the region labels. Regions without member
// voxels carry no signal and are dropped with a warning.
func (a *Atlas) SelectSubset(sel seed.Selection, logger logrus.FieldLogger) ([]int, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	indices, err := seed.ResolveIndices(a.Labels, sel)
	if err != nil {
		return nil, err
	}

	counts := make([]int, len(a.Labels))
	for _, r := range a.Membership {
		if r >= 0 {
			counts[r]++
		}
	}

	kept := indices[:0]
	for _, r := range indices {
		if counts[r] == 0 {
			logger.WithField("action", "atlas_subset").
				WithField("region", a.Labels[r]).
				Warn("region has no voxels, skipping")
			continue
		}
		kept = append(kept, r)
	}

	if len(kept) == 0 {
		return nil, &seed.SelectionError{Reason: "selected regions have no voxels", Selection: sel}
	}

	return kept, nil
}
