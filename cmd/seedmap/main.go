package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/KyungWonPark/seedmap/internal/calc"
	"github.com/KyungWonPark/seedmap/internal/catalog"
	"github.com/KyungWonPark/seedmap/internal/config"
	"github.com/KyungWonPark/seedmap/internal/connectivity"
	"github.com/KyungWonPark/seedmap/internal/io"
	"github.com/KyungWonPark/seedmap/internal/logging"
	"github.com/KyungWonPark/seedmap/internal/pathway"
	"github.com/KyungWonPark/seedmap/internal/seed"
)

var configPath string

func main() {
	v := config.New()

	rootCmd := &cobra.Command{
		Use:   "seedmap [options...]",
		Short: "Seed-based voxel correlation maps",
		Long: `seedmap correlates region-average or node seed time series with every voxel
of an atlas and writes one correlation map per selected seed.

Positional options: regions, nodes, all, exact, flatten, integer seed indices.
Any other word is treated as a label substring.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), v, args)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to configuration file")
	flags.String("atlas", "", "Atlas directory (labels.txt, voxels.txt, volinfo.json)")
	flags.String("nifti", "", "4-D NIfTI image to sample voxel time series from")
	flags.String("voxels-npy", "", "Time by voxel npy matrix, used instead of --nifti")
	flags.Int("time-start", 300, "First time point sampled from the NIfTI image")
	flags.Int("time-end", 900, "Time point after the last one sampled")
	flags.String("nodes-npy", "", "Time by node npy matrix")
	flags.String("node-labels", "", "Node label file, one label per line")
	flags.String("mode", "regions", "Seed set: regions or nodes")
	flags.StringSlice("labels", nil, "Label substrings selecting seeds")
	flags.IntSlice("indices", nil, "Zero based seed indices")
	flags.Bool("all", false, "Select every seed")
	flags.Bool("exact", false, "Match whole labels instead of substrings")
	flags.Bool("flatten", false, "Reserved: combine selected seeds (no effect)")
	flags.Int("workers", 0, "Worker goroutines (default: number of CPUs)")
	flags.Int("block-size", calc.DefaultBlockSize, "Voxels per correlation job")
	flags.String("out", "result", "Output directory")
	flags.String("format", config.FormatNpy, "Map format: npy, csv or bin")
	flags.Bool("volume", false, "Also write maps as an (X, Y, Z, seeds) npy volume")
	flags.Bool("shm", false, "Publish the map matrix to a SysV shared memory segment")
	flags.String("catalog", "", "sqlite run catalog path")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json)")
	flags.BoolP("verbose", "v", false, "Log progress (same as --log-level debug)")

	for key, flag := range map[string]string{
		"atlas.dir":          "atlas",
		"data.nifti":         "nifti",
		"data.voxels_npy":    "voxels-npy",
		"data.time_start":    "time-start",
		"data.time_end":      "time-end",
		"data.nodes_npy":     "nodes-npy",
		"data.node_labels":   "node-labels",
		"selection.mode":     "mode",
		"selection.labels":   "labels",
		"selection.indices":  "indices",
		"selection.all":      "all",
		"selection.exact":    "exact",
		"selection.flatten":  "flatten",
		"compute.workers":    "workers",
		"compute.block_size": "block-size",
		"output.dir":         "out",
		"output.format":      "format",
		"output.volume":      "volume",
		"output.shm":         "shm",
		"catalog.path":       "catalog",
		"log.level":          "log-level",
		"log.format":         "log-format",
		"log.verbose":        "verbose",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "runs",
		Short: "List runs recorded in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRuns(cmd.Context(), v)
		},
	})

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) (*logrus.Logger, error) {
	level := cfg.Log.Level
	if cfg.Log.Verbose {
		level = "debug"
	}

	return logging.New(os.Stderr, level, cfg.Log.Format)
}

func run(ctx context.Context, v *viper.Viper, args []string) error {
	cfg, err := config.Load(v, configPath)
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	pl := calc.Init(cfg.Compute.Workers, cfg.Compute.BlockSize, logger)

	model, err := pathway.Load(ctx, cfg.Source(), pl, logger)
	if err != nil {
		return err
	}

	sel := cfg.SeedSelection().Merge(seed.Parse(args, logger))

	coll, err := connectivity.NewBuilder(pl, logger).CorrelationMaps(model, sel)
	if err != nil {
		return err
	}
	if coll == nil {
		logger.WithField("mode", sel.Mode.String()).Info("no maps produced")
		return nil
	}

	runID := uuid.New()
	outDir := filepath.Join(cfg.Output.Dir, runID.String())
	if err := writeMaps(outDir, cfg.Output, coll); err != nil {
		return err
	}

	logger.WithField("run", runID.String()).
		WithField("maps", coll.Len()).
		WithField("output", outDir).
		Info(coll.Description)

	if cfg.Output.Shm {
		matrix := coll.Matrix()
		segment, err := io.Mat64toShm(matrix)
		if err != nil {
			return err
		}
		rows, cols := matrix.Dims()
		logger.WithField("shm_id", segment.Id).
			WithField("rows", rows).
			WithField("cols", cols).
			Info("maps published to shared memory, the reader destroys the segment")
	}

	if cfg.Catalog.Path != "" {
		cat, err := catalog.Open(cfg.Catalog.Path)
		if err != nil {
			return err
		}
		defer cat.Close()

		_, numVoxels := model.VoxelData().Dims()
		err = cat.Record(ctx, &catalog.Run{
			ID:          runID,
			Mode:        sel.Mode.String(),
			Description: coll.Description,
			Labels:      coll.Labels(),
			Voxels:      numVoxels,
			Output:      outDir,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func listRuns(ctx context.Context, v *viper.Viper) error {
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "failed to read config file %s", configPath)
		}
	}

	path := v.GetString("catalog.path")
	if path == "" {
		return errors.New("catalog.path is required")
	}

	cat, err := catalog.Open(path)
	if err != nil {
		return err
	}
	defer cat.Close()

	runs, err := cat.Runs(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tCREATED\tMODE\tMAPS\tVOXELS\tOUTPUT")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Mode, len(r.Labels), r.Voxels, r.Output)
	}

	return w.Flush()
}
