// Package config loads seedmap settings from file, environment and flags.
package config

import (
	"runtime"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/KyungWonPark/seedmap/internal/pathway"
	"github.com/KyungWonPark/seedmap/internal/seed"
)

// EnvPrefix prefixes environment overrides, e.g. SEEDMAP_OUTPUT_DIR
const EnvPrefix = "SEEDMAP"

// Output formats
const (
	FormatNpy = "npy"
	FormatCSV = "csv"
	FormatBin = "bin"
)

// Config is the full run configuration
type Config struct {
	Atlas     AtlasConfig
	Data      DataConfig
	Selection SelectionConfig
	Compute   ComputeConfig
	Output    OutputConfig
	Catalog   CatalogConfig
	Log       LogConfig
}

// AtlasConfig locates the atlas directory
type AtlasConfig struct {
	Dir string
}

// DataConfig locates voxel and node signals
type DataConfig struct {
	Nifti      string
	VoxelsNpy  string
	TimeStart  int
	TimeEnd    int
	NodesNpy   string
	NodeLabels string
}

// SelectionConfig picks seeds
type SelectionConfig struct {
	Mode    string
	Labels  []string
	Indices []int
	All     bool
	Exact   bool
	Flatten bool
}

// ComputeConfig sizes the worker pool
type ComputeConfig struct {
	Workers   int
	BlockSize int
}

// OutputConfig controls exports
type OutputConfig struct {
	Dir    string
	Format string
	Volume bool
	Shm    bool
}

// CatalogConfig locates the run catalog; an empty path disables it
type CatalogConfig struct {
	Path string
}

// LogConfig controls logging
type LogConfig struct {
	Level   string
	Format  string
	Verbose bool
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data.time_start", 300)
	v.SetDefault("data.time_end", 900)

	v.SetDefault("selection.mode", "regions")

	v.SetDefault("compute.workers", runtime.NumCPU())
	v.SetDefault("compute.block_size", 512)

	v.SetDefault("output.dir", "result")
	v.SetDefault("output.format", FormatNpy)
	v.SetDefault("output.volume", false)
	v.SetDefault("output.shm", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// New returns a viper instance with defaults and environment binding
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads configPath when set and builds a validated Config from v
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
		}
	}

	cfg := &Config{
		Atlas: AtlasConfig{
			Dir: v.GetString("atlas.dir"),
		},
		Data: DataConfig{
			Nifti:      v.GetString("data.nifti"),
			VoxelsNpy:  v.GetString("data.voxels_npy"),
			TimeStart:  v.GetInt("data.time_start"),
			TimeEnd:    v.GetInt("data.time_end"),
			NodesNpy:   v.GetString("data.nodes_npy"),
			NodeLabels: v.GetString("data.node_labels"),
		},
		Selection: SelectionConfig{
			Mode:    v.GetString("selection.mode"),
			Labels:  v.GetStringSlice("selection.labels"),
			Indices: v.GetIntSlice("selection.indices"),
			All:     v.GetBool("selection.all"),
			Exact:   v.GetBool("selection.exact"),
			Flatten: v.GetBool("selection.flatten"),
		},
		Compute: ComputeConfig{
			Workers:   v.GetInt("compute.workers"),
			BlockSize: v.GetInt("compute.block_size"),
		},
		Output: OutputConfig{
			Dir:    v.GetString("output.dir"),
			Format: v.GetString("output.format"),
			Volume: v.GetBool("output.volume"),
			Shm:    v.GetBool("output.shm"),
		},
		Catalog: CatalogConfig{
			Path: v.GetString("catalog.path"),
		},
		Log: LogConfig{
			Level:   v.GetString("log.level"),
			Format:  v.GetString("log.format"),
			Verbose: v.GetBool("log.verbose"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports every problem with the configuration at once
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Atlas.Dir == "" {
		result = multierror.Append(result, errors.New("atlas.dir is required"))
	}

	if c.Data.VoxelsNpy == "" {
		if c.Data.Nifti == "" {
			result = multierror.Append(result, errors.New("one of data.nifti or data.voxels_npy is required"))
		}
		if c.Data.TimeStart < 0 {
			result = multierror.Append(result, errors.Errorf("data.time_start must not be negative, got %d", c.Data.TimeStart))
		}
		if c.Data.TimeEnd-c.Data.TimeStart < 2 {
			result = multierror.Append(result, errors.Errorf("data time window [%d, %d) needs at least 2 time points", c.Data.TimeStart, c.Data.TimeEnd))
		}
	}

	if (c.Data.NodesNpy == "") != (c.Data.NodeLabels == "") {
		result = multierror.Append(result, errors.New("data.nodes_npy and data.node_labels must be set together"))
	}

	if _, err := seed.ParseMode(c.Selection.Mode); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "selection.mode"))
	}

	if c.Compute.Workers < 1 {
		result = multierror.Append(result, errors.Errorf("compute.workers must be positive, got %d", c.Compute.Workers))
	}
	if c.Compute.BlockSize < 1 {
		result = multierror.Append(result, errors.Errorf("compute.block_size must be positive, got %d", c.Compute.BlockSize))
	}

	switch c.Output.Format {
	case FormatNpy, FormatCSV, FormatBin:
	default:
		result = multierror.Append(result, errors.Errorf("output.format must be %s, %s or %s, got %q", FormatNpy, FormatCSV, FormatBin, c.Output.Format))
	}
	if c.Output.Dir == "" {
		result = multierror.Append(result, errors.New("output.dir is required"))
	}

	return result.ErrorOrNil()
}

// SeedSelection converts the selection settings into a seed.Selection
func (c *Config) SeedSelection() seed.Selection {
	mode, _ := seed.ParseMode(c.Selection.Mode)

	return seed.Selection{
		Mode:    mode,
		Labels:  c.Selection.Labels,
		Indices: c.Selection.Indices,
		All:     c.Selection.All,
		Exact:   c.Selection.Exact,
		Flatten: c.Selection.Flatten,
	}
}

// Source converts the data settings into a pathway.Source
func (c *Config) Source() pathway.Source {
	return pathway.Source{
		AtlasDir:   c.Atlas.Dir,
		Nifti:      c.Data.Nifti,
		VoxelsNpy:  c.Data.VoxelsNpy,
		TimeStart:  c.Data.TimeStart,
		TimeEnd:    c.Data.TimeEnd,
		NodesNpy:   c.Data.NodesNpy,
		NodeLabels: c.Data.NodeLabels,
	}
}
