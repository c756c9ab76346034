// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/lvsvd/decomp"
	"github.com/katalvlaran/lvsvd/device"
	"github.com/katalvlaran/lvsvd/jacobi"
	"github.com/katalvlaran/lvsvd/matrix"
	"github.com/katalvlaran/lvsvd/rsvd"
)

// Config is the file form of every tunable. Flags set on the command line
// override the file.
type Config struct {
	Input     string `yaml:"input"`
	OutputDir string `yaml:"output_dir"`
	Header    bool   `yaml:"header"`

	K               int            `yaml:"k"`
	Oversample      int            `yaml:"oversample"`
	PowerIters      int            `yaml:"power_iters"`
	BlockRows       int            `yaml:"block_rows"`
	Backend         decomp.Backend `yaml:"backend"`
	Seed            uint64         `yaml:"seed"`
	SweepMultiplier float64        `yaml:"sweep_multiplier"`

	Device device.Config `yaml:",inline"`

	Log2      bool `yaml:"log2"`
	Transpose bool `yaml:"transpose"`
	Scale     bool `yaml:"scale"`

	LogLevel string `yaml:"log_level"`
	Metrics  bool   `yaml:"metrics"`
}

func defaultConfig() Config {
	return Config{
		OutputDir:       ".",
		K:               10,
		Oversample:      rsvd.DefaultOversampling,
		PowerIters:      rsvd.DefaultPowerIterations,
		BlockRows:       rsvd.DefaultBlockRows,
		Seed:            rsvd.DefaultSeed,
		SweepMultiplier: jacobi.DefaultSweepMultiplier,
		LogLevel:        "info",
	}
}

// loadConfig reads path over the defaults; an empty path returns defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// flagValues holds the raw flag targets before they are merged.
type flagValues struct {
	config    string
	backend   string
	device    string
	precision string
	cfg       Config
}

func (f *flagValues) register(fs *pflag.FlagSet) {
	d := defaultConfig()
	fs.StringVar(&f.config, "config", "", "YAML config file")
	fs.StringVar(&f.cfg.Input, "input", "", "input CSV matrix")
	fs.StringVar(&f.cfg.OutputDir, "output-dir", d.OutputDir, "directory for result files")
	fs.BoolVar(&f.cfg.Header, "header", false, "input CSV has a header row")
	fs.IntVar(&f.cfg.K, "k", d.K, "target rank")
	fs.IntVar(&f.cfg.Oversample, "oversample", d.Oversample, "oversampling p")
	fs.IntVar(&f.cfg.PowerIters, "power-iters", d.PowerIters, "power iterations q")
	fs.IntVar(&f.cfg.BlockRows, "block-rows", d.BlockRows, "row-block height of the streaming projection (0: direct)")
	fs.StringVar(&f.backend, "backend", decomp.Primitive.String(), "decomposer: primitive|native")
	fs.StringVar(&f.device, "device", device.Host.String(), "device: host|accelerator")
	fs.IntVar(&f.cfg.Device.Cores, "cores", 0, "host cores (0: all)")
	fs.StringVar(&f.precision, "precision", matrix.Float64.String(), "float32|float64")
	fs.Uint64Var(&f.cfg.Seed, "seed", d.Seed, "random projection seed")
	fs.Float64Var(&f.cfg.SweepMultiplier, "sweep-multiplier", d.SweepMultiplier, "Jacobi sweep budget multiplier")
	fs.BoolVar(&f.cfg.Log2, "log2", false, "log2-transform the input")
	fs.BoolVar(&f.cfg.Transpose, "transpose", false, "transpose the input")
	fs.BoolVar(&f.cfg.Scale, "scale", false, "center and scale columns")
	fs.StringVar(&f.cfg.LogLevel, "log-level", d.LogLevel, "trace|debug|info|warn|error|disabled")
	fs.BoolVar(&f.cfg.Metrics, "metrics", false, "write Prometheus metrics to metrics.prom")
}

// resolve loads the config file and applies every flag the user set.
func (f *flagValues) resolve(fs *pflag.FlagSet) (Config, error) {
	cfg, err := loadConfig(f.config)
	if err != nil {
		return cfg, err
	}
	var perr error
	fs.Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "input":
			cfg.Input = f.cfg.Input
		case "output-dir":
			cfg.OutputDir = f.cfg.OutputDir
		case "header":
			cfg.Header = f.cfg.Header
		case "k":
			cfg.K = f.cfg.K
		case "oversample":
			cfg.Oversample = f.cfg.Oversample
		case "power-iters":
			cfg.PowerIters = f.cfg.PowerIters
		case "block-rows":
			cfg.BlockRows = f.cfg.BlockRows
		case "backend":
			cfg.Backend, err = decomp.ParseBackend(f.backend)
		case "device":
			cfg.Device.Kind, err = device.ParseKind(f.device)
		case "cores":
			cfg.Device.Cores = f.cfg.Device.Cores
		case "precision":
			cfg.Device.Precision, err = matrix.ParsePrecision(f.precision)
		case "seed":
			cfg.Seed = f.cfg.Seed
		case "sweep-multiplier":
			cfg.SweepMultiplier = f.cfg.SweepMultiplier
		case "log2":
			cfg.Log2 = f.cfg.Log2
		case "transpose":
			cfg.Transpose = f.cfg.Transpose
		case "scale":
			cfg.Scale = f.cfg.Scale
		case "log-level":
			cfg.LogLevel = f.cfg.LogLevel
		case "metrics":
			cfg.Metrics = f.cfg.Metrics
		}
		if err != nil && perr == nil {
			perr = fmt.Errorf("--%s: %w", fl.Name, err)
		}
	})
	if perr != nil {
		return cfg, perr
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch {
	case c.K < 1:
		return fmt.Errorf("k must be >= 1, got %d", c.K)
	case c.Oversample < 0:
		return fmt.Errorf("oversample must be >= 0, got %d", c.Oversample)
	case c.PowerIters < 0:
		return fmt.Errorf("power_iters must be >= 0, got %d", c.PowerIters)
	case c.BlockRows < 0:
		return fmt.Errorf("block_rows must be >= 0, got %d", c.BlockRows)
	case !(c.SweepMultiplier > 0) || math.IsInf(c.SweepMultiplier, 1):
		return fmt.Errorf("sweep_multiplier must be > 0, got %g", c.SweepMultiplier)
	}

	return nil
}

// options maps the config onto library options.
func (c Config) options() []rsvd.Option {
	return []rsvd.Option{
		rsvd.WithOversampling(c.Oversample),
		rsvd.WithPowerIterations(c.PowerIters),
		rsvd.WithBlockRows(c.BlockRows),
		rsvd.WithBackend(c.Backend),
		rsvd.WithDevice(c.Device),
		rsvd.WithSeed(c.Seed),
		rsvd.WithSweepMultiplier(c.SweepMultiplier),
	}
}
