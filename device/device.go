// SPDX-License-Identifier: MIT

package device

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/rs/zerolog"

	"github.com/katalvlaran/lvsvd/matrix"
)

var (
	// ErrBackendUnavailable reports that the requested accelerator failed its
	// probe; the call continues on the host.
	ErrBackendUnavailable = errors.New("device: accelerator unavailable")

	// ErrPrecisionDowngrade reports that the accelerator forces single
	// precision on a double-precision request.
	ErrPrecisionDowngrade = errors.New("device: precision downgraded to float32")

	// ErrUnknownKind is returned by ParseKind for unrecognized names.
	ErrUnknownKind = errors.New("device: unknown device kind")
)

// HostName is the Selection name of host execution.
const HostName = "host"

// Kind is the requested execution target. The zero value is Host.
type Kind int

const (
	// Host runs on CPU cores.
	Host Kind = iota

	// Accelerator runs on Config.Accelerator when its probe succeeds.
	Accelerator
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Host:
		return "host"
	case Accelerator:
		return "accelerator"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps "host"/"cpu" and "accelerator"/"gpu" to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "host", "cpu", "":
		return Host, nil
	case "accelerator", "gpu":
		return Accelerator, nil
	default:
		return Host, fmt.Errorf("ParseKind(%q): %w", s, ErrUnknownKind)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = v

	return nil
}

// Device is a compute device other than the host.
type Device interface {
	// Name identifies the device in logs and manifests.
	Name() string

	// Probe performs a minimal allocation and operation on the device and
	// reports whether it works.
	Probe() error

	// MaxPrecision is the widest precision the device computes in.
	MaxPrecision() matrix.Precision

	// Workers is the device's degree of parallelism; 0 defers to Config.Cores.
	Workers() int
}

// Config is the per-call device configuration.
type Config struct {
	Kind      Kind             `yaml:"device"`
	Cores     int              `yaml:"cores"` // <= 0: runtime.NumCPU()
	Precision matrix.Precision `yaml:"precision"`

	// Accelerator is probed when Kind is Accelerator; nil means Stub.
	Accelerator Device `yaml:"-"`
}

// Selection is the resolved device for one call.
type Selection struct {
	Kind      Kind
	Name      string
	Workers   int
	Precision matrix.Precision

	// Warnings wrap ErrBackendUnavailable and ErrPrecisionDowngrade.
	Warnings []error
}

// Select resolves cfg. It never fails: an unusable accelerator degrades to
// the host and the reason is recorded in Warnings and logged at warn level.
func Select(cfg Config, logger zerolog.Logger) Selection {
	sel := Selection{
		Kind:      Host,
		Name:      HostName,
		Workers:   hostWorkers(cfg.Cores),
		Precision: cfg.Precision,
	}
	if cfg.Kind != Accelerator {
		logger.Debug().Str("device", sel.Name).Int("workers", sel.Workers).Msg("device selected")
		return sel
	}

	acc := cfg.Accelerator
	if acc == nil {
		acc = Stub{}
	}
	if err := acc.Probe(); err != nil {
		w := fmt.Errorf("%s: %w", acc.Name(), errors.Join(ErrBackendUnavailable, err))
		sel.Warnings = append(sel.Warnings, w)
		logger.Warn().Err(err).Str("device", acc.Name()).Msg("accelerator probe failed, falling back to host")
		return sel
	}

	sel.Kind = Accelerator
	sel.Name = acc.Name()
	if n := acc.Workers(); n > 0 {
		sel.Workers = n
	}
	if sel.Precision == matrix.Float64 && acc.MaxPrecision() == matrix.Float32 {
		sel.Precision = matrix.Float32
		sel.Warnings = append(sel.Warnings, fmt.Errorf("%s: %w", acc.Name(), ErrPrecisionDowngrade))
		logger.Warn().Str("device", acc.Name()).Msg("accelerator requires float32, precision will be lost")
	}
	logger.Debug().Str("device", sel.Name).Int("workers", sel.Workers).Stringer("precision", sel.Precision).Msg("device selected")

	return sel
}

// Available probes the host and the configured accelerator (Stub when nil)
// and returns the names of those that work.
func Available(cfg Config) []string {
	var out []string
	if probeHost() == nil {
		out = append(out, HostName)
	}
	acc := cfg.Accelerator
	if acc == nil {
		acc = Stub{}
	}
	if acc.Probe() == nil {
		out = append(out, acc.Name())
	}

	return out
}

func hostWorkers(cores int) int {
	if cores > 0 {
		return cores
	}

	return runtime.NumCPU()
}

// probeHost allocates a 1×1 matrix and multiplies it.
func probeHost() error {
	one, err := matrix.NewDenseFrom(1, 1, []float32{1})
	if err != nil {
		return err
	}
	_, err = matrix.Mul(one, one)

	return err
}
