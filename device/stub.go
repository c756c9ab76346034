// SPDX-License-Identifier: MIT

package device

import "github.com/katalvlaran/lvsvd/matrix"

// Stub stands in for an accelerator in builds without device support.
// Its probe always fails, so selecting it falls back to the host.
type Stub struct{}

var _ Device = Stub{}

// Name returns the stub's display name.
func (Stub) Name() string { return "accelerator (not built)" }

// Probe always returns ErrBackendUnavailable.
func (Stub) Probe() error { return ErrBackendUnavailable }

// MaxPrecision returns matrix.Float64.
func (Stub) MaxPrecision() matrix.Precision { return matrix.Float64 }

// Workers returns 0.
func (Stub) Workers() int { return 0 }
