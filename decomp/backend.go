// SPDX-License-Identifier: MIT

package decomp

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownBackend is returned for unrecognized backend names.
var ErrUnknownBackend = errors.New("decomp: unknown backend")

// Backend names a Decomposer implementation.
// The zero value is Primitive.
type Backend int

const (
	// Primitive composes QR and SVD from matrix kernels.
	Primitive Backend = iota

	// Native delegates to gonum/mat.
	Native
)

// String implements fmt.Stringer.
func (b Backend) String() string {
	switch b {
	case Primitive:
		return "primitive"
	case Native:
		return "native"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// ParseBackend maps "primitive" / "native" (case-insensitive) to a Backend.
// The empty string selects Primitive.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "primitive", "":
		return Primitive, nil
	case "native", "gonum", "lapack":
		return Native, nil
	default:
		return Primitive, fmt.Errorf("ParseBackend(%q): %w", s, ErrUnknownBackend)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (b Backend) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Backend) UnmarshalText(text []byte) error {
	v, err := ParseBackend(string(text))
	if err != nil {
		return err
	}
	*b = v

	return nil
}
