// SPDX-License-Identifier: MIT

// Package matrix: element types and precision tags.
// This file intentionally contains ONLY the numeric domain types; errors and
// options live in dedicated files (errors.go, options.go).
package matrix

import (
	"fmt"
	"strings"
	"unsafe"
)

// Float is the element constraint shared by every matrix in the module.
type Float interface {
	~float32 | ~float64
}

// Precision names the floating-point width a computation runs in.
// The zero value is Float64 so unset configuration means double precision.
type Precision int

const (
	// Float64 is IEEE-754 double precision.
	Float64 Precision = iota

	// Float32 is IEEE-754 single precision.
	Float32
)

// Machine epsilons per precision.
const (
	epsFloat64 = 2.220446049250313e-16
	epsFloat32 = 1.1920928955078125e-07
)

// String implements fmt.Stringer.
func (p Precision) String() string {
	switch p {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("Precision(%d)", int(p))
	}
}

// ParsePrecision maps "float32"/"f32"/"32" and "float64"/"f64"/"64" to a Precision.
func ParsePrecision(s string) (Precision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float64", "f64", "64", "double", "":
		return Float64, nil
	case "float32", "f32", "32", "single":
		return Float32, nil
	default:
		return Float64, fmt.Errorf("ParsePrecision(%q): %w", s, ErrUnknownPrecision)
	}
}

// MarshalText implements encoding.TextMarshaler (YAML/flag friendly).
func (p Precision) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Precision) UnmarshalText(b []byte) error {
	v, err := ParsePrecision(string(b))
	if err != nil {
		return err
	}
	*p = v

	return nil
}

// PrecisionOf reports the precision of the element type T.
// Named types with an underlying float32 map to Float32.
func PrecisionOf[T Float]() Precision {
	var zero T
	if unsafe.Sizeof(zero) == 4 {
		return Float32
	}

	return Float64
}

// Epsilon returns the machine epsilon of T as float64.
func Epsilon[T Float]() float64 {
	if PrecisionOf[T]() == Float32 {
		return epsFloat32
	}

	return epsFloat64
}
