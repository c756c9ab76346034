// SPDX-License-Identifier: MIT

package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/lvsvd/jacobi"
)

const manifestName = "manifest.yaml"

// Manifest describes one run and the files it wrote.
type Manifest struct {
	RunID     string `yaml:"run_id"`
	Command   string `yaml:"command"`
	Input     string `yaml:"input"`
	Rows      int    `yaml:"rows"`
	Cols      int    `yaml:"cols"`
	K         int    `yaml:"k,omitempty"`
	Seed      uint64 `yaml:"seed,omitempty"`
	Backend   string `yaml:"backend"`
	Device    string `yaml:"device,omitempty"`
	Precision string `yaml:"precision,omitempty"`
	Path      string `yaml:"path,omitempty"`

	Outputs map[string][2]int `yaml:"outputs"`

	ConstantColumns []int          `yaml:"constant_columns,omitempty"`
	Diagnostics     *manifestDiags `yaml:"diagnostics,omitempty"`
	Warnings        []string       `yaml:"warnings,omitempty"`
	Elapsed         string         `yaml:"elapsed"`
}

type manifestDiags struct {
	Sweeps            int     `yaml:"sweeps"`
	Rotations         int     `yaml:"rotations"`
	SkippedRotations  int     `yaml:"skipped_rotations"`
	OffDiagonal       float64 `yaml:"off_diagonal"`
	DegenerateColumns int     `yaml:"degenerate_columns"`
}

func diagsOf(d *jacobi.Diagnostics) *manifestDiags {
	if d == nil {
		return nil
	}

	return &manifestDiags{
		Sweeps:            d.Sweeps,
		Rotations:         d.Rotations,
		SkippedRotations:  d.SkippedRotations,
		OffDiagonal:       d.OffDiagonal,
		DegenerateColumns: d.DegenerateColumns,
	}
}

func errorStrings(errs []error) []string {
	var out []string
	for _, e := range errs {
		out = append(out, e.Error())
	}

	return out
}

func (m *Manifest) write(dir string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, manifestName), data, 0o644)
}
