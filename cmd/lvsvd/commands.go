// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/lvsvd/device"
	"github.com/katalvlaran/lvsvd/matrix"
	"github.com/katalvlaran/lvsvd/preprocess"
	"github.com/katalvlaran/lvsvd/rsvd"
)

var errNoInput = errors.New("no input: set --input or input in the config file")

func (a *app) randomizedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "randomized",
		Short: "Rank-k randomized SVD",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start := time.Now()
			in, err := a.load()
			if err != nil {
				return err
			}
			res, err := rsvd.Randomized(in.Matrix, a.cfg.K, a.libOptions()...)
			if err != nil {
				return err
			}
			m := a.manifest(cmd.Name(), in)
			m.K, m.Seed = a.cfg.K, a.cfg.Seed
			return a.finish(m, res, start)
		},
	}
}

func (a *app) exactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exact",
		Short: "Full thin SVD, no randomization or truncation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start := time.Now()
			in, err := a.load()
			if err != nil {
				return err
			}
			res, err := rsvd.Exact(in.Matrix, a.libOptions()...)
			if err != nil {
				return err
			}
			return a.finish(a.manifest(cmd.Name(), in), res, start)
		},
	}
}

func (a *app) qrCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "qr",
		Short: "Thin QR decomposition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start := time.Now()
			in, err := a.load()
			if err != nil {
				return err
			}
			q, r, err := rsvd.QR(in.Matrix, a.libOptions()...)
			if err != nil {
				return err
			}
			m := a.manifest(cmd.Name(), in)
			m.Device = device.HostName
			if err = a.writeOutputs(m, map[string]*matrix.Dense[float64]{"Q.csv": q, "R.csv": r}); err != nil {
				return err
			}
			m.Elapsed = time.Since(start).String()
			if err = m.write(a.cfg.OutputDir); err != nil {
				return err
			}
			return a.writeMetrics()
		},
	}
}

func (a *app) devicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List devices whose probe succeeds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range device.Available(a.cfg.Device) {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

// load reads and preprocesses the input matrix.
func (a *app) load() (*preprocess.Transformed[float64], error) {
	if a.cfg.Input == "" {
		return nil, errNoInput
	}
	raw, err := readMatrixFile(a.cfg.Input, a.cfg.Header)
	if err != nil {
		return nil, err
	}
	var opts []preprocess.Option
	if a.cfg.Log2 {
		opts = append(opts, preprocess.WithLog2())
	}
	if a.cfg.Transpose {
		opts = append(opts, preprocess.WithTranspose())
	}
	if !a.cfg.Scale {
		opts = append(opts, preprocess.WithoutScale())
	}
	out, err := preprocess.Transform(raw, opts...)
	if err != nil {
		return nil, err
	}
	if len(out.ConstantColumns) > 0 {
		a.logger.Warn().Ints("columns", out.ConstantColumns).Msg("constant columns were centered but not scaled")
	}
	if err = os.MkdirAll(a.cfg.OutputDir, 0o755); err != nil {
		return nil, err
	}
	a.logger.Info().Str("input", a.cfg.Input).Int("rows", out.Matrix.Rows()).Int("cols", out.Matrix.Cols()).Msg("input loaded")

	return out, nil
}

func (a *app) manifest(command string, in *preprocess.Transformed[float64]) *Manifest {
	return &Manifest{
		RunID:           a.runID,
		Command:         command,
		Input:           a.cfg.Input,
		Rows:            in.Matrix.Rows(),
		Cols:            in.Matrix.Cols(),
		Backend:         a.cfg.Backend.String(),
		Outputs:         map[string][2]int{},
		ConstantColumns: in.ConstantColumns,
	}
}

// finish writes the factors, explained variance, manifest and metrics.
func (a *app) finish(m *Manifest, res *rsvd.Result[float64], start time.Time) error {
	m.Backend = res.Backend.String()
	m.Device = res.Device
	m.Precision = res.Precision.String()
	m.Path = res.Path
	m.Diagnostics = diagsOf(res.Diagnostics)
	m.Warnings = errorStrings(res.Warnings)

	if err := a.writeOutputs(m, map[string]*matrix.Dense[float64]{"U.csv": res.U, "V.csv": res.V}); err != nil {
		return err
	}
	if err := writeVectorFile(a.cfg.OutputDir, "S.csv", res.S); err != nil {
		return err
	}
	m.Outputs["S.csv"] = [2]int{len(res.S), 1}
	if err := writeVectorFile(a.cfg.OutputDir, "explained_variance.csv", res.ExplainedVariance); err != nil {
		return err
	}
	m.Outputs["explained_variance.csv"] = [2]int{len(res.ExplainedVariance), 1}

	m.Elapsed = time.Since(start).String()
	if err := m.write(a.cfg.OutputDir); err != nil {
		return err
	}
	a.logger.Info().Str("output_dir", a.cfg.OutputDir).Int("warnings", len(m.Warnings)).Msg("results written")

	return a.writeMetrics()
}

// writeOutputs writes every non-nil matrix and records its shape.
func (a *app) writeOutputs(m *Manifest, files map[string]*matrix.Dense[float64]) error {
	for name, mat := range files {
		if mat == nil {
			continue
		}
		if err := writeMatrixFile(a.cfg.OutputDir, name, mat); err != nil {
			return err
		}
		m.Outputs[name] = [2]int{mat.Rows(), mat.Cols()}
	}

	return nil
}
