// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/katalvlaran/lvsvd/metrics"
	"github.com/katalvlaran/lvsvd/rsvd"
)

const metricsName = "metrics.prom"

// app is the state shared by the subcommands of one invocation.
type app struct {
	flags    flagValues
	cfg      Config
	runID    string
	logger   zerolog.Logger
	registry *prometheus.Registry
	recorder *metrics.Recorder
	stderr   io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{stderr: os.Stderr}
	root := &cobra.Command{
		Use:           "lvsvd",
		Short:         "Randomized and exact SVD of dense CSV matrices",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	a.flags.register(root.PersistentFlags())
	root.AddCommand(a.randomizedCmd(), a.exactCmd(), a.qrCmd(), a.devicesCmd())

	return root
}

// setup resolves configuration, logging and metrics for one run.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := a.flags.resolve(cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.runID = uuid.New().String()

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	zerolog.SetGlobalLevel(level)
	var out io.Writer = a.stderr
	if f, ok := a.stderr.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		out = zerolog.ConsoleWriter{Out: f}
	}
	a.logger = zerolog.New(out).With().Timestamp().Str("run_id", a.runID).Logger()
	log.Logger = a.logger

	if cfg.Metrics {
		a.registry = prometheus.NewRegistry()
		if a.recorder, err = metrics.NewRecorder(a.registry); err != nil {
			return err
		}
	}

	return nil
}

// libOptions returns the library options of the resolved config.
func (a *app) libOptions() []rsvd.Option {
	return append(a.cfg.options(), rsvd.WithLogger(a.logger), rsvd.WithRecorder(a.recorder))
}

// writeMetrics dumps the gathered families in the text exposition format.
func (a *app) writeMetrics() error {
	if a.registry == nil {
		return nil
	}
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(a.cfg.OutputDir, metricsName))
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err = expfmt.MetricFamilyToText(f, mf); err != nil {
			f.Close()
			return err
		}
	}

	return f.Close()
}
