// SPDX-License-Identifier: MIT

// Command lvsvd computes randomized, exact and QR decompositions of CSV
// matrices.
//
//	lvsvd randomized --input A.csv --output-dir out/ --k 20 --block-rows 4096
//	lvsvd exact      --input A.csv --output-dir out/ --backend native
//	lvsvd qr         --input A.csv --output-dir out/
//	lvsvd devices    --device accelerator
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
