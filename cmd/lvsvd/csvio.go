// SPDX-License-Identifier: MIT

package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/katalvlaran/lvsvd/matrix"
)

// readMatrix parses a numeric CSV; with header the first record is skipped.
func readMatrix(r io.Reader, header bool) (*matrix.Dense[float64], error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if header && len(records) > 0 {
		records = records[1:]
	}
	rows := make([][]float64, len(records))
	for i, rec := range records {
		rows[i] = make([]float64, len(rec))
		for j, field := range rec {
			if rows[i][j], err = strconv.ParseFloat(strings.TrimSpace(field), 64); err != nil {
				return nil, fmt.Errorf("csv record %d field %d: %w", i+1, j+1, err)
			}
		}
	}

	return matrix.FromRows(rows)
}

func readMatrixFile(path string, header bool) (*matrix.Dense[float64], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readMatrix(f, header)
}

func writeMatrixFile(dir, name string, m *matrix.Dense[float64]) error {
	records := make([][]string, m.Rows())
	for i := range records {
		row, err := matrix.Row(m, i)
		if err != nil {
			return err
		}
		records[i] = formatRow(row)
	}

	return writeRecords(filepath.Join(dir, name), records)
}

// writeVectorFile writes one value per line.
func writeVectorFile[T float32 | float64](dir, name string, v []T) error {
	records := make([][]string, len(v))
	for i, x := range v {
		records[i] = []string{strconv.FormatFloat(float64(x), 'g', -1, 64)}
	}

	return writeRecords(filepath.Join(dir, name), records)
}

func formatRow(row []float64) []string {
	out := make([]string, len(row))
	for j, x := range row {
		out[j] = strconv.FormatFloat(x, 'g', -1, 64)
	}

	return out
}

func writeRecords(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err = w.WriteAll(records); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	return f.Close()
}
