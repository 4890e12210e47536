// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianQA/pkg/ux"
	"github.com/AleutianAI/AleutianQA/pkg/validation"
	"github.com/AleutianAI/AleutianQA/services/datagen"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	dataCount  int    // Rows to generate
	dataSeed   uint64 // Deterministic seed; 0 randomizes
	dataOutDir string // Output directory
	dataJSON   bool   // Also dump a JSON copy
)

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	dataGenerateCmd.Flags().IntVarP(&dataCount, "count", "n", 10,
		"Number of rows to generate (1-1000)")
	dataGenerateCmd.Flags().Uint64Var(&dataSeed, "seed", 0,
		"Deterministic seed; 0 picks a random one")
	dataGenerateCmd.Flags().StringVarP(&dataOutDir, "out", "o", "",
		"Output directory (default: config.yaml dataset_dir or test_data)")
	dataGenerateCmd.Flags().BoolVar(&dataJSON, "json", false,
		"Also dump a JSON copy of the dataset")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// runDataGenerate writes a synthetic CSV dataset. The CSV lands in the
// watched dataset directory so a running orchestrator picks it up.
func runDataGenerate(cmd *cobra.Command, args []string) {
	name := args[0]
	if err := validation.ValidateDatasetName(name); err != nil {
		ux.Error("Invalid dataset name: " + err.Error())
		os.Exit(1)
	}

	ds := datagen.Generate(name, dataCount, dataSeed)

	outDir := firstNonEmpty(dataOutDir, config.DatasetDir, "test_data")
	path, err := writeCSV(ds, outDir)
	if err != nil {
		ux.Error("Dataset write failed: " + err.Error())
		os.Exit(1)
	}

	ux.Success("Generated " + strconv.Itoa(len(ds.Rows)) + " rows")
	ux.KeyValue("CSV", path)

	if dataJSON {
		jsonPath, err := ds.WriteJSON(outDir)
		if err != nil {
			ux.Error("JSON dump failed: " + err.Error())
			os.Exit(1)
		}
		ux.KeyValue("JSON", jsonPath)
	}
}

// writeCSV stores the dataset as <name>.csv under dir.
func writeCSV(ds *datagen.Dataset, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create dataset directory: %w", err)
	}

	path := filepath.Join(dir, ds.Name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(ds.Headers); err != nil {
		return "", fmt.Errorf("failed to write headers: %w", err)
	}
	for _, row := range ds.Rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return path, nil
}

// runDataInspect parses a CSV dataset and prints its shape and a sample.
func runDataInspect(cmd *cobra.Command, args []string) {
	ds, err := datagen.LoadCSVFile(args[0])
	if err != nil {
		ux.Error("Dataset load failed: " + err.Error())
		os.Exit(1)
	}

	ux.Title("Dataset " + ds.Name)
	ux.KeyValue("Rows", strconv.Itoa(len(ds.Rows)))
	ux.KeyValue("Fields", strconv.Itoa(len(ds.Headers)))
	for _, header := range ds.Headers {
		sample := ""
		if v, ok := ds.Value(0, header); ok {
			sample = v
		}
		ux.CheckStatus(header, ux.IconBullet, sample)
	}
}
