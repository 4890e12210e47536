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
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianQA/pkg/ux"
	"github.com/AleutianAI/AleutianQA/pkg/validation"
	"github.com/AleutianAI/AleutianQA/services/datagen"
	"github.com/AleutianAI/AleutianQA/services/testgen"
	"github.com/AleutianAI/AleutianQA/services/testgen/script"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	generateSummary     string // Feature summary used to pick the category
	generateDescription string // Feature description embedded in the test case
	generateSaveDir     string // Save the test case here
	generateScript      bool   // Also emit a browser test script
	generateDataset     string // CSV file feeding the script's form fills
	generateScriptDir   string // Script output directory
	generateTargetURL   string // Application under test
)

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	generateCmd.Flags().StringVarP(&generateSummary, "summary", "s", "",
		"Feature summary (drives the template category)")
	generateCmd.Flags().StringVarP(&generateDescription, "description", "d", "",
		"Feature description embedded in the test case")
	generateCmd.Flags().StringVar(&generateSaveDir, "save", "",
		"Save the test case to this directory")
	generateCmd.Flags().BoolVar(&generateScript, "script", false,
		"Also emit a Playwright-style test script")
	generateCmd.Flags().StringVar(&generateDataset, "dataset", "",
		"CSV file feeding the script's form fills")
	generateCmd.Flags().StringVarP(&generateScriptDir, "out", "o", "",
		"Script output directory (default: config.yaml script_dir or test_scripts)")
	generateCmd.Flags().StringVar(&generateTargetURL, "url", "",
		"Application under test (default: config.yaml target_url)")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// runGenerate renders a manual test case from a summary and description
// without touching the tracker, and optionally emits a runnable script.
func runGenerate(cmd *cobra.Command, args []string) {
	key, err := validation.SanitizeIssueKey(args[0])
	if err != nil {
		ux.Error("Invalid issue key: " + err.Error())
		os.Exit(1)
	}

	gen, err := testgen.NewGenerator()
	if err != nil {
		ux.Error("Test case generator unavailable: " + err.Error())
		os.Exit(1)
	}

	tc, err := gen.Generate(key, generateSummary, generateDescription)
	if err != nil {
		ux.Error("Test case generation failed: " + err.Error())
		os.Exit(1)
	}

	ux.KeyValue("Category", tc.Category)
	fmt.Println()
	fmt.Println(tc.Content)

	if generateSaveDir != "" {
		path, err := tc.Save(generateSaveDir)
		if err != nil {
			ux.Error("Save failed: " + err.Error())
			os.Exit(1)
		}
		ux.Success("Saved test case to " + path)
	}

	if !generateScript {
		return
	}

	var ds *datagen.Dataset
	if generateDataset != "" {
		ds, err = datagen.LoadCSVFile(generateDataset)
		if err != nil {
			ux.Error("Dataset load failed: " + err.Error())
			os.Exit(1)
		}
	}

	targetURL := firstNonEmpty(generateTargetURL, config.TargetURL, "http://localhost:3000")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	src, err := script.Emit(ctx, tc, ds, targetURL)
	if err != nil {
		ux.Error("Script emission failed: " + err.Error())
		os.Exit(1)
	}

	outDir := firstNonEmpty(generateScriptDir, config.ScriptDir, "test_scripts")
	path, err := script.Save(outDir, key, src)
	if err != nil {
		ux.Error("Script save failed: " + err.Error())
		os.Exit(1)
	}
	ux.Success("Saved test script to " + path)
}
