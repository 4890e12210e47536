// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// taskBudgetRunes caps the instruction text sent to the agent. The
	// agent forwards the whole task to its LLM on every step, so an
	// unbounded task inflates every downstream request.
	taskBudgetRunes = 4000

	chunkSize    = 1000
	chunkOverlap = 100
)

var chunkSeparators = []string{"\n\n", "\n", " ", ""}

// BuildTask renders the automation instructions for one feature run.
//
// Without steps the agent gets a general exploration prompt. With steps
// it gets the numbered step list plus the standing instructions every
// run needs. Step text beyond the instruction budget is reduced to its
// leading chunks so the task never exceeds taskBudgetRunes.
func BuildTask(steps []string, featureTitle, targetURL string) string {
	if len(steps) == 0 {
		return generalTask(featureTitle, targetURL)
	}

	task := stepTask(steps, featureTitle, targetURL)
	if utf8.RuneCountInString(task) <= taskBudgetRunes {
		return task
	}

	condensed := condenseSteps(steps, featureTitle, targetURL)
	return stepTask(condensed, featureTitle, targetURL)
}

// generalTask is the fallback prompt when no concrete steps were
// extracted from the test case.
func generalTask(featureTitle, targetURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Navigate to %s and test the feature: %s\n\n", targetURL, featureTitle)
	b.WriteString("General testing approach:\n")
	b.WriteString("1. Navigate to the main page\n")
	fmt.Fprintf(&b, "2. Look for elements related to '%s'\n", featureTitle)
	b.WriteString("3. Interact with any forms, buttons, or input fields\n")
	b.WriteString("4. Take screenshots of the process\n")
	b.WriteString("5. Verify the functionality works as expected")
	return b.String()
}

func stepTask(steps []string, featureTitle, targetURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Navigate to %s and execute the following test steps for feature: %s\n\n", targetURL, featureTitle)
	b.WriteString("Detailed Test Steps:\n")
	for i, step := range steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	b.WriteString("\nIMPORTANT INSTRUCTIONS:\n")
	b.WriteString("- Take screenshots at each major step\n")
	b.WriteString("- If you encounter login pages, try common test credentials or skip authentication\n")
	fmt.Fprintf(&b, "- Look for elements that match the feature description: %s\n", featureTitle)
	b.WriteString("- Document any errors or unexpected behavior\n")
	b.WriteString("- Capture the final state after completing all steps\n")
	b.WriteString("- If specific elements are not found, document this in the results")
	return b.String()
}

// condenseSteps rechunks oversized step text and keeps the leading
// chunks that fit the remaining budget once the prompt scaffold is
// accounted for. At least one chunk is always kept.
func condenseSteps(steps []string, featureTitle, targetURL string) []string {
	scaffold := utf8.RuneCountInString(stepTask(nil, featureTitle, targetURL))
	budget := taskBudgetRunes - scaffold
	if budget < chunkSize {
		budget = chunkSize
	}

	source := strings.Join(steps, "\n")

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
		textsplitter.WithSeparators(chunkSeparators),
	)
	chunks, err := splitter.SplitText(source)
	if err != nil || len(chunks) == 0 {
		if err != nil {
			slog.Warn("Step text chunking failed, truncating instead.", "error", err)
		}
		return []string{truncateRunes(source, budget)}
	}

	// Each kept chunk becomes one numbered step, so leave a little
	// headroom per chunk for the numbering.
	const stepOverhead = 5

	used := 0
	var kept []string
	for _, chunk := range chunks {
		cost := utf8.RuneCountInString(chunk) + stepOverhead
		if len(kept) > 0 && used+cost > budget {
			break
		}
		kept = append(kept, chunk)
		used += cost
	}

	slog.Debug("Condensed oversized test steps", "chunks", len(chunks), "kept", len(kept))
	return kept
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
