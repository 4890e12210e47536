// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package script

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AleutianAI/AleutianQA/pkg/validation"
	"github.com/AleutianAI/AleutianQA/services/datagen"
	"github.com/AleutianAI/AleutianQA/services/testgen"
)

// fill is one page.fill action planned for a script.
type fill struct {
	field    string
	selector string
	value    string
}

// submitCues mark steps that should end with a submit click.
var submitCues = []string{"submit", "log in", "login", "sign in", "save", "send"}

// Emit renders a Playwright spec file for a test case.
//
// One test() is emitted per test-case step. Dataset fields that map in the
// selector table are filled with row-0 values in the steps that mention
// them; steps with a submit cue click the submit button; every step takes
// a screenshot. The dataset may be nil, in which case no fills are
// emitted.
//
// The rendered script must pass the JavaScript syntax gate; a script that
// does not parse is never returned.
func Emit(ctx context.Context, tc *testgen.TestCase, ds *datagen.Dataset, targetURL string) (string, error) {
	if tc == nil {
		return "", fmt.Errorf("test case is required")
	}
	if targetURL == "" {
		return "", fmt.Errorf("target URL is required")
	}
	if len(tc.Steps) == 0 {
		return "", fmt.Errorf("test case %s has no steps to script", tc.IssueKey)
	}

	fills := planFills(ds)

	var b strings.Builder
	fmt.Fprintf(&b, "// Test script for %s: %s\n", tc.IssueKey, tc.Title)
	fmt.Fprintf(&b, "// Auto-generated from manual test case TC_%s. Review selectors before use.\n", tc.IssueKey)
	fmt.Fprintf(&b, "\n")
	fmt.Fprintf(&b, "const { test, expect } = require('@playwright/test');\n")
	fmt.Fprintf(&b, "\n")
	fmt.Fprintf(&b, "const TARGET_URL = '%s';\n", escapeJS(targetURL))
	fmt.Fprintf(&b, "\n")
	fmt.Fprintf(&b, "test.describe('%s: %s', () => {\n", tc.IssueKey, escapeJS(tc.Title))
	fmt.Fprintf(&b, "  test.beforeEach(async ({ page }) => {\n")
	fmt.Fprintf(&b, "    await page.goto(TARGET_URL);\n")
	fmt.Fprintf(&b, "  });\n")

	for i, step := range tc.Steps {
		stepLower := strings.ToLower(step)

		fmt.Fprintf(&b, "\n")
		fmt.Fprintf(&b, "  test('Step %d: %s', async ({ page }) => {\n", i+1, escapeJS(step))
		for _, f := range fills {
			if stepMentions(stepLower, f.field) {
				fmt.Fprintf(&b, "    await page.fill('%s', '%s');\n", f.selector, escapeJS(f.value))
			}
		}
		if stepWantsSubmit(stepLower) {
			fmt.Fprintf(&b, "    await page.click('%s');\n", SubmitSelector)
		}
		fmt.Fprintf(&b, "    await page.screenshot({ path: 'screenshots/step_%02d.png', fullPage: true });\n", i+1)
		fmt.Fprintf(&b, "  });\n")
	}

	fmt.Fprintf(&b, "});\n")

	rendered := b.String()

	scriptErrors, err := ValidateJS(ctx, []byte(rendered))
	if err != nil {
		return "", fmt.Errorf("failed to validate generated script: %w", err)
	}
	if len(scriptErrors) > 0 {
		return "", fmt.Errorf("generated script failed syntax validation: %s", formatScriptErrors(scriptErrors))
	}

	return rendered, nil
}

// Save writes a validated script to dir as TestScript_<issueKey>.spec.js.
// Returns the written path.
func Save(dir, issueKey, script string) (string, error) {
	key, err := validation.SanitizeIssueKey(issueKey)
	if err != nil {
		return "", fmt.Errorf("invalid issue key: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create script directory: %w", err)
	}

	path := filepath.Join(dir, "TestScript_"+key+".spec.js")
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		return "", fmt.Errorf("failed to write script: %w", err)
	}
	return path, nil
}

// planFills builds the fill actions available from a dataset: fields that
// map in the selector table, valued from row 0.
func planFills(ds *datagen.Dataset) []fill {
	if ds == nil || len(ds.Rows) == 0 {
		return nil
	}

	var fills []fill
	for _, header := range ds.Headers {
		selector, ok := knownSelector(header)
		if !ok {
			continue
		}
		value, ok := ds.Value(0, header)
		if !ok || value == "" {
			continue
		}
		fills = append(fills, fill{field: header, selector: selector, value: value})
	}
	return fills
}

// stepMentions reports whether a step references a field, tolerating
// snake_case versus spaced spellings.
func stepMentions(stepLower, field string) bool {
	slug := Slug(field)
	if slug == "" {
		return false
	}
	if strings.Contains(stepLower, strings.ReplaceAll(slug, "_", " ")) {
		return true
	}
	return strings.Contains(stepLower, slug)
}

// stepWantsSubmit reports whether a step should click the submit control.
func stepWantsSubmit(stepLower string) bool {
	for _, cue := range submitCues {
		if strings.Contains(stepLower, cue) {
			return true
		}
	}
	return false
}

// escapeJS makes a string safe inside a single-quoted JS literal.
func escapeJS(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
