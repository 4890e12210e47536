// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package script

import (
	"context"
	"strings"
	"testing"
)

func TestValidateJS_ValidScript(t *testing.T) {
	valid := `const { test, expect } = require('@playwright/test');

test('loads the page', async ({ page }) => {
  await page.goto('https://example.com');
  await page.screenshot({ path: 'shot.png' });
});
`

	scriptErrors, err := ValidateJS(context.Background(), []byte(valid))
	if err != nil {
		t.Fatalf("ValidateJS() error = %v", err)
	}
	if len(scriptErrors) != 0 {
		t.Errorf("Expected no errors for valid script, got %+v", scriptErrors)
	}
}

func TestValidateJS_UnterminatedString(t *testing.T) {
	invalid := `await page.goto('https://example.com);`

	scriptErrors, err := ValidateJS(context.Background(), []byte(invalid))
	if err != nil {
		t.Fatalf("ValidateJS() error = %v", err)
	}
	if len(scriptErrors) == 0 {
		t.Fatal("Expected syntax errors for unterminated string")
	}
}

func TestValidateJS_MissingBrace(t *testing.T) {
	invalid := `test('broken', async ({ page }) => {
  await page.goto('https://example.com');
`

	scriptErrors, err := ValidateJS(context.Background(), []byte(invalid))
	if err != nil {
		t.Fatalf("ValidateJS() error = %v", err)
	}
	if len(scriptErrors) == 0 {
		t.Fatal("Expected syntax errors for missing brace")
	}

	e := scriptErrors[0]
	if e.Line < 1 {
		t.Errorf("Expected 1-based line number, got %d", e.Line)
	}
	if e.Message == "" {
		t.Error("Expected a non-empty error message")
	}
}

func TestValidateJS_EmptyInput(t *testing.T) {
	scriptErrors, err := ValidateJS(context.Background(), []byte(""))
	if err != nil {
		t.Fatalf("ValidateJS() error = %v", err)
	}
	if len(scriptErrors) != 0 {
		t.Errorf("Empty input should parse cleanly, got %+v", scriptErrors)
	}
}

func TestValidateJS_CapsErrorCount(t *testing.T) {
	// Many broken statements; collection must stop at the cap.
	invalid := strings.Repeat("const x = ;\n", 200)

	scriptErrors, err := ValidateJS(context.Background(), []byte(invalid))
	if err != nil {
		t.Fatalf("ValidateJS() error = %v", err)
	}
	if len(scriptErrors) == 0 {
		t.Fatal("Expected syntax errors")
	}
	if len(scriptErrors) > maxScriptErrors {
		t.Errorf("Expected at most %d errors, got %d", maxScriptErrors, len(scriptErrors))
	}
}

func TestFormatScriptErrors(t *testing.T) {
	errs := []ScriptError{
		{Line: 3, Column: 7, Message: "missing )"},
		{Line: 9, Column: 0, Message: "unexpected \"}\""},
	}

	got := formatScriptErrors(errs)
	if !strings.Contains(got, "line 3, col 7: missing )") {
		t.Errorf("Unexpected format: %s", got)
	}
	if !strings.Contains(got, "; ") {
		t.Error("Expected errors joined with semicolons")
	}
}
