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
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// ScriptError is one syntax error position in a generated script.
type ScriptError struct {
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

// maxScriptErrors caps error collection on heavily malformed input.
const maxScriptErrors = 50

// ValidateJS parses src as JavaScript and returns the syntax errors found.
//
// Uses tree-sitter, so "valid" means "parses", not "runs": undefined
// identifiers and type errors pass. That is the right bar for a generated
// script that a human will review anyway; the gate exists to catch broken
// templating, typically from unescaped quoting in step text.
func ValidateJS(ctx context.Context, src []byte) ([]ScriptError, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing failed: %w", err)
	}
	defer tree.Close()

	errors := make([]ScriptError, 0)
	collectSyntaxErrorsRecursive(tree.RootNode(), src, &errors, 0)
	return errors, nil
}

// collectSyntaxErrorsRecursive walks the tree collecting ERROR/MISSING
// nodes. Depth is bounded to avoid stack overflow on pathological input.
func collectSyntaxErrorsRecursive(node *sitter.Node, content []byte, errors *[]ScriptError, depth int) {
	if depth > 1000 || len(*errors) >= maxScriptErrors {
		return
	}

	if node.IsError() || node.IsMissing() {
		startPoint := node.StartPoint()

		msg := "syntax error"
		if node.IsMissing() {
			msg = fmt.Sprintf("missing %s", node.Type())
		} else {
			start := node.StartByte()
			end := node.EndByte()
			if end > uint32(len(content)) {
				end = uint32(len(content))
			}
			if end > start && end-start < 80 {
				msg = fmt.Sprintf("unexpected %q", string(content[start:end]))
			}
		}

		*errors = append(*errors, ScriptError{
			Line:    int(startPoint.Row) + 1,
			Column:  int(startPoint.Column),
			Message: msg,
		})
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		collectSyntaxErrorsRecursive(node.Child(i), content, errors, depth+1)
	}
}

// formatScriptErrors renders errors as a single diagnostic line.
func formatScriptErrors(errs []ScriptError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, fmt.Sprintf("line %d, col %d: %s", e.Line, e.Column, e.Message))
	}
	return strings.Join(parts, "; ")
}
