// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package testgen

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// stepSectionPattern captures the Test Steps section of a test case: from
// the header up to the next known section or end of text.
var stepSectionPattern = regexp.MustCompile(`(?is)Test Steps:\s*(.*?)(?:Expected Result:|Priority:|Test Type:|$)`)

// stepNumberPrefix strips "1." / "12" style numbering.
var stepNumberPrefix = regexp.MustCompile(`^\d+\.?\s*`)

// stepBulletPrefix strips "-" / "•" style bullets.
var stepBulletPrefix = regexp.MustCompile(`^[-•]\s*`)

// ExtractSteps pulls the individual test steps out of test-case text.
//
// Users paste edited test cases back in before launching automation, so
// the parser is lenient: it accepts numbered lines and bulleted lines,
// strips the markers, and skips anything else. A missing Test Steps
// section yields an empty slice, not an error.
func ExtractSteps(content string) []string {
	match := stepSectionPattern.FindStringSubmatch(content)
	if match == nil {
		return nil
	}

	var steps []string
	for _, line := range strings.Split(match[1], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		first, _ := utf8.DecodeRuneInString(line)
		if !unicode.IsDigit(first) && !strings.HasPrefix(line, "- ") && !strings.HasPrefix(line, "• ") {
			continue
		}

		line = stepNumberPrefix.ReplaceAllString(line, "")
		line = stepBulletPrefix.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line != "" {
			steps = append(steps, line)
		}
	}
	return steps
}
