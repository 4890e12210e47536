// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tracker

import (
	"encoding/json"
	"strings"
)

// Atlassian Document Format. JIRA Cloud v3 requires descriptions as ADF
// documents; plain strings are rejected.

type adfDoc struct {
	Type    string    `json:"type"`
	Version int       `json:"version"`
	Content []adfNode `json:"content"`
}

type adfNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text,omitempty"`
	Content []adfNode `json:"content,omitempty"`
}

// descriptionADF renders the three-paragraph issue description.
func descriptionADF(description, module, complexity string) adfDoc {
	paragraph := func(text string) adfNode {
		return adfNode{
			Type:    "paragraph",
			Content: []adfNode{{Type: "text", Text: text}},
		}
	}
	return adfDoc{
		Type:    "doc",
		Version: 1,
		Content: []adfNode{
			paragraph("Feature Description: " + description),
			paragraph("Module: " + module),
			paragraph("Complexity: " + complexity),
		},
	}
}

// issueLabels tags authentication-flavored features so they can be
// filtered in the tracker. Everything gets the base "feature" label.
func issueLabels(title string) []string {
	lower := strings.ToLower(title)
	if strings.Contains(lower, "auth") || strings.Contains(lower, "login") {
		return []string{"feature", "authentication"}
	}
	return []string{"feature"}
}

// flattenADF extracts the plain text of an ADF document.
//
// Descriptions come back from the tracker as nested node trees. The walk
// is depth-first, collecting every text node and joining with single
// spaces, which matches how the description reads in the tracker UI.
func flattenADF(raw json.RawMessage) string {
	var root any
	if err := json.Unmarshal(raw, &root); err != nil {
		return ""
	}

	var texts []string
	var walk func(node any)
	walk = func(node any) {
		switch n := node.(type) {
		case map[string]any:
			if n["type"] == "text" {
				if text, ok := n["text"].(string); ok {
					texts = append(texts, text)
				}
			}
			if content, ok := n["content"].([]any); ok {
				for _, child := range content {
					walk(child)
				}
			}
		case []any:
			for _, child := range n {
				walk(child)
			}
		}
	}
	walk(root)

	return strings.Join(texts, " ")
}
