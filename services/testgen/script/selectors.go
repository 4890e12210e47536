// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package script emits Playwright-style test scripts from manual test
// cases and datasets.
//
// Selector mapping is heuristic: common field names map to the selectors
// those fields conventionally carry in web apps. Anything unknown falls
// back to id and name attributes derived from the field name. Generated
// scripts are a starting point for QA engineers, not a guarantee.
package script

import (
	"strings"
)

// SubmitSelector is the selector clicked for submit-flavored actions.
const SubmitSelector = `button[type="submit"]`

// selectorTable maps normalized field names to selector lists.
var selectorTable = map[string]string{
	"email":    `input[type="email"], #email, [name="email"]`,
	"password": `input[type="password"], #password`,
	"username": `#username, [name="username"]`,
	"user":     `#username, [name="username"]`,
	"search":   `input[type="search"], #search, [name="q"]`,
	"query":    `input[type="search"], #search, [name="q"]`,
	"phone":    `input[type="tel"], #phone`,
}

// submitNames are field names that denote the submit control itself.
var submitNames = map[string]bool{
	"submit": true,
	"login":  true,
	"save":   true,
	"send":   true,
}

// Slug normalizes a field name to lower snake case: "First Name" becomes
// "first_name".
func Slug(field string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(field)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return b.String()
}

// SelectorFor returns the selector list for a field name. Unknown fields
// fall back to "#<slug>, [name=\"<slug>\"]".
func SelectorFor(field string) string {
	if selector, ok := knownSelector(field); ok {
		return selector
	}
	slug := Slug(field)
	return "#" + slug + `, [name="` + slug + `"]`
}

// knownSelector returns a selector only for heuristic-table hits.
func knownSelector(field string) (string, bool) {
	selector, ok := selectorTable[Slug(field)]
	return selector, ok
}

// IsSubmit reports whether a field name denotes the submit control.
func IsSubmit(field string) bool {
	return submitNames[Slug(field)]
}
