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

import "testing"

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"email", "email"},
		{"First Name", "first_name"},
		{"  Job Title  ", "job_title"},
		{"UserName", "username"},
		{"credit-card-number", "credit_card_number"},
		{"a  b", "a_b"},
		{"", ""},
		{"---", ""},
	}

	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSelectorFor_KnownFields(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{"email", `input[type="email"], #email, [name="email"]`},
		{"Email", `input[type="email"], #email, [name="email"]`},
		{"password", `input[type="password"], #password`},
		{"username", `#username, [name="username"]`},
		{"user", `#username, [name="username"]`},
		{"search", `input[type="search"], #search, [name="q"]`},
		{"query", `input[type="search"], #search, [name="q"]`},
		{"phone", `input[type="tel"], #phone`},
	}

	for _, tt := range tests {
		if got := SelectorFor(tt.field); got != tt.want {
			t.Errorf("SelectorFor(%q) = %q, want %q", tt.field, got, tt.want)
		}
	}
}

func TestSelectorFor_UnknownFieldFallback(t *testing.T) {
	want := `#first_name, [name="first_name"]`
	if got := SelectorFor("First Name"); got != want {
		t.Errorf("SelectorFor fallback = %q, want %q", got, want)
	}
}

func TestIsSubmit(t *testing.T) {
	for _, field := range []string{"submit", "Login", "save", "SEND"} {
		if !IsSubmit(field) {
			t.Errorf("Expected IsSubmit(%q) to be true", field)
		}
	}
	for _, field := range []string{"email", "first_name", ""} {
		if IsSubmit(field) {
			t.Errorf("Expected IsSubmit(%q) to be false", field)
		}
	}
}
