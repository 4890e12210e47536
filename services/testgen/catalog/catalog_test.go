// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package catalog

import (
	"testing"

	"gopkg.in/yaml.v3"
)

// ============================================================================
// Embedded Data Tests
// ============================================================================

func TestEmbeddedCategoriesIntegrity(t *testing.T) {
	if len(EmbeddedCategories) == 0 {
		t.Fatal("Embedded catalog is empty. Did the build fail to include 'categories.yaml'?")
	}

	var dump map[string]interface{}
	if err := yaml.Unmarshal(EmbeddedCategories, &dump); err != nil {
		t.Fatalf("Embedded data is not valid YAML: %v", err)
	}
}

// ============================================================================
// Load Tests
// ============================================================================

func TestLoad(t *testing.T) {
	catalog, err := Load()
	if err != nil {
		t.Fatalf("Failed to load embedded catalog: %v", err)
	}

	wantNames := []string{
		"authentication", "checkout", "file upload", "search",
		"form submission", "profile", "notifications", "navigation", "generic",
	}
	if len(catalog.Categories) != len(wantNames) {
		t.Fatalf("Expected %d categories, got %d", len(wantNames), len(catalog.Categories))
	}
	for _, name := range wantNames {
		if _, ok := catalog.Lookup(name); !ok {
			t.Errorf("Expected category %q in catalog", name)
		}
	}
}

func TestLoad_SortedByPriority(t *testing.T) {
	catalog, err := Load()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}

	for i := 1; i < len(catalog.Categories); i++ {
		if catalog.Categories[i-1].Priority < catalog.Categories[i].Priority {
			t.Errorf("Categories not sorted by descending priority: %q (%d) before %q (%d)",
				catalog.Categories[i-1].Name, catalog.Categories[i-1].Priority,
				catalog.Categories[i].Name, catalog.Categories[i].Priority)
		}
	}

	last := catalog.Categories[len(catalog.Categories)-1]
	if last.Name != GenericName || last.Priority != 0 {
		t.Errorf("Expected generic fallback last at priority 0, got %q (%d)", last.Name, last.Priority)
	}
}

func TestLoad_CategoriesAreComplete(t *testing.T) {
	catalog, err := Load()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}

	for _, c := range catalog.Categories {
		if len(c.Steps) < 3 {
			t.Errorf("Category %q has only %d steps", c.Name, len(c.Steps))
		}
		if len(c.Preconditions) == 0 {
			t.Errorf("Category %q has no preconditions", c.Name)
		}
		if c.Name != GenericName && len(c.Keywords) == 0 {
			t.Errorf("Category %q has no keywords", c.Name)
		}
	}
}

func TestGeneric_DefaultSteps(t *testing.T) {
	catalog, err := Load()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}

	generic := catalog.Generic()
	if generic == nil {
		t.Fatal("Expected non-nil generic category")
	}

	wantSteps := []string{
		"Review the feature described in the requirement.",
		"Perform actions according to the described behavior.",
		"Validate the expected outcomes.",
	}
	if len(generic.Steps) != len(wantSteps) {
		t.Fatalf("Expected %d generic steps, got %d", len(wantSteps), len(generic.Steps))
	}
	for i, want := range wantSteps {
		if generic.Steps[i] != want {
			t.Errorf("Generic step %d: expected %q, got %q", i, want, generic.Steps[i])
		}
	}
}

// ============================================================================
// Classify Tests
// ============================================================================

func TestClassify(t *testing.T) {
	catalog, err := Load()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}

	tests := []struct {
		name        string
		title       string
		description string
		want        string
	}{
		{
			name:  "login feature",
			title: "User login with MFA",
			want:  "authentication",
		},
		{
			name:        "keyword in description only",
			title:       "New landing page",
			description: "Users should be able to sign in from the hero banner",
			want:        "authentication",
		},
		{
			name:  "checkout feature",
			title: "One-click checkout for returning customers",
			want:  "checkout",
		},
		{
			name:  "search feature",
			title: "Autocomplete for product search",
			want:  "search",
		},
		{
			name:  "upload feature",
			title: "Drag and drop attachment upload",
			want:  "file upload",
		},
		{
			name:  "form feature",
			title: "Contact form with required field validation",
			want:  "form submission",
		},
		{
			name:  "profile feature",
			title: "Edit display name in account settings",
			want:  "profile",
		},
		{
			name:  "notification feature",
			title: "Toast banner after successful save",
			want:  "notifications",
		},
		{
			name:  "navigation feature",
			title: "Collapsible sidebar menu",
			want:  "navigation",
		},
		{
			name:  "no keyword hit",
			title: "Recalculate currency conversion rates nightly",
			want:  "generic",
		},
		{
			name:  "case insensitive",
			title: "PASSWORD RESET FLOW",
			want:  "authentication",
		},
		{
			name: "empty input",
			want: "generic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := catalog.Classify(tt.title, tt.description)
			if got == nil {
				t.Fatal("Classify returned nil")
			}
			if got.Name != tt.want {
				t.Errorf("Classify(%q, %q) = %q, want %q", tt.title, tt.description, got.Name, tt.want)
			}
		})
	}
}

func TestClassify_PriorityWinsOnMultipleHits(t *testing.T) {
	catalog, err := Load()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}

	// "login" (authentication, 90) and "form" (form submission, 60) both
	// hit; the higher priority category must win.
	got := catalog.Classify("Login form redesign", "")
	if got.Name != "authentication" {
		t.Errorf("Expected authentication to outrank form submission, got %q", got.Name)
	}
}

// ============================================================================
// Lookup Tests
// ============================================================================

func TestLookup_Missing(t *testing.T) {
	catalog, err := Load()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}

	if _, ok := catalog.Lookup("does-not-exist"); ok {
		t.Error("Expected Lookup to miss for unknown category")
	}
}
