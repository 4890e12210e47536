// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package catalog classifies feature descriptions into test categories.
//
// The catalog is an embedded YAML document mapping keywords to canned
// manual-test steps. Classification is deliberately simple: lowercase the
// title and description, return the highest-priority category containing a
// keyword hit, fall back to the generic category otherwise.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// GenericName is the name of the mandatory fallback category.
const GenericName = "generic"

// Category is one entry of the test category catalog.
type Category struct {
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	Priority      int      `yaml:"priority"`
	Keywords      []string `yaml:"keywords"`
	Preconditions []string `yaml:"preconditions"`
	Steps         []string `yaml:"steps"`
}

type categoryFile struct {
	Categories []Category `yaml:"categories"`
}

// Catalog holds the loaded category set, sorted by descending priority.
type Catalog struct {
	Categories []Category

	generic *Category
}

// Load parses the embedded catalog.
//
// It performs the following operations:
// 1. Unmarshals the embedded YAML data.
// 2. Validates every category and locates the generic fallback.
// 3. Sorts categories from highest to lowest priority.
//
// Returns an error if the embedded YAML is malformed or a category is
// incomplete. A missing generic category is an error: Classify must always
// have somewhere to land.
func Load() (*Catalog, error) {
	var file categoryFile
	if err := yaml.Unmarshal(EmbeddedCategories, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the embedded catalog: %w", err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("embedded catalog contains no categories")
	}

	for i := range file.Categories {
		c := &file.Categories[i]
		if c.Name == "" {
			return nil, fmt.Errorf("category %d has no name", i)
		}
		if len(c.Steps) == 0 {
			return nil, fmt.Errorf("category %q has no steps", c.Name)
		}
		if c.Name != GenericName && len(c.Keywords) == 0 {
			return nil, fmt.Errorf("category %q has no keywords", c.Name)
		}
	}

	sort.SliceStable(file.Categories, func(i, j int) bool {
		return file.Categories[i].Priority > file.Categories[j].Priority
	})

	catalog := &Catalog{Categories: file.Categories}
	for i := range catalog.Categories {
		if catalog.Categories[i].Name == GenericName {
			catalog.generic = &catalog.Categories[i]
		}
	}
	if catalog.generic == nil {
		return nil, fmt.Errorf("embedded catalog is missing the %q fallback category", GenericName)
	}

	return catalog, nil
}

// Classify returns the category for a feature title and description.
//
// Iterates categories by descending priority and returns the first one with
// a keyword contained in the lowercased combined text. No hit returns the
// generic category; the result is never nil.
func (c *Catalog) Classify(title, description string) *Category {
	text := strings.ToLower(title + " " + description)
	for i := range c.Categories {
		category := &c.Categories[i]
		for _, keyword := range category.Keywords {
			if strings.Contains(text, keyword) {
				return category
			}
		}
	}
	return c.generic
}

// Generic returns the fallback category.
func (c *Catalog) Generic() *Category {
	return c.generic
}

// Lookup returns the category with the given name.
func (c *Catalog) Lookup(name string) (*Category, bool) {
	for i := range c.Categories {
		if c.Categories[i].Name == name {
			return &c.Categories[i], true
		}
	}
	return nil, false
}
