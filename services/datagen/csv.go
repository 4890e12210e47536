// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datagen

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/AleutianAI/AleutianQA/pkg/validation"
)

// ParseCSV reads a dataset from CSV content.
//
// Requirements on the input:
//   - valid UTF-8 (a leading BOM is tolerated and stripped)
//   - a header row with no empty cells
//   - every data row has exactly as many cells as the header
//
// A header-only file yields a dataset with zero rows.
func ParseCSV(name string, r io.Reader) (*Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV content: %w", err)
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("CSV content is not valid UTF-8")
	}

	content := strings.TrimPrefix(string(raw), "\uFEFF")

	reader := csv.NewReader(strings.NewReader(content))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV has no header row")
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, fmt.Errorf("CSV header cell %d is empty", i+1)
		}
		headers[i] = h
	}

	rows := make([][]string, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, record)
	}

	return &Dataset{Name: name, Headers: headers, Rows: rows}, nil
}

// NameFromFilename derives a dataset name from an uploaded filename:
// the file stem, lowercased, with spaces and dots collapsed to
// underscores. The result still has to pass ValidateDatasetName.
func NameFromFilename(filename string) string {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	stem = strings.ToLower(stem)
	stem = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, stem)
	return strings.Trim(stem, "_")
}

// LoadCSVFile reads a dataset from a .csv file. The dataset name is the
// file stem, e.g. "users" for users.csv, and must be a valid dataset name.
func LoadCSVFile(path string) (*Dataset, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := validation.ValidateDatasetName(name); err != nil {
		return nil, fmt.Errorf("file name is not a usable dataset name: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	return ParseCSV(name, f)
}
