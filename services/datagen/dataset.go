// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datagen produces and manages synthetic test data.
//
// Datasets are small tabular structures: a header row plus string rows.
// They come from two sources, synthetic generation (faker) and CSV upload,
// and are consumed by generated test scripts and the browser agent. JSON
// dumps are written as flat files for use outside the tool.
package datagen

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/AleutianAI/AleutianQA/pkg/validation"
)

// maxRows caps synthetic generation; datasets are fixture-sized, not bulk.
const maxRows = 1000

// GeneratedHeaders is the column set of synthetic datasets, in order.
var GeneratedHeaders = []string{
	"first_name", "last_name", "email", "username", "password",
	"phone", "company", "job_title", "street", "city", "country",
}

// Dataset is a named table of test data.
type Dataset struct {
	Name    string     `json:"name"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Generate produces a synthetic dataset of n rows.
//
// n is clamped to [1, 1000]. The same non-zero seed yields the same rows,
// which keeps generated test scripts reproducible; seed 0 randomizes.
func Generate(name string, n int, seed uint64) *Dataset {
	if n < 1 {
		n = 1
	}
	if n > maxRows {
		n = maxRows
	}

	faker := gofakeit.New(seed)

	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, []string{
			faker.FirstName(),
			faker.LastName(),
			faker.Email(),
			faker.Username(),
			faker.Password(true, true, true, true, false, 14),
			faker.Phone(),
			faker.Company(),
			faker.JobTitle(),
			faker.Street(),
			faker.City(),
			faker.Country(),
		})
	}

	headers := make([]string, len(GeneratedHeaders))
	copy(headers, GeneratedHeaders)

	return &Dataset{Name: name, Headers: headers, Rows: rows}
}

// Field returns the column index of a header, matched case-insensitively.
func (d *Dataset) Field(name string) (int, bool) {
	for i, header := range d.Headers {
		if strings.EqualFold(header, name) {
			return i, true
		}
	}
	return 0, false
}

// Row returns row i, or nil when out of range.
func (d *Dataset) Row(i int) []string {
	if i < 0 || i >= len(d.Rows) {
		return nil
	}
	return d.Rows[i]
}

// Value returns the cell at (row, field). The field name is matched
// case-insensitively against the headers.
func (d *Dataset) Value(row int, field string) (string, bool) {
	col, ok := d.Field(field)
	if !ok {
		return "", false
	}
	r := d.Row(row)
	if r == nil || col >= len(r) {
		return "", false
	}
	return r[col], true
}

// Records converts the rows into maps keyed by header. This is the shape
// serialized by WriteJSON.
func (d *Dataset) Records() []map[string]string {
	records := make([]map[string]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		record := make(map[string]string, len(d.Headers))
		for i, header := range d.Headers {
			if i < len(row) {
				record[header] = row[i]
			}
		}
		records = append(records, record)
	}
	return records
}

// WriteJSON dumps the dataset to dir as
// testdata_<name>_<yyyymmdd_hhmmss>.json: a JSON array of objects keyed
// by header. Returns the written path.
func (d *Dataset) WriteJSON(dir string) (string, error) {
	if err := validation.ValidateDatasetName(d.Name); err != nil {
		return "", fmt.Errorf("invalid dataset name: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(d.Records(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal dataset: %w", err)
	}

	filename := fmt.Sprintf("testdata_%s_%s.json", d.Name, time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write dataset dump: %w", err)
	}
	return path, nil
}
