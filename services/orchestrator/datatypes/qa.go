// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides request and response structures for the
// orchestrator service.
//
// Every inbound body type carries go-playground/validator tags plus a
// Validate() method that handlers call after binding. Custom validators
// for tracker keys and dataset names are registered in init() and
// delegate to pkg/validation so the HTTP layer and the CLI reject the
// same inputs.
package datatypes

import (
	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/AleutianQA/pkg/validation"
)

// =============================================================================
// Limits
// =============================================================================

const (
	// MaxDescriptionBytes caps feature descriptions. Descriptions are
	// echoed into tracker payloads and agent tasks, so unbounded input
	// would fan out to every downstream call.
	MaxDescriptionBytes = 32 * 1024 // 32KB

	// MaxTestCaseBytes caps pasted test-case content on run launch and
	// script emission.
	MaxTestCaseBytes = 64 * 1024 // 64KB

	// MaxDatasetRows caps synthetic dataset generation requests.
	MaxDatasetRows = 1000
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// qaValidate is the validator instance for QA datatypes.
// Initialized in init() with custom validators.
var qaValidate *validator.Validate

func init() {
	qaValidate = validator.New()

	_ = qaValidate.RegisterValidation("projectkey", validateProjectKey)
	_ = qaValidate.RegisterValidation("issuekey", validateIssueKey)
	_ = qaValidate.RegisterValidation("datasetname", validateDatasetName)
	_ = qaValidate.RegisterValidation("maxdescbytes", validateMaxDescriptionBytes)
}

// validateProjectKey accepts JIRA project keys (PROJ).
func validateProjectKey(fl validator.FieldLevel) bool {
	return validation.ValidateProjectKey(fl.Field().String()) == nil
}

// validateIssueKey accepts JIRA issue keys (PROJ-123).
func validateIssueKey(fl validator.FieldLevel) bool {
	return validation.ValidateIssueKey(fl.Field().String()) == nil
}

// validateDatasetName accepts registry dataset names. Empty is allowed
// here; pair with required when the field is mandatory.
func validateDatasetName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" {
		return true
	}
	return validation.ValidateDatasetName(name) == nil
}

// validateMaxDescriptionBytes checks byte length (not rune count) so
// large multi-byte payloads cannot slip past the cap.
func validateMaxDescriptionBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxDescriptionBytes
}

// =============================================================================
// Tracker Requests
// =============================================================================

// CreateIssueRequest is the body for POST /v1/tracker/issues.
//
// Module and Complexity are rendered into the issue description
// verbatim, matching the manual workflow this tool replaces. IssueType
// defaults to "Task" downstream when empty.
type CreateIssueRequest struct {
	ProjectKey  string `json:"project_key" validate:"required,projectkey"`
	Title       string `json:"title" validate:"required,min=3,max=255"`
	Description string `json:"description" validate:"required,maxdescbytes"`
	Module      string `json:"module" validate:"max=100"`
	Complexity  string `json:"complexity" validate:"omitempty,oneof=Low Medium High"`
	IssueType   string `json:"issue_type" validate:"max=50"`
}

// Validate validates the CreateIssueRequest fields.
func (r *CreateIssueRequest) Validate() error {
	return qaValidate.Struct(r)
}

// CreateIssueResponse is returned with 201 on issue creation. Payload
// is the exact ADF document sent to the tracker so the UI can display
// what actually landed.
type CreateIssueResponse struct {
	Key      string `json:"key"`
	Payload  any    `json:"payload"`
	TestCase string `json:"test_case"`
}

// FetchIssueResponse is the body for GET /v1/tracker/issues/:issueKey.
type FetchIssueResponse struct {
	Key         string `json:"key"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	TestCase    string `json:"test_case"`
}

// =============================================================================
// Test Case Requests
// =============================================================================

// GenerateTestCaseRequest is the body for POST /v1/testcases. It
// renders a test case from an explicit triple without a tracker
// round-trip, for teams that draft before filing.
type GenerateTestCaseRequest struct {
	IssueKey    string `json:"issue_key" validate:"required,issuekey"`
	Summary     string `json:"summary" validate:"required,max=255"`
	Description string `json:"description" validate:"maxdescbytes"`
}

// Validate validates the GenerateTestCaseRequest fields.
func (r *GenerateTestCaseRequest) Validate() error {
	return qaValidate.Struct(r)
}

// SaveTestCaseRequest is the body for POST /v1/testcases/save.
// Content may be user-edited test-case text; when empty the test case
// is regenerated from the summary and description.
type SaveTestCaseRequest struct {
	IssueKey    string `json:"issue_key" validate:"required,issuekey"`
	Summary     string `json:"summary" validate:"max=255"`
	Description string `json:"description" validate:"maxdescbytes"`
	Content     string `json:"content" validate:"omitempty,max=65536"`
}

// Validate validates the SaveTestCaseRequest fields.
func (r *SaveTestCaseRequest) Validate() error {
	return qaValidate.Struct(r)
}

// TestCaseResponse carries a rendered test case.
type TestCaseResponse struct {
	IssueKey string   `json:"issue_key"`
	Category string   `json:"category"`
	Steps    []string `json:"steps"`
	Content  string   `json:"content"`
	Path     string   `json:"path,omitempty"`
}

// =============================================================================
// Test Data Requests
// =============================================================================

// GenerateDataRequest is the body for POST /v1/data/generate.
// Seed makes generation reproducible; zero means a random seed.
type GenerateDataRequest struct {
	Name  string `json:"name" validate:"required,datasetname"`
	Count int    `json:"count" validate:"gte=0,lte=1000"`
	Seed  uint64 `json:"seed"`
}

// Validate validates the GenerateDataRequest fields.
func (r *GenerateDataRequest) Validate() error {
	return qaValidate.Struct(r)
}

// DatasetResponse summarizes a registry dataset. Rows are included
// only on explicit fetch, not in listings.
type DatasetResponse struct {
	Name     string     `json:"name"`
	Headers  []string   `json:"headers"`
	RowCount int        `json:"row_count"`
	Rows     [][]string `json:"rows,omitempty"`
	DumpPath string     `json:"dump_path,omitempty"`
}

// =============================================================================
// Automation Requests
// =============================================================================

// LaunchRunRequest is the body for POST /v1/automation/runs.
//
// TestCase is the manual test case whose Test Steps section drives the
// agent; without extractable steps the agent falls back to a general
// exploration task. DatasetName optionally names a registered dataset
// used to emit a replayable script alongside the report.
type LaunchRunRequest struct {
	IssueKey     string `json:"issue_key" validate:"omitempty,issuekey"`
	FeatureTitle string `json:"feature_title" validate:"required,max=255"`
	TestCase     string `json:"test_case" validate:"omitempty,max=65536"`
	TargetURL    string `json:"target_url" validate:"required,url"`
	Headless     bool   `json:"headless"`
	DatasetName  string `json:"dataset_name" validate:"datasetname"`
}

// Validate validates the LaunchRunRequest fields.
func (r *LaunchRunRequest) Validate() error {
	return qaValidate.Struct(r)
}

// LaunchRunResponse is returned with 202 on launch.
type LaunchRunResponse struct {
	RunID string `json:"run_id"`
	State string `json:"state"`
}

// RunStatusResponse carries one polled status line.
type RunStatusResponse struct {
	Status string `json:"status"`
	State  string `json:"state"`
}

// =============================================================================
// Script Requests
// =============================================================================

// EmitScriptRequest is the body for POST /v1/scripts.
type EmitScriptRequest struct {
	IssueKey    string `json:"issue_key" validate:"required,issuekey"`
	TestCase    string `json:"test_case" validate:"required,max=65536"`
	DatasetName string `json:"dataset_name" validate:"required,datasetname"`
	TargetURL   string `json:"target_url" validate:"required,url"`
	OutputDir   string `json:"output_dir" validate:"omitempty,max=512"`
}

// Validate validates the EmitScriptRequest fields.
func (r *EmitScriptRequest) Validate() error {
	return qaValidate.Struct(r)
}

// EmitScriptResponse carries the generated script.
type EmitScriptResponse struct {
	Path   string `json:"path,omitempty"`
	Script string `json:"script"`
}
