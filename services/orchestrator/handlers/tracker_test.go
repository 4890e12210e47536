// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for tracker handlers

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianQA/services/orchestrator/datatypes"
	"github.com/AleutianAI/AleutianQA/services/testgen"
	"github.com/AleutianAI/AleutianQA/services/tracker"
)

// fakeTracker is a scripted tracker.Client.
type fakeTracker struct {
	issueTypes []tracker.IssueType
	created    *tracker.CreateResult
	issue      *tracker.Issue
	err        error

	lastSpec tracker.IssueSpec
}

func (f *fakeTracker) ListIssueTypes(_ context.Context, _ string) ([]tracker.IssueType, error) {
	return f.issueTypes, f.err
}

func (f *fakeTracker) CreateIssue(_ context.Context, spec tracker.IssueSpec) (*tracker.CreateResult, error) {
	f.lastSpec = spec
	return f.created, f.err
}

func (f *fakeTracker) FetchIssue(_ context.Context, _ string) (*tracker.Issue, error) {
	return f.issue, f.err
}

func newTestGenerator(t *testing.T) *testgen.Generator {
	t.Helper()
	gen, err := testgen.NewGenerator()
	require.NoError(t, err)
	return gen
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

// =============================================================================
// ListIssueTypes Tests
// =============================================================================

func TestListIssueTypes_ReturnsNames(t *testing.T) {
	client := &fakeTracker{issueTypes: []tracker.IssueType{
		{ID: "1", Name: "Task"},
		{ID: "2", Name: "Bug"},
	}}
	router := gin.New()
	router.GET("/v1/tracker/projects/:projectKey/issue-types", ListIssueTypes(client))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/tracker/projects/QA/issue-types", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Names []string `json:"names"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Task", "Bug"}, resp.Names)
}

func TestListIssueTypes_RejectsBadProjectKey(t *testing.T) {
	router := gin.New()
	router.GET("/v1/tracker/projects/:projectKey/issue-types", ListIssueTypes(&fakeTracker{}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/tracker/projects/bad-key/issue-types", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListIssueTypes_NilClient503(t *testing.T) {
	router := gin.New()
	router.GET("/v1/tracker/projects/:projectKey/issue-types", ListIssueTypes(nil))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/tracker/projects/QA/issue-types", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// =============================================================================
// CreateIssue Tests
// =============================================================================

func TestCreateIssue_ReturnsKeyPayloadAndTestCase(t *testing.T) {
	client := &fakeTracker{created: &tracker.CreateResult{
		Key:     "QA-42",
		Payload: json.RawMessage(`{"fields":{"summary":"User login"}}`),
	}}
	router := gin.New()
	router.POST("/v1/tracker/issues", CreateIssue(client, newTestGenerator(t)))

	w := postJSON(t, router, "/v1/tracker/issues", datatypes.CreateIssueRequest{
		ProjectKey:  "QA",
		Title:       "User login with email",
		Description: "Users log in with email and password.",
		Module:      "Auth",
		Complexity:  "Medium",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp datatypes.CreateIssueResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "QA-42", resp.Key)
	assert.NotNil(t, resp.Payload)
	assert.Contains(t, resp.TestCase, "Test Case ID: TC_QA-42")
	assert.Contains(t, resp.TestCase, "Test Steps:")

	assert.Equal(t, "QA", client.lastSpec.ProjectKey)
	assert.Equal(t, "Auth", client.lastSpec.Module)
}

func TestCreateIssue_ValidationFailure400(t *testing.T) {
	router := gin.New()
	router.POST("/v1/tracker/issues", CreateIssue(&fakeTracker{}, newTestGenerator(t)))

	w := postJSON(t, router, "/v1/tracker/issues", datatypes.CreateIssueRequest{
		ProjectKey: "bad key",
		Title:      "x",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateIssue_TrackerFailure502(t *testing.T) {
	client := &fakeTracker{err: errors.New("tracker returned status 401")}
	router := gin.New()
	router.POST("/v1/tracker/issues", CreateIssue(client, newTestGenerator(t)))

	w := postJSON(t, router, "/v1/tracker/issues", datatypes.CreateIssueRequest{
		ProjectKey:  "QA",
		Title:       "User login",
		Description: "desc",
	})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "401")
}

// =============================================================================
// FetchIssue Tests
// =============================================================================

func TestFetchIssue_IncludesGeneratedTestCase(t *testing.T) {
	client := &fakeTracker{issue: &tracker.Issue{
		Key:         "QA-7",
		Summary:     "Search products by name",
		Description: "Users can search the catalog.",
	}}
	router := gin.New()
	router.GET("/v1/tracker/issues/:issueKey", FetchIssue(client, newTestGenerator(t)))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/tracker/issues/QA-7", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp datatypes.FetchIssueResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "QA-7", resp.Key)
	assert.Equal(t, "Search products by name", resp.Summary)
	assert.Contains(t, resp.TestCase, "TC_QA-7")
}

func TestFetchIssue_SanitizesKey(t *testing.T) {
	client := &fakeTracker{issue: &tracker.Issue{Key: "QA-7", Summary: "s"}}
	router := gin.New()
	router.GET("/v1/tracker/issues/:issueKey", FetchIssue(client, newTestGenerator(t)))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/tracker/issues/%20qa-7%20", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFetchIssue_BadKey400(t *testing.T) {
	router := gin.New()
	router.GET("/v1/tracker/issues/:issueKey", FetchIssue(&fakeTracker{}, newTestGenerator(t)))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/tracker/issues/not-a-key", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
