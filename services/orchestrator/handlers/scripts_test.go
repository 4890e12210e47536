// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for script emission handler

package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianQA/services/datagen"
	"github.com/AleutianAI/AleutianQA/services/orchestrator/datatypes"
)

func scriptStore(t *testing.T) *datagen.Store {
	t.Helper()
	store := datagen.NewStore()
	ds, err := datagen.ParseCSV("login_data", strings.NewReader("email,password\na@b.com,secret\n"))
	require.NoError(t, err)
	store.Put(ds)
	return store
}

func emitBody() datatypes.EmitScriptRequest {
	return datatypes.EmitScriptRequest{
		IssueKey:    "QA-7",
		TestCase:    loginTestCase,
		DatasetName: "login_data",
		TargetURL:   "https://app.example.com",
	}
}

// =============================================================================
// EmitScript Tests
// =============================================================================

func TestEmitScript_WritesSpecFile(t *testing.T) {
	scriptDir := t.TempDir()
	router := gin.New()
	router.POST("/v1/scripts", EmitScript(scriptStore(t), scriptDir))

	w := postJSON(t, router, "/v1/scripts", emitBody())

	require.Equal(t, http.StatusOK, w.Code)

	var resp datatypes.EmitScriptResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Script, "await page.goto(TARGET_URL);")
	assert.Contains(t, resp.Script, "test('Step 1:")

	require.NotEmpty(t, resp.Path)
	assert.Equal(t, "TestScript_QA-7.spec.js", filepath.Base(resp.Path))
	assert.Equal(t, scriptDir, filepath.Dir(resp.Path))

	data, err := os.ReadFile(resp.Path)
	require.NoError(t, err)
	assert.Equal(t, resp.Script, string(data))
}

func TestEmitScript_OutputDirOverride(t *testing.T) {
	outDir := t.TempDir()
	router := gin.New()
	router.POST("/v1/scripts", EmitScript(scriptStore(t), t.TempDir()))

	body := emitBody()
	body.OutputDir = outDir
	w := postJSON(t, router, "/v1/scripts", body)

	require.Equal(t, http.StatusOK, w.Code)

	var resp datatypes.EmitScriptResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, outDir, filepath.Dir(resp.Path))
}

func TestEmitScript_UnknownDataset404(t *testing.T) {
	router := gin.New()
	router.POST("/v1/scripts", EmitScript(datagen.NewStore(), t.TempDir()))

	w := postJSON(t, router, "/v1/scripts", emitBody())

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEmitScript_NoSteps400(t *testing.T) {
	router := gin.New()
	router.POST("/v1/scripts", EmitScript(scriptStore(t), t.TempDir()))

	body := emitBody()
	body.TestCase = "Free-form notes with no steps section."
	w := postJSON(t, router, "/v1/scripts", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no extractable steps")
}

func TestEmitScript_BadIssueKey400(t *testing.T) {
	router := gin.New()
	router.POST("/v1/scripts", EmitScript(scriptStore(t), t.TempDir()))

	body := emitBody()
	body.IssueKey = "../../etc"
	w := postJSON(t, router, "/v1/scripts", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
