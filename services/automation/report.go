// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
)

const reportTemplateHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Test Automation Report - {{.ReportName}}</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            line-height: 1.6;
            color: #333;
            background: linear-gradient(135deg, #f5f7fa 0%, #c3cfe2 100%);
            margin: 0;
            padding: 20px;
        }
        .container {
            max-width: 1200px;
            margin: 0 auto;
            background: white;
            border-radius: 15px;
            box-shadow: 0 10px 30px rgba(0,0,0,0.15);
            overflow: hidden;
        }
        .header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
            padding: 40px;
            text-align: center;
        }
        .mode-badge {
            background: {{.BadgeColor}};
            color: {{.BadgeText}};
            padding: 8px 16px;
            border-radius: 20px;
            font-size: 0.9em;
            font-weight: bold;
            margin-top: 10px;
            display: inline-block;
        }
        .section {
            padding: 30px;
            border-bottom: 1px solid #eee;
        }
        .section:last-child {
            border-bottom: none;
        }
        .task-content {
            background: #f8f9fa;
            padding: 20px;
            border-radius: 10px;
            border-left: 4px solid #667eea;
            white-space: pre-wrap;
            font-family: 'Courier New', monospace;
            margin: 20px 0;
        }
        .result-content {
            background: #e8f5e8;
            padding: 20px;
            border-radius: 10px;
            border-left: 4px solid #28a745;
            white-space: pre-wrap;
            font-family: 'Courier New', monospace;
            margin: 20px 0;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>&#129302; Test Automation Report</h1>
            <h2>{{.ReportName}}</h2>
            <div class="mode-badge">{{.ModeBadge}}</div>
            <p>Generated on {{.Generated}}</p>
        </div>

        <div class="section">
            <h3>&#127919; Test Target</h3>
            <p><strong>URL:</strong> <a href="{{.TargetURL}}" target="_blank">{{.TargetURL}}</a></p>
            <p><strong>Executed:</strong> {{.Executed}}</p>
        </div>

        <div class="section">
            <h3>&#128203; Automation Task</h3>
            <div class="task-content">{{.Task}}</div>
        </div>

        <div class="section">
            <h3>&#128202; Results</h3>
            <div class="result-content">{{.Output}}</div>
        </div>

        <div class="section">
            <h3>&#128193; Report Files</h3>
            <ul>
                <li>&#128196; <strong>{{.ReportName}}.html</strong> - This test report</li>
                <li>&#128196; <strong>task.txt</strong> - Instructions sent to the agent</li>
                <li>&#128196; <strong>result.json</strong> - Machine-readable run result</li>
                <li>&#128193; <strong>Location:</strong> {{.ReportDir}}</li>
            </ul>
        </div>
    </div>
</body>
</html>`

var reportTemplate = template.Must(template.New("report").Parse(reportTemplateHTML))

// reportData carries everything the report document needs. A zero
// Generated timestamp is stamped at render time.
type reportData struct {
	ReportName string
	Real       bool
	TargetURL  string
	Task       string
	Output     string
	ReportDir  string
	Generated  time.Time
}

type reportView struct {
	ReportName string
	ModeBadge  string
	BadgeColor template.CSS
	BadgeText  template.CSS
	Generated  string
	TargetURL  string
	Executed   string
	Task       string
	Output     string
	ReportDir  string
}

// renderReport renders the HTML report document.
func renderReport(data reportData) ([]byte, error) {
	view := reportView{
		ReportName: data.ReportName,
		ModeBadge:  "DEMO MODE",
		BadgeColor: "#ffc107",
		BadgeText:  "#212529",
		Generated:  data.Generated.Format("January 2, 2006 at 3:04 PM"),
		TargetURL:  data.TargetURL,
		Executed:   data.Generated.Format("2006-01-02 15:04:05"),
		Task:       data.Task,
		Output:     data.Output,
		ReportDir:  data.ReportDir,
	}
	if data.Real {
		view.ModeBadge = "REAL AUTOMATION"
		view.BadgeColor = "#28a745"
		view.BadgeText = "white"
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

// writeRunArtifacts writes the report document and its sibling
// artifacts into the run directory concurrently.
func writeRunArtifacts(ctx context.Context, dir string, data reportData, result *RunResult) error {
	if data.Generated.IsZero() {
		data.Generated = time.Now()
	}

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		doc, err := renderReport(data)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, data.ReportName+".html")
		if err := os.WriteFile(path, doc, 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := os.WriteFile(filepath.Join(dir, "task.txt"), []byte(data.Task), 0o644); err != nil {
			return fmt.Errorf("failed to write task artifact: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		blob, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal run result: %w", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "result.json"), blob, 0o644); err != nil {
			return fmt.Errorf("failed to write result artifact: %w", err)
		}
		return nil
	})

	return g.Wait()
}
