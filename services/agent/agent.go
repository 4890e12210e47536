// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package agent drives AI browser automation for generated test cases.
//
// Two implementations satisfy the Agent interface. BrowserClarkClient
// talks to a BrowserClark endpoint backed by a DeepSeek model and runs
// the test in a real browser. DemoAgent simulates a run locally and is
// used whenever the real agent is not configured.
package agent

import "context"

// Task describes one automation run handed to an Agent.
type Task struct {
	// TargetURL is the application under test.
	TargetURL string

	// Instructions is the full prompt built by BuildTask.
	Instructions string

	// FeatureTitle names the feature the run exercises.
	FeatureTitle string

	// Headless controls whether the browser renders on screen.
	Headless bool
}

// StatusFunc receives human-readable progress lines as a run advances.
// Implementations must tolerate a nil StatusFunc.
type StatusFunc func(line string)

// Agent executes one automation task and returns the agent's result text.
type Agent interface {
	Run(ctx context.Context, task Task, status StatusFunc) (string, error)
}
