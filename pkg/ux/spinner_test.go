// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"errors"
	"strings"
	"testing"
)

// =============================================================================
// Spinner Lifecycle Tests
// =============================================================================

func TestSpinner_MachineMode(t *testing.T) {
	withLevel(PersonalityMachine, func() {
		out := captureStdout(func() {
			s := NewSpinner("creating issue")
			s.Start()
			s.Stop()
		})
		if out != "PROGRESS: creating issue\n" {
			t.Errorf("spinner machine output = %q", out)
		}
	})
}

func TestSpinner_DoubleStartIsNoop(t *testing.T) {
	withLevel(PersonalityMachine, func() {
		out := captureStdout(func() {
			s := NewSpinner("launching run")
			s.Start()
			s.Start()
			s.Stop()
		})
		if strings.Count(out, "PROGRESS:") != 1 {
			t.Errorf("double Start printed progress twice: %q", out)
		}
	})
}

func TestSpinner_StopWithoutStart(t *testing.T) {
	withLevel(PersonalityMachine, func() {
		s := NewSpinner("idle")
		// Must not panic or block
		s.Stop()
	})
}

func TestSpinner_WithType(t *testing.T) {
	s := NewSpinner("waiting").WithType(SpinnerWave)
	if s.spinType != SpinnerWave {
		t.Errorf("spinType = %v, want SpinnerWave", s.spinType)
	}
}

func TestSpinner_UpdateMessage(t *testing.T) {
	s := NewSpinner("before")
	s.UpdateMessage("after")
	s.mu.Lock()
	got := s.message
	s.mu.Unlock()
	if got != "after" {
		t.Errorf("message = %q, want %q", got, "after")
	}
}

// =============================================================================
// Stop Variant Tests
// =============================================================================

func TestSpinner_StopWithSuccess(t *testing.T) {
	withLevel(PersonalityMachine, func() {
		out := captureStdout(func() {
			s := NewSpinner("creating issue")
			s.Start()
			s.StopWithSuccess("issue QA-7 created")
		})
		if !strings.Contains(out, "OK: issue QA-7 created") {
			t.Errorf("StopWithSuccess output = %q", out)
		}
	})
}

func TestSpinner_StopWithError(t *testing.T) {
	withLevel(PersonalityMachine, func() {
		errOut := captureStderr(func() {
			s := NewSpinner("creating issue")
			s.Start()
			s.StopWithError("tracker returned 401")
		})
		if !strings.Contains(errOut, "ERROR: tracker returned 401") {
			t.Errorf("StopWithError output = %q", errOut)
		}
	})
}

// =============================================================================
// WithSpinner Tests
// =============================================================================

func TestWithSpinner_Success(t *testing.T) {
	withLevel(PersonalityMachine, func() {
		err := WithSpinner("generating test case", func() error { return nil })
		if err != nil {
			t.Errorf("WithSpinner returned %v, want nil", err)
		}
	})
}

func TestWithSpinner_Error(t *testing.T) {
	withLevel(PersonalityMachine, func() {
		wantErr := errors.New("agent unavailable")
		err := WithSpinner("starting agent", func() error { return wantErr })
		if !errors.Is(err, wantErr) {
			t.Errorf("WithSpinner returned %v, want %v", err, wantErr)
		}
	})
}

// =============================================================================
// StepSpinner Tests
// =============================================================================

func TestStepSpinner_Advance(t *testing.T) {
	withLevel(PersonalityFull, func() {
		p := NewStepSpinner("running", 6)
		p.Advance("Initializing browser automation...")
		p.Advance("Navigating to target application...")

		p.mu.Lock()
		got := p.message
		current := p.current
		p.mu.Unlock()

		if current != 2 {
			t.Errorf("current = %d, want 2", current)
		}
		if !strings.Contains(got, "[2/6]") {
			t.Errorf("message = %q, want it to contain [2/6]", got)
		}
		if !strings.Contains(got, "Navigating") {
			t.Errorf("message = %q, want latest status", got)
		}
	})
}

func TestStepSpinner_SetStep(t *testing.T) {
	withLevel(PersonalityFull, func() {
		p := NewStepSpinner("running", 6)
		p.SetStep(5, "Generating test report...")

		p.mu.Lock()
		got := p.message
		p.mu.Unlock()

		if !strings.Contains(got, "[5/6]") {
			t.Errorf("message = %q, want it to contain [5/6]", got)
		}
	})
}

func TestStepSpinner_MachineModeSkipsMessageFormat(t *testing.T) {
	withLevel(PersonalityMachine, func() {
		p := NewStepSpinner("running", 6)
		p.Advance("step one")

		p.mu.Lock()
		got := p.message
		p.mu.Unlock()

		if got != "running" {
			t.Errorf("machine mode message = %q, want unchanged base", got)
		}
	})
}
