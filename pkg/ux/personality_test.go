// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"testing"
)

func TestParsePersonalityLevel(t *testing.T) {
	tests := []struct {
		input string
		want  PersonalityLevel
	}{
		{"full", PersonalityFull},
		{"f", PersonalityFull},
		{"FULL", PersonalityFull},
		{"standard", PersonalityStandard},
		{"std", PersonalityStandard},
		{"s", PersonalityStandard},
		{"minimal", PersonalityMinimal},
		{"min", PersonalityMinimal},
		{"m", PersonalityMinimal},
		{"machine", PersonalityMachine},
		{"quiet", PersonalityMachine},
		{"q", PersonalityMachine},
		{"nonsense", PersonalityStandard},
		{"", PersonalityStandard},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParsePersonalityLevel(tt.input); got != tt.want {
				t.Errorf("ParsePersonalityLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSetPersonalityLevel(t *testing.T) {
	old := GetPersonality()
	defer SetPersonality(old)

	SetPersonalityLevel(PersonalityMinimal)
	if got := GetPersonality().Level; got != PersonalityMinimal {
		t.Errorf("Level = %v, want PersonalityMinimal", got)
	}
}

func TestSetPersonality(t *testing.T) {
	old := GetPersonality()
	defer SetPersonality(old)

	SetPersonality(Personality{Level: PersonalityMachine})
	if got := GetPersonality().Level; got != PersonalityMachine {
		t.Errorf("Level = %v, want PersonalityMachine", got)
	}
}

func TestInitPersonality_EnvOverride(t *testing.T) {
	old := GetPersonality()
	defer SetPersonality(old)

	t.Setenv("ALEUTIANQA_PERSONALITY", "minimal")
	InitPersonality()

	if got := GetPersonality().Level; got != PersonalityMinimal {
		t.Errorf("Level = %v, want PersonalityMinimal from env", got)
	}
}

func TestShouldShowProgress(t *testing.T) {
	old := GetPersonality()
	defer SetPersonality(old)

	SetPersonalityLevel(PersonalityFull)
	if !ShouldShowProgress() {
		t.Error("expected progress in full mode")
	}

	SetPersonalityLevel(PersonalityMachine)
	if ShouldShowProgress() {
		t.Error("expected no progress in machine mode")
	}
}

func TestShouldShowColors(t *testing.T) {
	old := GetPersonality()
	defer SetPersonality(old)

	SetPersonalityLevel(PersonalityMachine)
	if ShouldShowColors() {
		t.Error("expected no colors in machine mode")
	}
}

func TestDefaultPersonality(t *testing.T) {
	p := DefaultPersonality()
	if p.Level != PersonalityFull {
		t.Errorf("default Level = %v, want PersonalityFull", p.Level)
	}
}
