package main

import (
	"testing"
)

func TestParseSteps(t *testing.T) {
	if got, err := parseSteps(nil); err != nil || got != 1 {
		t.Fatalf("expected default of 1 step, got %d err=%v", got, err)
	}
	if got, err := parseSteps([]string{" 3 "}); err != nil || got != 3 {
		t.Fatalf("expected 3 steps, got %d err=%v", got, err)
	}
	if _, err := parseSteps([]string{"0"}); err == nil {
		t.Fatalf("expected error for zero steps")
	}
	if _, err := parseSteps([]string{"two"}); err == nil {
		t.Fatalf("expected error for non-numeric steps")
	}
}

func TestParseVersion(t *testing.T) {
	if got, err := parseVersion("2"); err != nil || got != 2 {
		t.Fatalf("expected version 2, got %d err=%v", got, err)
	}
	if got, err := parseVersion("-1"); err != nil || got != -1 {
		t.Fatalf("expected version -1, got %d err=%v", got, err)
	}
	if _, err := parseVersion("-2"); err == nil {
		t.Fatalf("expected error for version below -1")
	}
}

func TestParseTarget(t *testing.T) {
	if _, err := parseTarget("-1"); err == nil {
		t.Fatalf("expected error for negative target")
	}
	if got, err := parseTarget("1"); err != nil || got != 1 {
		t.Fatalf("expected target 1, got %d err=%v", got, err)
	}
}

func TestEnvBool(t *testing.T) {
	for _, value := range []string{"1", "true", " YES ", "on"} {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", value)
		if !envBool("DB_DISABLE_PREPARED_BINARY_RESULT") {
			t.Fatalf("expected %q to be true", value)
		}
	}
	for _, value := range []string{"", "0", "off", "nope"} {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", value)
		if envBool("DB_DISABLE_PREPARED_BINARY_RESULT") {
			t.Fatalf("expected %q to be false", value)
		}
	}
}
