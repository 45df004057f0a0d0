package services_test

import (
	"errors"
	"strings"
	"testing"

	"turntable/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "render", "spawn", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"render", "spawn", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "mesh", "", "tool exploded", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
}

func TestExitCode(t *testing.T) {
	if code := services.ExitCode(nil); code != 0 {
		t.Fatalf("expected 0 for nil error, got %d", code)
	}
	for _, err := range []error{
		services.Wrap(services.ErrValidation, "pipeline", "validate", "both modes", nil),
		services.Wrap(services.ErrPrecondition, "render", "input", "missing", nil),
		services.Wrap(services.ErrExternalTool, "encode", "run", "exit 2", nil),
		services.Wrap(services.ErrAllocation, "run", "mkdir", "denied", nil),
	} {
		if code := services.ExitCode(err); code != 1 {
			t.Fatalf("expected exit 1 for %v, got %d", err, code)
		}
	}
}
