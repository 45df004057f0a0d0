package run_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"turntable/internal/run"
)

func TestAllocateFirstRun(t *testing.T) {
	base := filepath.Join(t.TempDir(), "previews")
	allocator := run.NewAllocator(base, nil)

	r, err := allocator.Allocate(context.Background())
	if err != nil {
		t.Fatalf("Allocate returned error: %v", err)
	}
	if r.ID != 1 || r.Label != "p-001" {
		t.Fatalf("unexpected first run: id=%d label=%q", r.ID, r.Label)
	}
	if r.RootDir != filepath.Join(base, "p-001") {
		t.Fatalf("unexpected root dir: %q", r.RootDir)
	}
	info, err := os.Stat(r.RendersDir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected renders dir to exist: %v", err)
	}
}

func TestAllocateReturnsMaxPlusOne(t *testing.T) {
	base := t.TempDir()
	for _, name := range []string{"p-001", "p-004", "p-002"} {
		if err := os.MkdirAll(filepath.Join(base, name), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", name, err)
		}
	}

	r, err := run.NewAllocator(base, nil).Allocate(context.Background())
	if err != nil {
		t.Fatalf("Allocate returned error: %v", err)
	}
	if r.Label != "p-005" {
		t.Fatalf("expected p-005, got %q", r.Label)
	}
}

func TestAllocateIgnoresNonMatchingEntries(t *testing.T) {
	base := t.TempDir()
	for _, name := range []string{"p-003", "p-xyz", "preview-9", "notes"} {
		if err := os.MkdirAll(filepath.Join(base, name), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", name, err)
		}
	}
	// Plain files never count, even with a matching name.
	if err := os.WriteFile(filepath.Join(base, "p-900"), nil, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	r, err := run.NewAllocator(base, nil).Allocate(context.Background())
	if err != nil {
		t.Fatalf("Allocate returned error: %v", err)
	}
	if r.Label != "p-004" {
		t.Fatalf("expected p-004, got %q", r.Label)
	}
}

func TestAllocateBeyondThreeDigits(t *testing.T) {
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "p-999"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	r, err := run.NewAllocator(base, nil).Allocate(context.Background())
	if err != nil {
		t.Fatalf("Allocate returned error: %v", err)
	}
	if r.Label != "p-1000" {
		t.Fatalf("expected p-1000, got %q", r.Label)
	}
}

func TestAllocateSequentialCalls(t *testing.T) {
	base := t.TempDir()
	allocator := run.NewAllocator(base, nil)
	for i := 1; i <= 3; i++ {
		r, err := allocator.Allocate(context.Background())
		if err != nil {
			t.Fatalf("Allocate #%d returned error: %v", i, err)
		}
		if r.ID != i {
			t.Fatalf("expected id %d, got %d", i, r.ID)
		}
	}
}

func TestRunPathHelpers(t *testing.T) {
	r := run.Run{
		Label:      "p-042",
		RootDir:    "/out/p-042",
		RendersDir: "/out/p-042/renders",
	}
	if got := r.VideoPath(); got != "/out/p-042/p-042.webm" {
		t.Fatalf("unexpected video path: %q", got)
	}
	if got := r.FramePattern(); got != "/out/p-042/renders/preview.%04d.jpg" {
		t.Fatalf("unexpected frame pattern: %q", got)
	}
	if got := r.FramePath(180); got != "/out/p-042/renders/preview.0180.jpg" {
		t.Fatalf("unexpected frame path: %q", got)
	}
}
