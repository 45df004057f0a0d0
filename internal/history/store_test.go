package history_test

import (
	"context"
	"testing"

	"turntable/internal/config"
	"turntable/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	store, err := history.Open(&cfg)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestBeginAssignsIdentity(t *testing.T) {
	store := openStore(t)
	rec := &history.Record{
		Label:   "p-001",
		BaseDir: "/out",
		Mode:    "source",
		Quality: "preview",
		Width:   252,
		Height:  384,
	}
	if err := store.Begin(context.Background(), rec); err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	if rec.ID == 0 || rec.Token == "" {
		t.Fatalf("expected identity to be assigned: %+v", rec)
	}
	if rec.Status != history.StatusRunning {
		t.Fatalf("expected running status, got %q", rec.Status)
	}
}

func TestFinishAndRecentRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first := &history.Record{Label: "p-001", BaseDir: "/out", Mode: "source", Quality: "preview", Width: 252, Height: 384}
	second := &history.Record{Label: "p-002", BaseDir: "/out", Mode: "model", Quality: "final", Width: 504, Height: 768}
	for _, rec := range []*history.Record{first, second} {
		if err := store.Begin(ctx, rec); err != nil {
			t.Fatalf("Begin returned error: %v", err)
		}
	}

	if err := store.Finish(ctx, first.ID, history.StatusCompleted, ""); err != nil {
		t.Fatalf("Finish returned error: %v", err)
	}
	if err := store.Finish(ctx, second.ID, history.StatusFailed, "render: exit 1"); err != nil {
		t.Fatalf("Finish returned error: %v", err)
	}

	records, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	// Newest first.
	if records[0].Label != "p-002" || records[1].Label != "p-001" {
		t.Fatalf("unexpected order: %q, %q", records[0].Label, records[1].Label)
	}
	if records[0].Status != history.StatusFailed || records[0].ErrorMessage != "render: exit 1" {
		t.Fatalf("unexpected failed record: %+v", records[0])
	}
	if records[1].Status != history.StatusCompleted {
		t.Fatalf("unexpected completed record: %+v", records[1])
	}
	if records[1].FinishedAt.IsZero() {
		t.Fatal("expected finished timestamp to round-trip")
	}
}

func TestFinishRejectsUnknownRunAndStatus(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	if err := store.Finish(ctx, 42, history.StatusCompleted, ""); err == nil {
		t.Fatal("expected error for unknown run id")
	}
	rec := &history.Record{Label: "p-001", BaseDir: "/out", Mode: "source", Quality: "preview", Width: 1, Height: 1}
	if err := store.Begin(ctx, rec); err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	if err := store.Finish(ctx, rec.ID, "paused", ""); err == nil {
		t.Fatal("expected error for non-terminal status")
	}
}
