package stage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"turntable/internal/logging"
	"turntable/internal/services"
	"turntable/internal/stage"
	"turntable/internal/testsupport"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	testsupport.WriteFile(t, path, "#!/bin/sh\n"+body)
	if err := os.Chmod(path, 0o755); err != nil {
		t.Fatalf("chmod script: %v", err)
	}
	return path
}

func TestProcessRunnerSupervisesRealProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not runnable on windows")
	}
	dir := t.TempDir()
	input := filepath.Join(dir, "input.usdz")
	testsupport.Touch(t, input)
	output := filepath.Join(dir, "out.usdz")

	script := writeScript(t, dir, "tool.sh", `
echo "Progress = 40%"
echo "Warning: coarse normals" >&2
echo "Progress = 100%"
touch `+output+`
`)

	var mu sync.Mutex
	var counters []int
	sink := func(event stage.ProgressEvent) {
		mu.Lock()
		counters = append(counters, event.Counter)
		mu.Unlock()
	}

	runner := stage.NewRunner(logging.NewNop())
	result, err := runner.Run(context.Background(), stage.Spec{
		Name:       "mesh",
		Position:   1,
		Binary:     script,
		InputPath:  input,
		OutputPath: output,
		Total:      100,
		Extract:    extractCounter,
	}, sink)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.ExitCode != 0 {
		t.Fatalf("unexpected exit code %d", result.ExitCode)
	}
	if len(counters) != 2 || counters[0] != 40 || counters[1] != 100 {
		t.Fatalf("unexpected counters %v", counters)
	}
}

func TestProcessRunnerReportsRealNonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not runnable on windows")
	}
	dir := t.TempDir()
	input := filepath.Join(dir, "input.usdz")
	testsupport.Touch(t, input)

	script := writeScript(t, dir, "tool.sh", `
echo "Error: reconstruction failed" >&2
exit 9
`)

	runner := stage.NewRunner(logging.NewNop())
	result, err := runner.Run(context.Background(), stage.Spec{
		Name:      "mesh",
		Position:  1,
		Binary:    script,
		InputPath: input,
		Total:     100,
		Extract:   extractCounter,
	}, nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if result.ExitCode != 9 {
		t.Fatalf("expected exit code 9, got %d", result.ExitCode)
	}
	if len(result.Diagnostics) != 1 || result.Diagnostics[0] != "Error: reconstruction failed" {
		t.Fatalf("unexpected diagnostics %v", result.Diagnostics)
	}
}

func TestProcessRunnerKillsCancelledProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not runnable on windows")
	}
	dir := t.TempDir()
	input := filepath.Join(dir, "input.usdz")
	testsupport.Touch(t, input)

	script := writeScript(t, dir, "tool.sh", "sleep 30\n")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	runner := stage.NewRunner(logging.NewNop())
	started := time.Now()
	_, err := runner.Run(ctx, stage.Spec{
		Name:      "render",
		Position:  2,
		Binary:    script,
		InputPath: input,
		Total:     180,
	}, nil)
	if !errors.Is(err, services.ErrCancelled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if elapsed := time.Since(started); elapsed > 10*time.Second {
		t.Fatalf("cancellation took too long: %v", elapsed)
	}
}
