package stage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"turntable/internal/logging"
	"turntable/internal/services"
)

// maxDiagnostics bounds the retained diagnostic lines per stage.
const maxDiagnostics = 40

// Runner supervises a single external-process stage to completion.
type Runner interface {
	Run(ctx context.Context, spec Spec, sink ProgressSink) (Result, error)
}

// Option configures a ProcessRunner.
type Option func(*ProcessRunner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(r *ProcessRunner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// ProcessRunner runs stages against real child processes.
type ProcessRunner struct {
	exec   Executor
	logger *slog.Logger
}

// NewRunner constructs a runner with the default process executor.
func NewRunner(logger *slog.Logger, opts ...Option) *ProcessRunner {
	runner := &ProcessRunner{
		exec:   commandExecutor{},
		logger: logging.NewComponentLogger(logger, "stage"),
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

// Run spawns the stage's process and supervises it: drains both output
// streams, emits strictly increasing progress counters clamped to the stage
// total, forwards error/warning lines immediately, and verifies the declared
// output artifact on a zero exit. A single failed attempt is final.
func (r *ProcessRunner) Run(ctx context.Context, spec Spec, sink ProgressSink) (Result, error) {
	if strings.TrimSpace(spec.Binary) == "" {
		return Result{}, services.Wrap(services.ErrValidation, spec.Name, "run", "stage binary required", nil)
	}

	logger := logging.WithContext(logging.WithStage(ctx, spec.Name), r.logger)

	if spec.InputPath != "" {
		if _, err := os.Stat(spec.InputPath); err != nil {
			return Result{}, services.Wrap(services.ErrPrecondition, spec.Name, "check input",
				fmt.Sprintf("required input %s is missing", spec.InputPath), err)
		}
	}

	logger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("binary", spec.Binary),
		logging.Int("total_units", spec.Total),
	)

	state := &lineState{
		spec:   spec,
		sink:   sink,
		logger: logger,
		last:   -1,
	}

	started := time.Now()
	exitCode, execErr := r.exec.Run(ctx, spec.Binary, spec.Args, state.observe)
	duration := time.Since(started)

	result := Result{
		Stage:       spec.Name,
		Position:    spec.Position,
		ExitCode:    exitCode,
		Duration:    duration,
		OutputPath:  spec.OutputPath,
		Diagnostics: state.diagnostics(),
	}

	if execErr != nil {
		if errors.Is(execErr, context.Canceled) || errors.Is(execErr, context.DeadlineExceeded) {
			err := services.Wrap(services.ErrCancelled, spec.Name, "run", "stage cancelled", execErr)
			r.logFailure(logger, result, err)
			return result, err
		}
		err := services.Wrap(services.ErrExternalTool, spec.Name, "run", "", execErr)
		r.logFailure(logger, result, err)
		return result, err
	}

	if exitCode != 0 {
		err := services.Wrap(services.ErrExternalTool, spec.Name, "run",
			fmt.Sprintf("%s exited with status %d", spec.Binary, exitCode), nil)
		r.logFailure(logger, result, err)
		return result, err
	}

	if spec.OutputPath != "" {
		if _, err := os.Stat(spec.OutputPath); err != nil {
			// Zero exit with a missing artifact is still a failure.
			wrapped := services.Wrap(services.ErrExternalTool, spec.Name, "verify output",
				fmt.Sprintf("declared output %s missing despite clean exit", spec.OutputPath), err)
			r.logFailure(logger, result, wrapped)
			return result, wrapped
		}
	}

	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("duration", duration),
		logging.String("output", spec.OutputPath),
	)
	return result, nil
}

func (r *ProcessRunner) logFailure(logger *slog.Logger, result Result, err error) {
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.Int("exit_code", result.ExitCode),
		logging.Duration("duration", result.Duration),
		logging.Error(err),
	}
	logger.Error("stage failed", logging.Args(attrs...)...)
	for _, line := range result.Diagnostics {
		logger.Error(line)
	}
}

// lineState holds the per-stage supervision state. observe is called from
// both stream-draining goroutines, so it is guarded by a mutex.
type lineState struct {
	mu     sync.Mutex
	spec   Spec
	sink   ProgressSink
	logger *slog.Logger

	last    int
	markers []string
	tail    []string
}

func (s *lineState) observe(stream Stream, line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if isDiagnostic(line) {
		// Forward immediately so failures are visible mid-stage.
		s.logger.Warn(strings.TrimSpace(line))
		s.markers = appendBounded(s.markers, strings.TrimSpace(line))
	} else if stream == StreamStderr {
		s.tail = appendBounded(s.tail, strings.TrimSpace(line))
	}

	if s.spec.Extract == nil {
		return
	}
	counter, ok := s.spec.Extract(line)
	if !ok {
		return
	}
	if s.spec.Total > 0 && counter > s.spec.Total {
		counter = s.spec.Total
	}
	if counter <= s.last {
		return
	}
	s.last = counter
	if s.sink != nil {
		s.sink(ProgressEvent{
			Stage:    s.spec.Name,
			Position: s.spec.Position,
			Counter:  counter,
			Total:    s.spec.Total,
			At:       time.Now(),
		})
	}
}

// diagnostics returns the lines worth surfacing after exit: marker lines when
// any were seen, otherwise the stderr tail.
func (s *lineState) diagnostics() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.markers) > 0 {
		return append([]string(nil), s.markers...)
	}
	return append([]string(nil), s.tail...)
}

func isDiagnostic(line string) bool {
	return strings.Contains(line, "Error") || strings.Contains(line, "Warning")
}

func appendBounded(lines []string, line string) []string {
	if line == "" {
		return lines
	}
	lines = append(lines, line)
	if len(lines) > maxDiagnostics {
		lines = lines[len(lines)-maxDiagnostics:]
	}
	return lines
}
