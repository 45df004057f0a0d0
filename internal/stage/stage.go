package stage

import "time"

// Extractor maps one line of child output to an optional progress counter.
// Implementations must be pure so they can be unit tested against literal
// captured tool output.
type Extractor func(line string) (int, bool)

// Spec describes one external-tool invocation. It is immutable once built;
// the coordinator constructs one per stage per run with every argument fully
// resolved.
type Spec struct {
	Name       string
	Position   int
	Binary     string
	Args       []string
	InputPath  string
	OutputPath string
	Total      int
	Extract    Extractor
}

// ProgressEvent is a monotonic counter update extracted from a stage's
// streaming output. Only the latest event per stage matters to consumers.
type ProgressEvent struct {
	Stage    string
	Position int
	Counter  int
	Total    int
	At       time.Time
}

// Result captures the outcome of one stage execution.
type Result struct {
	Stage       string
	Position    int
	ExitCode    int
	Duration    time.Duration
	OutputPath  string
	Diagnostics []string
}

// ProgressSink receives progress events while a stage runs.
type ProgressSink func(ProgressEvent)
