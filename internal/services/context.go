package services

import "context"

type contextKey string

const (
	runLabelKey contextKey = "run_label"
	stageKey    contextKey = "stage"
)

// WithRunLabel annotates context with the run directory label (p-NNN).
func WithRunLabel(ctx context.Context, label string) context.Context {
	if label == "" {
		return ctx
	}
	return context.WithValue(ctx, runLabelKey, label)
}

// RunLabelFromContext returns the run label if present.
func RunLabelFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runLabelKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
