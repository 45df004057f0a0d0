package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"turntable/internal/config"
	"turntable/internal/history"
	"turntable/internal/logging"
	"turntable/internal/progress"
	"turntable/internal/run"
	"turntable/internal/services/blender"
	"turntable/internal/services/ffmpeg"
	"turntable/internal/services/mesher"
	"turntable/internal/stage"
)

// Report summarizes a finished pipeline invocation.
type Report struct {
	Run         run.Run
	VideoPath   string
	Elapsed     time.Duration
	FailedStage string
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithRunner injects a stage runner (primarily for tests).
func WithRunner(runner stage.Runner) Option {
	return func(c *Coordinator) {
		if runner != nil {
			c.runner = runner
		}
	}
}

// WithReporterFactory overrides the progress reporter factory.
func WithReporterFactory(factory progress.Factory) Option {
	return func(c *Coordinator) {
		if factory != nil {
			c.reporters = factory
		}
	}
}

// WithHistory attaches a run ledger. The ledger is best-effort: failures to
// record never fail the pipeline itself.
func WithHistory(store *history.Store) Option {
	return func(c *Coordinator) {
		c.store = store
	}
}

// Coordinator owns the ordered stage graph: it allocates the run directory,
// resolves each stage's input from prior outputs or user-supplied paths, and
// executes the stages strictly in order, aborting on the first failure.
type Coordinator struct {
	cfg       *config.Config
	runner    stage.Runner
	reporters progress.Factory
	store     *history.Store
	logger    *slog.Logger
}

// New constructs a coordinator with the default process runner.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		cfg:       cfg,
		runner:    stage.NewRunner(logger),
		reporters: progress.NopFactory(),
		logger:    logging.NewComponentLogger(logger, "pipeline"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute validates the request, allocates a run, and drives the stages.
// The returned report carries the run layout whenever allocation succeeded,
// including on stage failure, so partial artifacts can be pointed at.
func (c *Coordinator) Execute(ctx context.Context, req Request) (Report, error) {
	mode, quality, err := Validate(req)
	if err != nil {
		return Report{}, err
	}

	allocator := run.NewAllocator(req.OutputPath, c.logger)
	r, err := allocator.Allocate(ctx)
	if err != nil {
		return Report{}, err
	}

	ctx = logging.WithRun(ctx, r.Label)
	logger := logging.WithContext(ctx, c.logger)

	record := c.beginRecord(ctx, r, mode, quality, req)

	specs := c.buildSpecs(req, r, mode, quality)
	started := time.Now()

	for _, spec := range specs {
		reporter := c.reporters(spec.Name, spec.Total)
		result, runErr := c.runner.Run(ctx, spec, reporter.Update)
		reporter.Finish(runErr == nil)
		if runErr != nil {
			report := Report{Run: r, Elapsed: time.Since(started), FailedStage: spec.Name}
			c.finishRecord(ctx, record, history.StatusFailed, runErr)
			logger.Error("pipeline failed",
				logging.String(logging.FieldStage, spec.Name),
				logging.Int("exit_code", result.ExitCode),
				logging.Error(runErr),
			)
			return report, runErr
		}
	}

	elapsed := time.Since(started)
	c.finishRecord(ctx, record, history.StatusCompleted, nil)
	logger.Info("pipeline completed",
		logging.String("video", r.VideoPath()),
		logging.String("elapsed", FormatDuration(elapsed)),
	)

	return Report{Run: r, VideoPath: r.VideoPath(), Elapsed: elapsed}, nil
}

// buildSpecs resolves the ordered stage list. Each stage's declared output
// becomes the next stage's input; only the coordinator sees the full path
// graph.
func (c *Coordinator) buildSpecs(req Request, r run.Run, mode Mode, quality run.Quality) []stage.Spec {
	modelPath := req.ModelPath
	var specs []stage.Spec

	if mode == ModeSource {
		specs = append(specs, mesher.Spec(c.cfg.Tools.MesherPath, req.SourcePath, r, quality))
		modelPath = mesher.ModelArtifactPath(r, quality)
	}

	blenderBinary := req.BlenderPath
	if blenderBinary == "" {
		blenderBinary = c.cfg.Tools.BlenderPath
	}
	specs = append(specs, blender.Spec(r, blender.Options{
		Binary:     blenderBinary,
		Script:     c.cfg.Tools.TurntableScript,
		BaseBlend:  c.cfg.Tools.BaseBlend,
		ModelPath:  modelPath,
		Width:      req.Width,
		Height:     req.Height,
		FrameCount: c.cfg.Render.FrameCount,
	}))

	specs = append(specs, ffmpeg.Spec(r, ffmpeg.Options{
		Binary:     c.cfg.Tools.FFmpegPath,
		Framerate:  c.cfg.Render.Framerate,
		FrameCount: c.cfg.Render.FrameCount,
	}))

	return specs
}

func (c *Coordinator) beginRecord(ctx context.Context, r run.Run, mode Mode, quality run.Quality, req Request) *history.Record {
	if c.store == nil {
		return nil
	}
	record := &history.Record{
		Label:   r.Label,
		BaseDir: r.BaseDir,
		Mode:    string(mode),
		Quality: string(quality),
		Width:   req.Width,
		Height:  req.Height,
	}
	if err := c.store.Begin(ctx, record); err != nil {
		c.logger.Warn("record run start", logging.Error(err))
		return nil
	}
	return record
}

func (c *Coordinator) finishRecord(ctx context.Context, record *history.Record, status string, runErr error) {
	if c.store == nil || record == nil {
		return
	}
	message := ""
	if runErr != nil {
		message = runErr.Error()
	}
	if err := c.store.Finish(ctx, record.ID, status, message); err != nil {
		c.logger.Warn("record run finish", logging.Error(err))
	}
}

// FormatDuration renders an elapsed time in h/m/s form: "1h 2m 3s",
// "2m 3s", or "45s".
func FormatDuration(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
