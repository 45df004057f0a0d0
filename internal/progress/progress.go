package progress

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/mattn/go-isatty"

	"turntable/internal/logging"
	"turntable/internal/stage"
)

// Reporter renders a bounded progress indicator for one stage. Update is
// idempotent against duplicate or stale counters; Finish finalizes exactly
// once when the stage result is produced.
type Reporter interface {
	Update(event stage.ProgressEvent)
	Finish(success bool)
}

// Factory creates one reporter per stage. Reporters for different stages
// never overlap: the pipeline finishes stage N's reporter before creating
// stage N+1's.
type Factory func(stageName string, total int) Reporter

// NewFactory selects the rendering strategy for the given output: an
// interactive tracker on a terminal, sampled log lines otherwise.
func NewFactory(out *os.File, logger *slog.Logger) Factory {
	interactive := out != nil &&
		(isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()))
	return func(stageName string, total int) Reporter {
		if interactive {
			return newTrackerReporter(out, stageName, total)
		}
		return newPlainReporter(logger, stageName, total)
	}
}

// NopFactory returns reporters that discard everything.
func NopFactory() Factory {
	return func(string, int) Reporter { return nopReporter{} }
}

type nopReporter struct{}

func (nopReporter) Update(stage.ProgressEvent) {}

func (nopReporter) Finish(bool) {}

// trackerReporter drives a go-pretty progress bar.
type trackerReporter struct {
	writer  progress.Writer
	tracker *progress.Tracker
	last    int64
	once    sync.Once
}

func newTrackerReporter(out io.Writer, stageName string, total int) *trackerReporter {
	writer := progress.NewWriter()
	writer.SetOutputWriter(out)
	writer.SetTrackerLength(30)
	writer.SetTrackerPosition(progress.PositionRight)
	writer.SetUpdateFrequency(100 * time.Millisecond)
	writer.Style().Visibility.ETA = false
	writer.Style().Visibility.Time = true
	writer.Style().Visibility.Value = true

	tracker := &progress.Tracker{
		Message: stageName,
		Total:   int64(total),
		Units:   progress.UnitsDefault,
	}
	writer.AppendTracker(tracker)
	go writer.Render()

	return &trackerReporter{writer: writer, tracker: tracker, last: -1}
}

func (r *trackerReporter) Update(event stage.ProgressEvent) {
	value := int64(event.Counter)
	if value <= r.last {
		return
	}
	r.last = value
	r.tracker.SetValue(value)
}

func (r *trackerReporter) Finish(success bool) {
	r.once.Do(func() {
		if success {
			r.tracker.SetValue(r.tracker.Total)
			r.tracker.MarkAsDone()
		} else {
			r.tracker.MarkAsErrored()
		}
		r.writer.Stop()
		for r.writer.IsRenderInProgress() {
			time.Sleep(10 * time.Millisecond)
		}
	})
}

// plainReporter logs sampled progress lines for non-interactive output. It
// emits at most one line per ten-percent step so pipeline logs stay small.
type plainReporter struct {
	logger    *slog.Logger
	stageName string
	total     int
	last      int
	lastStep  int
	once      sync.Once
}

func newPlainReporter(logger *slog.Logger, stageName string, total int) *plainReporter {
	return &plainReporter{
		logger:    logging.NewComponentLogger(logger, "progress"),
		stageName: stageName,
		total:     total,
		last:      -1,
		lastStep:  -1,
	}
}

func (r *plainReporter) Update(event stage.ProgressEvent) {
	if event.Counter <= r.last {
		return
	}
	r.last = event.Counter
	if r.total <= 0 {
		return
	}
	step := event.Counter * 10 / r.total
	if step <= r.lastStep {
		return
	}
	r.lastStep = step
	r.logger.Info("progress",
		logging.String(logging.FieldStage, r.stageName),
		logging.Int("current", event.Counter),
		logging.Int("total", r.total),
	)
}

func (r *plainReporter) Finish(success bool) {
	r.once.Do(func() {
		final := r.last
		if success {
			final = r.total
		}
		if final < 0 {
			final = 0
		}
		r.logger.Info("stage progress finalized",
			logging.String(logging.FieldStage, r.stageName),
			logging.Int("current", final),
			logging.Int("total", r.total),
			logging.Bool("success", success),
		)
	})
}
