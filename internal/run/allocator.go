package run

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"

	"turntable/internal/logging"
	"turntable/internal/services"
)

const (
	// Prefix is the run directory name prefix.
	Prefix = "p-"
	// RendersDirName is the per-run subdirectory holding the image sequence.
	RendersDirName = "renders"

	lockFileName = ".turntable.lock"
)

// Run describes one allocated pipeline run and its directory layout.
type Run struct {
	ID         int
	Label      string
	BaseDir    string
	RootDir    string
	RendersDir string
}

// VideoPath returns the run-scoped encoded artifact path (p-NNN.webm).
func (r Run) VideoPath() string {
	return filepath.Join(r.RootDir, r.Label+".webm")
}

// FramePattern returns the printf-style image sequence pattern handed to the
// encoder.
func (r Run) FramePattern() string {
	return filepath.Join(r.RendersDir, "preview.%04d.jpg")
}

// FramePath returns the path of one rendered frame.
func (r Run) FramePath(frame int) string {
	return filepath.Join(r.RendersDir, fmt.Sprintf("preview.%04d.jpg", frame))
}

// Allocator assigns monotonically increasing run identifiers under a base
// output directory and materializes each run's layout.
//
// The scan-then-create window is guarded by an exclusive lock file in the
// base directory so concurrent invocations against a shared base serialize
// instead of colliding on the same identifier.
type Allocator struct {
	baseDir string
	logger  *slog.Logger
}

// NewAllocator constructs an allocator rooted at baseDir.
func NewAllocator(baseDir string, logger *slog.Logger) *Allocator {
	return &Allocator{
		baseDir: baseDir,
		logger:  logging.NewComponentLogger(logger, "allocator"),
	}
}

// Allocate creates the next run directory and its renders subdirectory.
// Directory creation failure is fatal and leaves no state claiming success.
func (a *Allocator) Allocate(ctx context.Context) (Run, error) {
	if strings.TrimSpace(a.baseDir) == "" {
		return Run{}, services.Wrap(services.ErrAllocation, "allocator", "allocate", "base output directory required", nil)
	}
	if err := os.MkdirAll(a.baseDir, 0o755); err != nil {
		return Run{}, services.Wrap(services.ErrAllocation, "allocator", "create base directory", a.baseDir, err)
	}

	lock := flock.New(filepath.Join(a.baseDir, lockFileName))
	if err := lock.Lock(); err != nil {
		return Run{}, services.Wrap(services.ErrAllocation, "allocator", "lock base directory", a.baseDir, err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	if err := ctx.Err(); err != nil {
		return Run{}, services.Wrap(services.ErrCancelled, "allocator", "allocate", "", err)
	}

	next, err := a.nextID()
	if err != nil {
		return Run{}, err
	}

	label := Label(next)
	rootDir := filepath.Join(a.baseDir, label)
	rendersDir := filepath.Join(rootDir, RendersDirName)
	if err := os.MkdirAll(rendersDir, 0o755); err != nil {
		return Run{}, services.Wrap(services.ErrAllocation, "allocator", "create run directory", rootDir, err)
	}

	a.logger.Info("run directory created",
		logging.String(logging.FieldRun, label),
		logging.String("root", rootDir),
	)

	return Run{
		ID:         next,
		Label:      label,
		BaseDir:    a.baseDir,
		RootDir:    rootDir,
		RendersDir: rendersDir,
	}, nil
}

func (a *Allocator) nextID() (int, error) {
	entries, err := os.ReadDir(a.baseDir)
	if err != nil {
		return 0, services.Wrap(services.ErrAllocation, "allocator", "scan base directory", a.baseDir, err)
	}

	highest := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id, ok := parseLabel(entry.Name())
		if !ok {
			continue
		}
		if id > highest {
			highest = id
		}
	}
	return highest + 1, nil
}

// Label renders a run identifier as its directory name, zero-padded to three
// digits; identifiers beyond 999 keep their full width.
func Label(id int) string {
	return fmt.Sprintf("%s%03d", Prefix, id)
}

func parseLabel(name string) (int, bool) {
	if !strings.HasPrefix(name, Prefix) {
		return 0, false
	}
	digits := name[len(Prefix):]
	if digits == "" {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return id, true
}
