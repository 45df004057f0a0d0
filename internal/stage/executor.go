package stage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

// Stream identifies which child output stream produced a line.
type Stream int

const (
	StreamStdout Stream = iota
	StreamStderr
)

// Executor abstracts command execution for testability. Run returns the
// child's exit status; the error is reserved for spawn and plumbing failures.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onLine func(Stream, string)) (int, error)
}

// commandExecutor runs real processes. Both output streams are drained on
// independent goroutines for the process lifetime; draining only one would
// deadlock once the child fills the other pipe's buffer. The child is placed
// in its own process group so cancellation can take down any helpers it
// spawned.
type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onLine func(Stream, string)) (int, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return -1, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return -1, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader, stream Stream) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if onLine != nil {
				onLine(stream, scanner.Text())
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout, StreamStdout)
	go scan(stderr, StreamStderr)
	wg.Wait()

	waitErr := cmd.Wait()
	if scanErr != nil {
		return -1, fmt.Errorf("scan output: %w", scanErr)
	}
	if waitErr != nil {
		if ctx.Err() != nil {
			return -1, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("wait command: %w", waitErr)
	}
	return 0, nil
}
