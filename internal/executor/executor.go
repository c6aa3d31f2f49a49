// Package executor runs user-supplied shell commands with bounded capture.
package executor

import (
	"context"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Cyclone1070/termai/internal/config"
)

// TimeoutExitCode is the sentinel exit code reported for timed-out commands.
const TimeoutExitCode = -1

// Result represents the outcome of a command execution.
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	TimedOut  bool
	Truncated bool
}

// Runner executes command lines through the shell interpreter.
type Runner struct {
	config *config.Config
	logger *zap.Logger
}

// NewRunner creates a Runner with injected config and logger.
func NewRunner(cfg *config.Config, logger *zap.Logger) *Runner {
	if cfg == nil {
		panic("cfg is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{config: cfg, logger: logger}
}

// Run executes command via `sh -c` in dir and captures stdout and stderr
// separately, each capped at exec.max_output_size bytes.
//
// If the command does not finish within exec.timeout_seconds the process
// gets an interrupt, then a kill after exec.graceful_shutdown_ms, and the
// Result carries TimedOut=true with the sentinel exit code. A timeout is a
// terminal outcome, not an error. An error is returned only when the
// command cannot be started.
func (r *Runner) Run(ctx context.Context, command string, dir string) (*Result, error) {
	timeout := time.Duration(r.config.Exec.TimeoutSeconds) * time.Second

	cmd := exec.Command("sh", "-c", command)
	cmd.Dir = dir
	cmd.Stdin = nil

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &CommandError{Command: command, Stage: "start", Cause: err}
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, &CommandError{Command: command, Stage: "start", Cause: err}
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &CommandError{Command: command, Stage: "start", Cause: err}
	}

	// Collect output concurrently so the timeout select below never blocks
	// on a full pipe.
	var stdoutStr, stderrStr string
	var truncated bool
	collectDone := make(chan struct{})
	go func() {
		stdoutStr, stderrStr, truncated = r.collectOutput(stdoutPipe, stderrPipe)
		close(collectDone)
	}()

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timedOut := false
	var waitErr error
	select {
	case waitErr = <-done:
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		timedOut = true
	case <-time.After(timeout):
		timedOut = true
		// Interrupt first so the command can flush and clean up.
		_ = cmd.Process.Signal(os.Interrupt)
		select {
		case <-done:
		case <-time.After(time.Duration(r.config.Exec.GracefulShutdownMs) * time.Millisecond):
			_ = cmd.Process.Kill()
			<-done
		}
	}

	<-collectDone

	exitCode := 0
	switch {
	case timedOut:
		exitCode = TimeoutExitCode
	case waitErr != nil:
		exitCode = exitCodeOf(waitErr)
	}

	r.logger.Debug("command finished",
		zap.String("command", command),
		zap.Int("exit_code", exitCode),
		zap.Bool("timed_out", timedOut),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &Result{
		Stdout:    stdoutStr,
		Stderr:    stderrStr,
		ExitCode:  exitCode,
		TimedOut:  timedOut,
		Truncated: truncated,
	}, nil
}

func (r *Runner) collectOutput(stdout, stderr io.Reader) (string, string, bool) {
	maxBytes := int(r.config.Exec.MaxOutputSize)

	stdoutCollector := newCollector(maxBytes)
	stderrCollector := newCollector(maxBytes)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		_, _ = io.Copy(stdoutCollector, stdout)
	}()

	go func() {
		defer wg.Done()
		_, _ = io.Copy(stderrCollector, stderr)
	}()

	wg.Wait()

	truncated := stdoutCollector.Truncated() || stderrCollector.Truncated()
	return stdoutCollector.String(), stderrCollector.String(), truncated
}

func exitCodeOf(err error) int {
	type exitCoder interface {
		ExitCode() int
	}
	if ec, ok := err.(exitCoder); ok {
		return ec.ExitCode()
	}
	return -1
}
