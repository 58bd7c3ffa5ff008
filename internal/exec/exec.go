// Package exec implements the Execution Wrapper: launch one job as a
// subprocess with timeout, stream capture, return-code classification,
// status-file updates, and artifact copy (spec.md ^4.4, the hardest
// component). Grounded on perfgo/cli/execute_local.go's exec.Command +
// io.MultiWriter capture and *exec.ExitError classification, adapted so
// that output is captured only (never teed to the terminal, since many
// litani jobs run concurrently under the external executor) and so that
// a wall-clock timeout can kill the whole process group via
// golang.org/x/sys/unix.
package exec

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/litani-build/litani/internal/artifact"
	"github.com/litani-build/litani/internal/atomicfile"
	"github.com/litani-build/litani/internal/model"
	"github.com/litani-build/litani/internal/store"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

// spawnFailureExitCode is the synthetic command_return_code recorded
// when the subprocess never starts at all (spec.md ^4.4 step 8 / ^7).
const spawnFailureExitCode = 127

// Options bundles everything Run needs for one job execution.
type Options struct {
	Descriptor  *model.JobDescriptor
	Paths       store.Paths
	WrapperArgs []string
	Logger      zerolog.Logger
}

// Run executes one job to completion and returns the wrapper return
// code. It never panics or returns an error to its caller: every failure
// mode is captured in the finalized status file (spec.md ^4.4, ^7).
func Run(ctx context.Context, opts Options) int {
	d := opts.Descriptor
	status := &model.JobStatus{
		JobID:       d.JobID,
		Complete:    false,
		StartTime:   model.Now(),
		WrapperArgs: opts.WrapperArgs,
	}
	if err := atomicfile.WriteJSON(d.StatusFile, status); err != nil {
		opts.Logger.Error().Err(err).Str("job_id", d.JobID).Msg("failed to write started status")
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if d.TimeoutSeconds > 0 {
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(d.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmdReturnCode, timeoutReached, spawnErr := runCommand(runCtx, d, &stdoutBuf, &stderrBuf)

	status.TimeoutReached = timeoutReached
	if spawnErr != nil {
		opts.Logger.Error().Err(spawnErr).Str("job_id", d.JobID).Msg("failed to spawn command")
		status.CommandReturnCode = spawnFailureExitCode
		status.WrapperReturnCode = 1
	} else {
		status.CommandReturnCode = cmdReturnCode
		status.WrapperReturnCode = classify(d, cmdReturnCode, timeoutReached)
	}

	status.Stdout = splitLines(stdoutBuf.String())
	if !d.InterleaveStdoutStderr {
		status.Stderr = splitLines(stderrBuf.String())
	}

	if d.StdoutFile != "" {
		if err := atomicfile.Write(d.StdoutFile, stdoutBuf.Bytes()); err != nil {
			opts.Logger.Warn().Err(err).Str("job_id", d.JobID).Msg("failed to write stdout file")
		}
	}
	if d.StderrFile != "" && !d.InterleaveStdoutStderr {
		if err := atomicfile.Write(d.StderrFile, stderrBuf.Bytes()); err != nil {
			opts.Logger.Warn().Err(err).Str("job_id", d.JobID).Msg("failed to write stderr file")
		}
	}

	// Artifact copy runs before the final status write so that a fatal
	// I/O error (spec.md ^7: distinct from a merely missing output,
	// which is only a warning) is reflected in the status this wrapper
	// persists, not discovered only after the fact.
	if err := artifact.Copy(opts.Logger, opts.Paths, d); err != nil {
		opts.Logger.Error().Err(err).Str("job_id", d.JobID).Msg("artifact copy failed")
		status.WrapperReturnCode = 1
	}

	status.EndTime = model.Now()
	status.DurationSeconds = status.EndTime.Time.Sub(status.StartTime.Time).Seconds()
	status.Complete = true
	if err := atomicfile.WriteJSON(d.StatusFile, status); err != nil {
		opts.Logger.Error().Err(err).Str("job_id", d.JobID).Msg("failed to write finished status")
	}

	return status.WrapperReturnCode
}

// classify implements spec.md ^4.4 step 3/4: the timeout path decides
// the wrapper return code on its own; only the non-timeout path
// consults ignore_returns.
func classify(d *model.JobDescriptor, commandReturnCode int, timeoutReached bool) int {
	if timeoutReached {
		if d.TimeoutOk || d.TimeoutIgnore {
			return 0
		}
		return 1
	}
	if d.IgnoresReturnCode(commandReturnCode) {
		return 0
	}
	return 1
}

// runCommand launches the descriptor's command through a shell and waits
// for it, killing the whole process group if runCtx expires first.
func runCommand(runCtx context.Context, d *model.JobDescriptor, stdout, stderr *bytes.Buffer) (exitCode int, timeoutReached bool, spawnErr error) {
	cmd := exec.Command("sh", "-c", d.Command)
	cmd.Dir = d.WorkingDir
	cmd.Stdout = stdout
	if d.InterleaveStdoutStderr {
		cmd.Stderr = stdout
	} else {
		cmd.Stderr = stderr
	}
	// New process group so a timeout kill reaches every descendant, not
	// just the immediate "sh" child.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return 0, false, fmt.Errorf("start command: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return exitCodeOf(cmd, err), false, nil
	case <-runCtx.Done():
		killProcessGroup(cmd.Process.Pid)
		<-done // reap
		return 0, true, nil
	}
}

func killProcessGroup(pid int) {
	_ = unix.Kill(-pid, syscall.SIGKILL)
}

func exitCodeOf(cmd *exec.Cmd, waitErr error) int {
	if waitErr == nil {
		return 0
	}
	if exitErr, ok := waitErr.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return spawnFailureExitCode
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
