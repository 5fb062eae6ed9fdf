// Package procio launches benchmark component processes and exposes
// their stdio as plain io.Reader/io.WriteCloser values that the
// fanout and collector packages wire together.
package procio

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/impalab/impalab/internal/log"
)

// StdioPolicy selects how one stdio stream of a launched process is
// connected.
type StdioPolicy int

const (
	// Capture creates a pipe exposed on the Handle for the caller to
	// drain. This is the default: it is what generator/algorithm
	// children use so their output can be fanned out or parsed.
	Capture StdioPolicy = iota
	// Inherit connects the stream directly to this process's own
	// stdin/stdout/stderr. Used for build steps, whose output the
	// operator should see live and unbuffered.
	Inherit
	// Null discards writes (stdout/stderr) or supplies immediate EOF
	// (stdin). Used for algorithm stdin when generator=none.
	Null
	// Connect names the policy of handing the child a caller-supplied
	// stream instead of a pipe of our own. LaunchSpec has no field to
	// carry such a stream, and Launch returns a SpawnError for any
	// stream set to Connect; impalab's own fan-out drives Capture
	// pipes at the io.Writer level instead.
	Connect
)

// SpawnError wraps a failure to start or fully wire up a child process.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// LaunchSpec describes a process to start.
type LaunchSpec struct {
	// Name identifies the component in logs; it need not be unique.
	Name string
	// Command is the executable to run; Args are passed verbatim.
	Command string
	Args    []string
	// Dir is the working directory. Empty means the caller's cwd.
	Dir string
	// Env, if non-nil, replaces the inherited environment entirely.
	// Nil means inherit os.Environ() unmodified.
	Env []string
	// Timeout, if positive, kills the process after it elapses.
	Timeout time.Duration

	// Stdin/Stdout/Stderr select each stream's policy. The zero value
	// (Capture) is the common case for generator/algorithm children.
	Stdin  StdioPolicy
	Stdout StdioPolicy
	Stderr StdioPolicy
}

// Handle is a running (or exited) child process and its stdio pipes.
// Stdin/Stdout/Stderr are non-nil only for streams launched with the
// Capture policy.
type Handle struct {
	Name   string
	cmd    *exec.Cmd
	Stdin  io.WriteCloser
	Stdout io.ReadCloser
	Stderr io.ReadCloser

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	status Status
	result ExitStatus
	waited bool
}

// PID returns the operating-system process ID.
func (h *Handle) PID() int { return h.cmd.Process.Pid }

// Status returns the current lifecycle status.
func (h *Handle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Launch starts spec as a child process. The launcher does no I/O on
// captured streams beyond creating the pipes; draining them is the
// caller's job.
func Launch(ctx context.Context, spec LaunchSpec) (*Handle, error) {
	if spec.Command == "" {
		return nil, &SpawnError{Command: spec.Command, Err: fmt.Errorf("empty command")}
	}

	runCtx, cancel := context.WithCancel(ctx)
	if spec.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, spec.Timeout)
	}

	cmd := exec.CommandContext(runCtx, spec.Command, spec.Args...)
	cmd.Dir = spec.Dir
	if spec.Env != nil {
		cmd.Env = spec.Env
	}

	h := &Handle{Name: spec.Name, cmd: cmd, ctx: runCtx, cancel: cancel, status: StatusPending}

	cleanup := func(err error) (*Handle, error) {
		cancel()
		return nil, &SpawnError{Command: spec.Command, Err: err}
	}

	switch spec.Stdin {
	case Inherit:
		cmd.Stdin = os.Stdin
	case Null:
		cmd.Stdin = nil // exec.Cmd treats a nil Stdin as /dev/null
	case Connect:
		return cleanup(fmt.Errorf("stdin policy Connect requires a caller-supplied stream, not yet wired by Launch"))
	default: // Capture
		stdin, err := cmd.StdinPipe()
		if err != nil {
			return cleanup(err)
		}
		h.Stdin = stdin
	}

	switch spec.Stdout {
	case Inherit:
		cmd.Stdout = os.Stdout
	case Null:
		cmd.Stdout = nil
	case Connect:
		return cleanup(fmt.Errorf("stdout policy Connect requires a caller-supplied stream, not yet wired by Launch"))
	default: // Capture
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return cleanup(err)
		}
		h.Stdout = stdout
	}

	switch spec.Stderr {
	case Inherit:
		cmd.Stderr = os.Stderr
	case Null:
		cmd.Stderr = nil
	case Connect:
		return cleanup(fmt.Errorf("stderr policy Connect requires a caller-supplied stream, not yet wired by Launch"))
	default: // Capture
		stderr, err := cmd.StderrPipe()
		if err != nil {
			return cleanup(err)
		}
		h.Stderr = stderr
	}

	if err := cmd.Start(); err != nil {
		return cleanup(err)
	}

	h.mu.Lock()
	h.status = StatusRunning
	h.mu.Unlock()

	log.Debug(log.CatProc, "launched", "name", spec.Name, "command", spec.Command, "pid", h.PID())
	return h, nil
}

// Wait blocks until the process exits and returns its outcome. Safe
// to call from a single goroutine only; callers coordinate their own
// single reaper per Handle.
func (h *Handle) Wait() ExitStatus {
	h.mu.Lock()
	if h.waited {
		r := h.result
		h.mu.Unlock()
		return r
	}
	h.waited = true
	h.mu.Unlock()

	err := h.cmd.Wait()
	ctxErr := h.ctx.Err()
	h.cancel()

	result := ExitStatus{}
	switch {
	case err == nil:
		result.Status = StatusCompleted
		result.ExitCode = 0
	default:
		// A child killed because its context was cancelled or timed
		// out also surfaces as an *exec.ExitError; count it as cancelled.
		if exitErr, ok := err.(*exec.ExitError); ok && ctxErr == nil {
			result.ExitCode = exitErr.ExitCode()
			result.Status = StatusFailed
		} else {
			result.Status = StatusCancelled
			result.ExitCode = -1
		}
		result.Err = err
	}

	h.mu.Lock()
	h.status = result.Status
	h.result = result
	h.mu.Unlock()

	log.Debug(log.CatProc, "exited", "name", h.Name, "pid", h.PID(), "status", result.Status.String(), "code", result.ExitCode)
	return result
}

// Kill sends a termination signal to the process and cancels its context.
// A no-op once the process has already reached a terminal status.
func (h *Handle) Kill() error {
	h.mu.Lock()
	terminal := h.status.IsTerminal()
	h.mu.Unlock()
	if terminal {
		return nil
	}

	h.cancel()
	if h.cmd.Process == nil {
		return nil
	}
	return h.cmd.Process.Kill()
}
