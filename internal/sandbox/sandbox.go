// Package sandbox implements spec.md's Sandboxed Executor (C5): it turns a
// planner.Plan argument vector into a live external process, enforces a
// wall-time deadline with a graceful-then-forceful shutdown, and bounds
// how much stdout/stderr it will buffer in memory.
//
// The os/exec-based spawn-and-wait loop, and the bounded-buffer writer
// protecting the process from an unbounded child, are grounded on the
// teacher's container_engine.go run loop; the graceful-stop-then-kill
// sequence is grounded on the teacher's own runner.go, which stops a
// container with the runtime's default (SIGTERM, wait, then SIGKILL)
// semantics and only falls back to an explicit kill if stop itself
// fails to return.
package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"

	"codexec/internal/domain/execution"
	"codexec/internal/planner"
)

// DefaultOutputCap is the maximum number of bytes retained per stream
// before further output is discarded and the truncation flag is set.
const DefaultOutputCap = 1 << 20 // 1 MiB

// DefaultGracePeriod is the time `docker stop --time` gives a timed-out
// container between SIGTERM and SIGKILL (rounded up to whole seconds).
// The executor only runs `docker kill` itself if the stop command fails.
const DefaultGracePeriod = 2 * time.Second

// Executor spawns one container per Run call via the configured binary
// (normally the docker CLI).
type Executor struct {
	Binary      string
	OutputCap   int64
	GracePeriod time.Duration

	// live tracks container names currently in flight, so a supervisor
	// can discover and sweep anything Run didn't get a chance to
	// terminate itself (process killed mid-Run, panic recovery, etc.).
	// This is defense-in-depth for Invariant 2, not the primary
	// termination path — Run always calls terminate() itself on timeout.
	live mapset.Set[string]
}

// NewExecutor builds an Executor with the package defaults. Fields may be
// overridden directly on the returned value; it holds no unexported state
// beyond the live-container bookkeeping set.
func NewExecutor() *Executor {
	return &Executor{
		Binary:      planner.Binary,
		OutputCap:   DefaultOutputCap,
		GracePeriod: DefaultGracePeriod,
		live:        mapset.NewSet[string](),
	}
}

// LiveContainers returns the names of containers this Executor currently
// believes are running. It is a point-in-time snapshot for diagnostics
// and orphan-sweeping, not a synchronization primitive.
func (e *Executor) LiveContainers() []string {
	if e.live == nil {
		return nil
	}
	return e.live.ToSlice()
}

// Run executes one phase of a recipe inside a freshly named container and
// blocks until it exits, the wall-time deadline elapses, or ctx is
// cancelled. It never returns a non-nil error for a program that merely
// exits non-zero or times out; those are reported through the returned
// Result's Status. A non-nil error means the sandbox itself could not be
// started or supervised (docker binary missing, argv planning failed).
func (e *Executor) Run(ctx context.Context, workspacePath string, recipe execution.Recipe, limits execution.Limits, phase planner.Phase, stdin string) (execution.Result, error) {
	name := "codexec-" + uuid.NewString()

	args, err := planner.Plan(workspacePath, name, recipe, limits, phase)
	if err != nil {
		return execution.Result{Status: execution.StatusInternalError, Reason: err.Error()}, fmt.Errorf("%w: %w", execution.ErrSpawnFailed, err)
	}

	if e.live != nil {
		e.live.Add(name)
		defer e.live.Remove(name)
	}

	binary := e.Binary
	if binary == "" {
		binary = planner.Binary
	}

	deadline := limits.WallTime
	if deadline <= 0 {
		deadline = execution.DefaultLimits().WallTime
	}
	runCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	cmd := exec.CommandContext(runCtx, binary, args...)
	cmd.Stdin = strings.NewReader(stdin)

	outCap := e.OutputCap
	if outCap <= 0 {
		outCap = DefaultOutputCap
	}
	stdout := newBoundedBuffer(outCap)
	stderr := newBoundedBuffer(outCap)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	result := execution.Result{
		Stdout:          stdout.String(),
		Stderr:          stderr.String(),
		WallElapsed:     elapsed,
		StdoutTruncated: stdout.truncated,
		StderrTruncated: stderr.truncated,
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		e.terminate(name)
		result.Status = execution.StatusTimedOut
		result.ExitCode = 124
		result.Reason = fmt.Sprintf("exceeded wall time limit of %s", deadline)
		return result, nil
	}

	if runErr == nil {
		result.Status = execution.StatusCompleted
		result.ExitCode = 0
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		result.ExitCode = int64(exitErr.ExitCode())
		killed, peak := e.inspectOOM(name)
		switch {
		case killed:
			result.Status = execution.StatusLimitExceededMemory
			result.PeakMemory = peak
			result.Reason = "killed by the runtime's out-of-memory reaper"
		case processLimitExceeded(result.Stderr):
			result.Status = execution.StatusLimitExceededProcess
			result.Reason = "process was refused a new pid by the container's pids-limit"
		default:
			result.Status = execution.StatusCompleted
		}
		return result, nil
	}

	result.Status = execution.StatusSpawnFailed
	result.Reason = runErr.Error()
	return result, fmt.Errorf("%w: %w", execution.ErrSpawnFailed, runErr)
}

// terminate issues a graceful stop, giving the container GracePeriod to
// exit on its own SIGTERM handling before the runtime escalates to
// SIGKILL itself, mirroring the teacher's ContainerStop call with
// default StopOptions. A direct kill is only a fallback for when the
// stop command itself does not return within the grace window (docker
// CLI hung or unresponsive), not the normal path.
func (e *Executor) terminate(name string) {
	binary := e.Binary
	if binary == "" {
		binary = planner.Binary
	}
	grace := e.GracePeriod
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	graceSeconds := int(grace / time.Second)
	if grace%time.Second != 0 {
		graceSeconds++
	}
	if graceSeconds < 1 {
		graceSeconds = 1
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), grace+DefaultGracePeriod)
	defer cancel()
	stopErr := exec.CommandContext(stopCtx, binary, "stop", "--time", strconv.Itoa(graceSeconds), name).Run()
	if stopErr == nil {
		return
	}

	killCtx, cancelKill := context.WithTimeout(context.Background(), grace)
	defer cancelKill()
	_ = exec.CommandContext(killCtx, binary, "kill", name).Run()
}

// inspectOOM queries the runtime for whether the named container was
// killed by the out-of-memory reaper. It does not query peak memory usage;
// peakBytes is always nil. It is best-effort: any failure to inspect (the
// container has already been removed by --rm) yields killed=false.
func (e *Executor) inspectOOM(name string) (killed bool, peakBytes *int64) {
	binary := e.Binary
	if binary == "" {
		binary = planner.Binary
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, binary, "inspect",
		"--format", "{{.State.OOMKilled}}", name).Output()
	if err != nil {
		return false, nil
	}
	return strings.TrimSpace(string(out)) == "true", nil
}

// processLimitExceededMarkers are the stock libc/shell messages a process
// prints to stderr when the kernel refuses it a new pid, the
// characteristic symptom of hitting the container's --pids-limit. The
// runtime exposes no inspect field for this the way it does for an OOM
// kill (pids-limit only blocks new forks; it never kills the container),
// so this is a best-effort text match rather than an authoritative
// signal.
var processLimitExceededMarkers = []string{
	"fork: retry",
	"cannot fork",
	"resource temporarily unavailable",
	"cannot allocate memory",
}

func processLimitExceeded(stderr string) bool {
	lower := strings.ToLower(stderr)
	for _, marker := range processLimitExceededMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// boundedBuffer caps the number of bytes retained; writes beyond the cap
// are discarded and truncated is latched true, rather than blocking or
// killing the producing process.
type boundedBuffer struct {
	mu        sync.Mutex
	buf       bytes.Buffer
	cap       int64
	truncated bool
}

func newBoundedBuffer(cap int64) *boundedBuffer {
	return &boundedBuffer{cap: cap}
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	remaining := b.cap - int64(b.buf.Len())
	if remaining <= 0 {
		b.truncated = true
		return len(p), nil
	}
	if int64(len(p)) > remaining {
		b.buf.Write(p[:remaining])
		b.truncated = true
		return len(p), nil
	}
	b.buf.Write(p)
	return len(p), nil
}

func (b *boundedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
