package execution

import "time"

// Status is the tag of a RunOutcome or TestResult. It is a closed set of
// string constants rather than an interface hierarchy so it serializes
// cleanly and compares with ==, matching how the teacher's execution
// package represents outcome kinds.
type Status string

const (
	// StatusCompleted is the normal terminal state: the program ran to
	// exit, whether or not the exit code was zero.
	StatusCompleted Status = "completed"
	// StatusTimedOut means the wall-time deadline fired before the
	// program exited.
	StatusTimedOut Status = "timed_out"
	// StatusCompileFailed means the compile phase exited non-zero; the
	// run phase was never attempted.
	StatusCompileFailed Status = "compile_failed"
	// StatusLimitExceededMemory means the runtime reported an
	// out-of-memory kill.
	StatusLimitExceededMemory Status = "limit_exceeded_memory"
	// StatusLimitExceededProcess means the process was refused a new pid
	// by the container's --pids-limit, detected from the characteristic
	// fork-failure text a shell or libc writes to stderr when that
	// happens (the runtime itself exposes no inspect field for this the
	// way it does for an OOM kill).
	StatusLimitExceededProcess Status = "limit_exceeded_process"
	// StatusSpawnFailed means the container runtime could not be
	// started at all.
	StatusSpawnFailed Status = "spawn_failed"
	// StatusInternalError marks an unexpected defect, not a user-visible
	// language error.
	StatusInternalError Status = "internal_error"
	// StatusCancelled means the enclosing request was aborted by the
	// caller before this case ran.
	StatusCancelled Status = "cancelled"
	// StatusNotRun marks a test case that was not executed. Nothing in
	// this module assigns it: the harness marks cases after a compile
	// failure StatusCompileFailed, cases skipped by cancellation
	// StatusCancelled, and runs every other case even after an earlier
	// one failed.
	StatusNotRun Status = "not_run"
	// StatusWrongAnswer marks a completed run whose stdout did not
	// match the expected output.
	StatusWrongAnswer Status = "wrong_answer"
)

// Ok reports whether the status is StatusCompleted, i.e. the program ran
// to exit. It says nothing about the exit code or whether the output
// matched an expectation; TestResult.Passed carries that verdict.
func (s Status) Ok() bool {
	return s == StatusCompleted
}

// Result is the outcome of one executor invocation (spec.md's "Run
// Outcome"). Exactly one Status tag applies; the fields that are not
// meaningful for that tag are left zero.
type Result struct {
	Status Status

	Stdout   string
	Stderr   string
	ExitCode int64

	WallElapsed time.Duration
	PeakMemory  *int64 // bytes; nil when the runtime does not expose it

	StdoutTruncated bool
	StderrTruncated bool

	// Reason carries the detail for SpawnFailed / InternalError; it is
	// never shown to end users as a language-level error.
	Reason string
}
