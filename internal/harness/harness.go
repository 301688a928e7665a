// Package harness implements spec.md's Test-Case Harness (C7): it compiles
// a submission once, then runs its test cases sequentially against the
// same workspace, comparing stdout to each case's expected output.
//
// Compiling once and reusing the workspace for every case, rather than the
// pipeline's per-call acquire/release, is grounded on the teacher's
// suite_runner.go, which also builds a container once and iterates test
// cases against it. The trailing-newline-tolerant comparison follows the
// teacher's own `strings.TrimRight(got, "\n") == strings.TrimRight(want,
// "\n")` check in the same file.
package harness

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"codexec/internal/domain/execution"
	"codexec/internal/limits"
	"codexec/internal/pipeline"
	"codexec/internal/planner"
	"codexec/internal/workspace"
)

// Harness runs a test-case suite for one submission.
type Harness struct {
	Workspaces *workspace.Manager
	Runner     pipeline.Runner
	Ceilings   limits.Ceilings
	Logger     *zap.Logger
}

// New builds a Harness with the default host ceilings. Logger defaults to
// a no-op logger; callers that want cleanup failures surfaced set it
// directly after construction.
func New(workspaces *workspace.Manager, runner pipeline.Runner) *Harness {
	return &Harness{
		Workspaces: workspaces,
		Runner:     runner,
		Ceilings:   limits.DefaultCeilings(),
		Logger:     zap.NewNop(),
	}
}

// logger returns h.Logger, falling back to a no-op so a zero-value
// Harness never nil-panics on a log call.
func (h *Harness) logger() *zap.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return zap.NewNop()
}

// RunSuite compiles recipe's source once if needed, then executes every
// case in cases in request order, stopping early (marking the remainder
// StatusCancelled) if ctx is cancelled between cases. It releases the
// workspace on every exit path.
func (h *Harness) RunSuite(ctx context.Context, recipe execution.Recipe, source string, submissionLimits *execution.Limits, cases []execution.TestCase) (execution.SubmissionResult, error) {
	ws, err := h.Workspaces.Acquire()
	if err != nil {
		return execution.SubmissionResult{}, err
	}
	defer func() {
		if err := h.Workspaces.Release(ws); err != nil {
			h.logger().Warn("releasing workspace", zap.String("workspace", ws.Path()), zap.Error(err))
		}
	}()

	if err := h.Workspaces.WriteSource(ws, recipe.SourceFilename, []byte(source)); err != nil {
		return execution.SubmissionResult{}, err
	}

	base := limits.Merge(execution.DefaultLimits(), submissionLimits)

	if recipe.Compiled() {
		compileResult, err := h.Runner.Run(ctx, ws.Path(), recipe, limits.CompileLimits(), planner.PhaseCompile, "")
		if err != nil {
			return execution.SubmissionResult{}, fmt.Errorf("harness: compile: %w", err)
		}
		if compileResult.Status != execution.StatusCompleted || compileResult.ExitCode != 0 {
			return compileFailedSuite(cases, compileResult), nil
		}
	}

	var sb execution.SubmissionResult
	sb.PerTest = make([]execution.TestResult, 0, len(cases))

	for i, tc := range cases {
		if err := ctx.Err(); err != nil {
			sb.PerTest = append(sb.PerTest, cancelledResults(cases[i:])...)
			break
		}

		final := limits.Merge(base, tc.LimitsOverride)
		if err := limits.Validate(final, h.Ceilings); err != nil {
			sb.PerTest = append(sb.PerTest, execution.TestResult{
				Name:    tc.Name,
				Status:  execution.StatusInternalError,
				Message: err.Error(),
			})
			continue
		}

		result, err := h.Runner.Run(ctx, ws.Path(), recipe, final, planner.PhaseRun, tc.Input)
		if err != nil {
			sb.PerTest = append(sb.PerTest, execution.TestResult{
				Name:    tc.Name,
				Status:  execution.StatusInternalError,
				Message: err.Error(),
			})
			continue
		}

		tr := execution.TestResult{
			Name:     tc.Name,
			Status:   result.Status,
			Outcome:  result,
			Expected: tc.ExpectedOutput,
			Actual:   result.Stdout,
		}
		tr.Passed = judge(result, tc.ExpectedOutput)
		sb.PerTest = append(sb.PerTest, tr)

		appendHeader(&sb, tc.Name, i, result)
	}

	sb.OverallExitCode = overallExitCode(sb.PerTest)
	return sb, nil
}

// judge reports whether result counts as a pass. With no expected output,
// a clean completion (exit code 0) is the pass condition; otherwise stdout
// must match after trimming one trailing newline from each side.
func judge(result execution.Result, expected *string) bool {
	if result.Status != execution.StatusCompleted {
		return false
	}
	if expected == nil {
		return result.ExitCode == 0
	}
	return trimOneTrailingNewline(result.Stdout) == trimOneTrailingNewline(*expected)
}

func trimOneTrailingNewline(s string) string {
	return strings.TrimSuffix(s, "\n")
}

func compileFailedSuite(cases []execution.TestCase, compileResult execution.Result) execution.SubmissionResult {
	var sb execution.SubmissionResult
	sb.AggregatedStderr = compileResult.Stderr
	sb.PerTest = make([]execution.TestResult, len(cases))
	for i, tc := range cases {
		sb.PerTest[i] = execution.TestResult{
			Name:    tc.Name,
			Status:  execution.StatusCompileFailed,
			Message: "compile step failed, no case was run",
		}
	}
	sb.OverallExitCode = 1
	return sb
}

func cancelledResults(remaining []execution.TestCase) []execution.TestResult {
	out := make([]execution.TestResult, len(remaining))
	for i, tc := range remaining {
		out[i] = execution.TestResult{
			Name:    tc.Name,
			Status:  execution.StatusCancelled,
			Message: "submission cancelled before this case ran",
		}
	}
	return out
}

// overallExitCode is 0 only when every case passed; otherwise it is the
// exit code of the first case that did not pass, or 1 if that case never
// produced one.
func overallExitCode(results []execution.TestResult) int64 {
	for _, r := range results {
		if !r.Passed {
			if r.Outcome.ExitCode != 0 {
				return r.Outcome.ExitCode
			}
			return 1
		}
	}
	return 0
}

func appendHeader(sb *execution.SubmissionResult, name string, index int, result execution.Result) {
	sb.AggregatedStdout += fmt.Sprintf("--- case %d (%s) ---\n%s", index, name, result.Stdout)
	sb.AggregatedStderr += result.Stderr
}
