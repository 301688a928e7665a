// Package pipeline implements spec.md's Execution Pipeline (C6): the
// compile-then-run orchestration shared by a single-shot execution and
// every case of a test-suite harness run.
//
// The acquire/write/run/release sequence with a deferred release on every
// exit path is grounded on the teacher's suite_runner.go, which wraps its
// container lifecycle the same way; compiling once and reusing the
// workspace across phases is grounded on the same file's single-workspace
// compile-then-loop structure.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"codexec/internal/domain/execution"
	"codexec/internal/limits"
	"codexec/internal/planner"
	"codexec/internal/workspace"
)

// Runner executes one phase of a recipe. sandbox.Executor satisfies it;
// tests substitute a fake to avoid spawning real processes.
type Runner interface {
	Run(ctx context.Context, workspacePath string, recipe execution.Recipe, limits execution.Limits, phase planner.Phase, stdin string) (execution.Result, error)
}

// Pipeline wires a workspace manager and a runner into the compile/run
// sequence.
type Pipeline struct {
	Workspaces *workspace.Manager
	Runner     Runner
	Ceilings   limits.Ceilings
	Logger     *zap.Logger
}

// New builds a Pipeline with the default host ceilings. Logger defaults to
// a no-op logger; callers that want cleanup failures surfaced set it
// directly after construction.
func New(workspaces *workspace.Manager, runner Runner) *Pipeline {
	return &Pipeline{
		Workspaces: workspaces,
		Runner:     runner,
		Ceilings:   limits.DefaultCeilings(),
		Logger:     zap.NewNop(),
	}
}

// logger returns p.Logger, falling back to a no-op so a zero-value
// Pipeline never nil-panics on a log call.
func (p *Pipeline) logger() *zap.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return zap.NewNop()
}

// Outcome is the classified result of one pipeline execution, distinguishing
// a compile failure (Compiled=false) from a run outcome.
type Outcome struct {
	Compiled   bool
	CompileLog string
	Run        execution.Result
}

// Execute acquires a workspace, writes source, compiles if the recipe
// requires it, runs, and releases the workspace unconditionally before
// returning. A non-nil error means the execution could not be carried out
// (limits out of range, workspace I/O failure, or the runner failing to
// start or supervise the sandbox); a failed or timed-out program is
// reported through Outcome.Run.Status, not an error.
func (p *Pipeline) Execute(ctx context.Context, recipe execution.Recipe, source, stdin string, override *execution.Limits) (Outcome, error) {
	effective := limits.Merge(execution.DefaultLimits(), override)
	if err := limits.Validate(effective, p.Ceilings); err != nil {
		return Outcome{}, err
	}

	ws, err := p.Workspaces.Acquire()
	if err != nil {
		return Outcome{}, err
	}
	defer func() {
		if err := p.Workspaces.Release(ws); err != nil {
			p.logger().Warn("releasing workspace", zap.String("workspace", ws.Path()), zap.Error(err))
		}
	}()

	if err := p.Workspaces.WriteSource(ws, recipe.SourceFilename, []byte(source)); err != nil {
		return Outcome{}, err
	}

	if recipe.Compiled() {
		compileResult, err := p.Runner.Run(ctx, ws.Path(), recipe, limits.CompileLimits(), planner.PhaseCompile, "")
		if err != nil {
			return Outcome{}, fmt.Errorf("pipeline: compile: %w", err)
		}
		if compileResult.Status != execution.StatusCompleted || compileResult.ExitCode != 0 {
			return Outcome{
				Compiled:   false,
				CompileLog: compileResult.Stderr,
				Run: execution.Result{
					Status: execution.StatusCompileFailed,
					Stderr: compileResult.Stderr,
					Reason: "compile step failed",
				},
			}, nil
		}
	}

	runResult, err := p.Runner.Run(ctx, ws.Path(), recipe, effective, planner.PhaseRun, stdin)
	if err != nil {
		return Outcome{}, fmt.Errorf("pipeline: run: %w", err)
	}

	return Outcome{Compiled: true, Run: runResult}, nil
}
