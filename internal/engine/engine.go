// Package engine composes the Language Registry, External Input Resolver,
// Execution Pipeline, and Test-Case Harness into the two public entry
// points a caller needs: executing a single script, or executing a script
// against a suite of test cases. It plays the role the teacher's
// app/executor/service.go plays over its own narrower set of components.
package engine

import (
	"context"
	"fmt"

	"codexec/internal/domain/execution"
	"codexec/internal/harness"
	"codexec/internal/inputresolver"
	"codexec/internal/pipeline"
	"codexec/internal/registry"
)

// Engine is the facade collaborators use to run submissions; it holds no
// state of its own beyond references to its components.
type Engine struct {
	Registry *registry.Registry
	Resolver *inputresolver.Resolver
	Pipeline *pipeline.Pipeline
	Harness  *harness.Harness
}

// New wires the four components together.
func New(reg *registry.Registry, resolver *inputresolver.Resolver, p *pipeline.Pipeline, h *harness.Harness) *Engine {
	return &Engine{Registry: reg, Resolver: resolver, Pipeline: p, Harness: h}
}

// ExecuteScript compiles (if needed) and runs source once against stdin,
// with no expected-output comparison.
func (e *Engine) ExecuteScript(ctx context.Context, languageToken, source, stdin string, limits *execution.Limits) (execution.Result, error) {
	recipe, err := e.Registry.Lookup(languageToken)
	if err != nil {
		return execution.Result{}, err
	}

	outcome, err := e.Pipeline.Execute(ctx, recipe, source, stdin, limits)
	if err != nil {
		return execution.Result{}, fmt.Errorf("engine: execute script: %w", err)
	}
	return outcome.Run, nil
}

// ExecuteReport runs a fully-resolved Script end to end and folds the
// outcome into a RunReport, compiling if the language requires it and
// running every one of script.Tests if it has any, or a single bare run
// against script.Stdin otherwise. It is the entry point the Kafka
// collaborator layer uses, where test cases already arrive resolved.
func (e *Engine) ExecuteReport(ctx context.Context, script execution.Script) execution.RunReport {
	recipe, err := e.Registry.Lookup(string(script.Language))
	if err != nil {
		return execution.RunReport{Script: script, Err: err}
	}

	if len(script.Tests) == 0 {
		outcome, err := e.Pipeline.Execute(ctx, recipe, script.Source, script.Stdin, &script.Limits)
		if err != nil {
			return execution.RunReport{Script: script, Err: err}
		}
		result := outcome.Run
		return execution.RunReport{Script: script, Result: &result}
	}

	sub, err := e.Harness.RunSuite(ctx, recipe, script.Source, &script.Limits, script.Tests)
	if err != nil {
		return execution.RunReport{Script: script, Err: err}
	}
	result := aggregateToResult(sub)
	return execution.RunReport{Script: script, Result: &result, PerTest: sub.PerTest}
}

// aggregateToResult folds a SubmissionResult down to the single Result a
// RunReport carries: completed only if every case passed, otherwise the
// status of the first case that did not.
func aggregateToResult(sub execution.SubmissionResult) execution.Result {
	status := execution.StatusCompleted
	for _, tr := range sub.PerTest {
		if !tr.Passed {
			status = tr.Status
			if status == execution.StatusCompleted {
				status = execution.StatusWrongAnswer
			}
			break
		}
	}
	return execution.Result{
		Status:   status,
		Stdout:   sub.AggregatedStdout,
		Stderr:   sub.AggregatedStderr,
		ExitCode: sub.OverallExitCode,
	}
}

// ExecuteSuite resolves raw's input/expected-output sources, then runs
// source against every resolved case through the harness.
func (e *Engine) ExecuteSuite(ctx context.Context, languageToken, source string, limits *execution.Limits, raw []inputresolver.RawTestCase) (execution.SubmissionResult, error) {
	recipe, err := e.Registry.Lookup(languageToken)
	if err != nil {
		return execution.SubmissionResult{}, err
	}

	cases, err := e.Resolver.Resolve(ctx, raw)
	if err != nil {
		return execution.SubmissionResult{}, err
	}

	result, err := e.Harness.RunSuite(ctx, recipe, source, limits, cases)
	if err != nil {
		return execution.SubmissionResult{}, fmt.Errorf("engine: execute suite: %w", err)
	}
	return result, nil
}
