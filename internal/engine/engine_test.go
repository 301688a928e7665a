package engine

import (
	"context"
	"errors"
	"testing"

	"codexec/internal/domain/execution"
	"codexec/internal/harness"
	"codexec/internal/inputresolver"
	"codexec/internal/pipeline"
	"codexec/internal/planner"
	"codexec/internal/registry"
	"codexec/internal/workspace"
)

type fakeRunner struct {
	run execution.Result
}

func (f *fakeRunner) Run(_ context.Context, _ string, _ execution.Recipe, _ execution.Limits, phase planner.Phase, _ string) (execution.Result, error) {
	return f.run, nil
}

func newEngine(t *testing.T, runner pipeline.Runner) *Engine {
	t.Helper()
	reg, err := registry.New()
	if err != nil {
		t.Fatalf("registry.New error: %v", err)
	}
	mgr, err := workspace.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	p := pipeline.New(mgr, runner)
	h := harness.New(mgr, runner)
	return New(reg, inputresolver.New(), p, h)
}

func TestExecuteScriptUnknownLanguageFails(t *testing.T) {
	t.Parallel()

	e := newEngine(t, &fakeRunner{run: execution.Result{Status: execution.StatusCompleted}})
	_, err := e.ExecuteScript(context.Background(), "brainfuck", "", "", nil)
	if !errors.Is(err, execution.ErrUnsupportedLanguage) {
		t.Fatalf("expected ErrUnsupportedLanguage, got %v", err)
	}
}

func TestExecuteScriptRunsThroughPipeline(t *testing.T) {
	t.Parallel()

	e := newEngine(t, &fakeRunner{run: execution.Result{Status: execution.StatusCompleted, Stdout: "hi"}})
	result, err := e.ExecuteScript(context.Background(), "python", "print('hi')", "", nil)
	if err != nil {
		t.Fatalf("ExecuteScript error: %v", err)
	}
	if result.Stdout != "hi" {
		t.Fatalf("stdout = %q, want %q", result.Stdout, "hi")
	}
}

func TestExecuteSuiteResolvesCasesAndRunsHarness(t *testing.T) {
	t.Parallel()

	e := newEngine(t, &fakeRunner{run: execution.Result{Status: execution.StatusCompleted, Stdout: "3\n"}})
	expected := "3\n"
	raw := []inputresolver.RawTestCase{
		{Name: "a", Input: inputresolver.Source{Inline: strPtr("1 2")}, ExpectedOutput: &inputresolver.Source{Inline: &expected}},
	}

	result, err := e.ExecuteSuite(context.Background(), "python", "print(sum(map(int, input().split())))", nil, raw)
	if err != nil {
		t.Fatalf("ExecuteSuite error: %v", err)
	}
	if len(result.PerTest) != 1 || !result.PerTest[0].Passed {
		t.Fatalf("expected one passing case, got %+v", result.PerTest)
	}
}

func strPtr(s string) *string { return &s }
