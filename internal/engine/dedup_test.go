package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"codexec/internal/dedup"
	"codexec/internal/domain/execution"
	"codexec/internal/harness"
	"codexec/internal/inputresolver"
	"codexec/internal/pipeline"
	"codexec/internal/planner"
	"codexec/internal/registry"
	"codexec/internal/workspace"
)

type blockingRunner struct {
	calls   int32
	started chan struct{}
	release chan struct{}
	result  execution.Result
	err     error
}

func (r *blockingRunner) Run(_ context.Context, _ string, _ execution.Recipe, _ execution.Limits, _ planner.Phase, _ string) (execution.Result, error) {
	if atomic.AddInt32(&r.calls, 1) == 1 {
		close(r.started)
		<-r.release
	}
	return r.result, r.err
}

func newDedupingEngine(t *testing.T, runner pipeline.Runner) *Deduping {
	t.Helper()

	reg, err := registry.New()
	if err != nil {
		t.Fatalf("registry.New error: %v", err)
	}
	ws, err := workspace.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("workspace.NewManager error: %v", err)
	}

	p := pipeline.New(ws, runner)
	h := harness.New(ws, runner)
	eng := New(reg, inputresolver.New(), p, h)

	return NewDeduping(eng, dedup.New(dedup.DefaultTTL))
}

func TestDedupingExecuteReportSharesConcurrentIdenticalRuns(t *testing.T) {
	t.Parallel()

	runner := &blockingRunner{
		started: make(chan struct{}),
		release: make(chan struct{}),
		result:  execution.Result{Status: execution.StatusCompleted, Stdout: "hi"},
	}
	deduper := newDedupingEngine(t, runner)

	script := execution.Script{ID: "a", Language: execution.LanguagePython, Source: "print('hi')"}
	script2 := execution.Script{ID: "b", Language: execution.LanguagePython, Source: "print('hi')"}

	var wg sync.WaitGroup
	results := make([]execution.RunReport, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		results[0] = deduper.ExecuteReport(context.Background(), script)
	}()
	go func() {
		defer wg.Done()
		<-runner.started
		results[1] = deduper.ExecuteReport(context.Background(), script2)
	}()

	time.Sleep(20 * time.Millisecond)
	close(runner.release)
	wg.Wait()

	if atomic.LoadInt32(&runner.calls) != 1 {
		t.Fatalf("expected exactly 1 underlying run, got %d", runner.calls)
	}
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("result %d: unexpected error %v", i, r.Err)
		}
		if r.Result == nil || r.Result.Stdout != "hi" {
			t.Fatalf("result %d: unexpected result %+v", i, r.Result)
		}
	}
}

func TestDedupingExecuteReportPropagatesError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("boom")
	runner := &blockingRunner{started: make(chan struct{}), release: make(chan struct{}), err: wantErr}
	close(runner.release)
	deduper := newDedupingEngine(t, runner)

	script := execution.Script{ID: "a", Language: execution.LanguageGo, Source: "package main"}
	report := deduper.ExecuteReport(context.Background(), script)
	if report.Err == nil {
		t.Fatalf("expected error to propagate")
	}
}

func TestDedupingExecuteReportServesCacheOnSecondCall(t *testing.T) {
	t.Parallel()

	runner := &blockingRunner{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		result:  execution.Result{Status: execution.StatusCompleted, Stdout: "cached"},
	}
	close(runner.release)
	deduper := newDedupingEngine(t, runner)

	script := execution.Script{ID: "a", Language: execution.LanguagePython, Source: "print('x')"}

	first := deduper.ExecuteReport(context.Background(), script)
	if first.Err != nil {
		t.Fatalf("unexpected error: %v", first.Err)
	}

	second := deduper.ExecuteReport(context.Background(), script)
	if second.Err != nil {
		t.Fatalf("unexpected error: %v", second.Err)
	}
	if second.Result.Stdout != "cached" {
		t.Fatalf("unexpected second result: %+v", second.Result)
	}
	if atomic.LoadInt32(&runner.calls) != 1 {
		t.Fatalf("expected cache to avoid second run, got %d calls", runner.calls)
	}
}

func TestDedupingExecuteReportBypassesCacheForSuites(t *testing.T) {
	t.Parallel()

	runner := &blockingRunner{
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
		result:  execution.Result{Status: execution.StatusCompleted, Stdout: "out"},
	}
	close(runner.release)
	deduper := newDedupingEngine(t, runner)

	script := execution.Script{
		ID:       "a",
		Language: execution.LanguagePython,
		Source:   "print('x')",
		Tests:    []execution.TestCase{{Name: "case-1", Input: "1"}},
	}

	first := deduper.ExecuteReport(context.Background(), script)
	if first.Err != nil {
		t.Fatalf("unexpected error: %v", first.Err)
	}
	second := deduper.ExecuteReport(context.Background(), script)
	if second.Err != nil {
		t.Fatalf("unexpected error: %v", second.Err)
	}
	if atomic.LoadInt32(&runner.calls) != 2 {
		t.Fatalf("expected suite scripts to bypass the dedup cache, got %d calls for 2 identical submissions", runner.calls)
	}
}
