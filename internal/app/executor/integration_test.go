//go:build integration

package executor_test

import (
	"context"
	"io"
	"os/exec"
	"sync"
	"testing"
	"time"

	"codexec/internal/app/executor"
	"codexec/internal/domain/execution"
	"codexec/internal/engine"
	"codexec/internal/harness"
	"codexec/internal/inputresolver"
	"codexec/internal/pipeline"
	"codexec/internal/registry"
	"codexec/internal/sandbox"
	"codexec/internal/workspace"
)

func TestServiceExecutesScriptsAgainstDocker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping docker integration test in short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker binary not found on PATH")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	reg, err := registry.New()
	if err != nil {
		t.Fatalf("registry.New error: %v", err)
	}
	ws, err := workspace.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("workspace.NewManager error: %v", err)
	}
	sb := sandbox.NewExecutor()
	pl := pipeline.New(ws, sb)
	h := harness.New(ws, sb)
	eng := engine.New(reg, inputresolver.New(), pl, h)

	service := executor.NewService(eng, 1)

	producer := &sliceProducer{
		scripts: []execution.Script{
			{
				ID:       "python-no-tests",
				Language: execution.LanguagePython,
				Source:   "print('hello from integration test')\n",
			},
			{
				ID:       "python-with-tests",
				Language: execution.LanguagePython,
				Source: `
import sys

def main():
    data = sys.stdin.read().strip()
    if not data:
        print("0")
        return
    n = int(data)
    print(n * 2)

if __name__ == "__main__":
    main()
`,
				Tests: []execution.TestCase{
					{Name: "double-2", Input: "2\n", ExpectedOutput: strPtr("4\n")},
					{Name: "double-5", Input: "5\n", ExpectedOutput: strPtr("nope\n")},
				},
			},
		},
	}

	var (
		mu      sync.Mutex
		reports []execution.RunReport
	)

	err = service.ExecuteFromProducer(ctx, producer, 0, func(report execution.RunReport) {
		mu.Lock()
		defer mu.Unlock()
		reports = append(reports, report)
	})
	if err != nil {
		t.Fatalf("ExecuteFromProducer returned error: %v", err)
	}

	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}

	noTests := findReport(t, reports, "python-no-tests")
	if noTests.Result == nil {
		t.Fatalf("expected result for script without tests")
	}
	if noTests.Result.Status != execution.StatusCompleted {
		t.Fatalf("expected completed status, got %q", noTests.Result.Status)
	}
	if noTests.Err != nil {
		t.Fatalf("unexpected error executing script: %v", noTests.Err)
	}

	withTests := findReport(t, reports, "python-with-tests")
	if withTests.Result == nil {
		t.Fatalf("expected result for script with tests")
	}
	if withTests.Result.Status != execution.StatusWrongAnswer {
		t.Fatalf("expected WrongAnswer status, got %q", withTests.Result.Status)
	}
}

func strPtr(s string) *string { return &s }

type sliceProducer struct {
	mu      sync.Mutex
	scripts []execution.Script
	index   int
}

func (s *sliceProducer) NextScript(ctx context.Context) (execution.Script, error) {
	select {
	case <-ctx.Done():
		return execution.Script{}, ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index >= len(s.scripts) {
		return execution.Script{}, io.EOF
	}

	script := s.scripts[s.index]
	s.index++
	return script, nil
}

func findReport(t *testing.T, reports []execution.RunReport, id string) execution.RunReport {
	t.Helper()
	for _, report := range reports {
		if report.Script.ID == id {
			return report
		}
	}
	t.Fatalf("report with id %q not found", id)
	return execution.RunReport{}
}
