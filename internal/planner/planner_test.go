package planner

import (
	"strings"
	"testing"
	"time"

	"codexec/internal/domain/execution"
)

func pythonRecipe() execution.Recipe {
	return execution.Recipe{
		Language:       execution.LanguagePython,
		Image:          "python:3.12-alpine",
		SourceFilename: "main.py",
		Run:            []string{"python3", "main.py"},
	}
}

func goRecipe() execution.Recipe {
	return execution.Recipe{
		Language:       execution.LanguageGo,
		Image:          "golang:1.24-alpine",
		SourceFilename: "main.go",
		Compile:        []string{"go", "build", "-o", "program", "main.go"},
		Run:            []string{"./program"},
	}
}

func TestPlanRunBuildsExpectedArgv(t *testing.T) {
	t.Parallel()

	limits := execution.Limits{
		CPUTime:      2 * time.Second,
		MemoryBytes:  64 * 1024 * 1024,
		StackBytes:   8 * 1024 * 1024,
		MaxProcesses: 16,
		MaxOpenFiles: 32,
	}

	args, err := Plan("/tmp/ws-1", "codexec-run-1", pythonRecipe(), limits, PhaseRun)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}

	want := []string{
		"run", "--rm", "--network=none", "--read-only",
		"--security-opt=no-new-privileges", "--cap-drop=ALL", "-i",
		"--name", "codexec-run-1",
		"--memory=67108864", "--memory-swap=67108864",
		"--pids-limit=16",
		"-v", "/tmp/ws-1:/workspace",
		"-w", "/workspace",
		"python:3.12-alpine",
		"sh", "-c", "ulimit -t 2; ulimit -s 8192; ulimit -n 32; exec 'python3' 'main.py'",
	}
	assertEqualArgs(t, args, want)
}

func TestPlanIsDeterministic(t *testing.T) {
	t.Parallel()

	limits := execution.DefaultLimits()
	a, err := Plan("/tmp/ws", "codexec-c1", goRecipe(), limits, PhaseCompile)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	b, err := Plan("/tmp/ws", "codexec-c1", goRecipe(), limits, PhaseCompile)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	assertEqualArgs(t, a, b)
}

func TestPlanCompileUsesCompileCommand(t *testing.T) {
	t.Parallel()

	args, err := Plan("/ws", "codexec-c2", goRecipe(), execution.DefaultLimits(), PhaseCompile)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "'go' 'build' '-o' 'program' 'main.go'") {
		t.Fatalf("compile command missing from argv: %v", args)
	}
}

func TestPlanCompileOnUncompiledRecipeFails(t *testing.T) {
	t.Parallel()

	_, err := Plan("/ws", "codexec-c3", pythonRecipe(), execution.DefaultLimits(), PhaseCompile)
	if err == nil {
		t.Fatalf("expected error planning compile for a recipe with no compile step")
	}
}

func TestPlanZeroLimitsOmitsOptionalFlags(t *testing.T) {
	t.Parallel()

	args, err := Plan("/ws", "codexec-c4", pythonRecipe(), execution.Limits{}, PhaseRun)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	joined := strings.Join(args, " ")
	for _, flag := range []string{"--memory=", "--pids-limit=", "ulimit"} {
		if strings.Contains(joined, flag) {
			t.Fatalf("expected %q to be omitted for zero limits, got %v", flag, args)
		}
	}
}

func TestPlanEmptyContainerNameOmitsNameFlag(t *testing.T) {
	t.Parallel()

	args, err := Plan("/ws", "", pythonRecipe(), execution.DefaultLimits(), PhaseRun)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if strings.Contains(strings.Join(args, " "), "--name") {
		t.Fatalf("expected --name to be omitted when containerName is empty, got %v", args)
	}
}

func TestShellQuoteEscapesSingleQuotes(t *testing.T) {
	t.Parallel()

	got := shellQuote("it's")
	want := `'it'"'"'s'`
	if got != want {
		t.Fatalf("shellQuote(%q) = %q, want %q", "it's", got, want)
	}
}

func assertEqualArgs(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("arg count mismatch: got %d %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("arg %d mismatch: got %q, want %q\nfull got: %v", i, got[i], want[i], got)
		}
	}
}
