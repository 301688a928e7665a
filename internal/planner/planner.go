// Package planner implements spec.md's Container Command Planner (C4): a
// pure function from (workspace, recipe, limits, phase) to the argument
// vector that will be handed to the external container runtime binary.
//
// The planner performs no I/O and is therefore trivially unit-testable by
// string comparison, matching the shape of programme-lv-tester's
// internal/isolate.Constraints.ToArgs()/Box.Run() — a pure argv builder
// consumed elsewhere by os/exec — adapted here from the isolate CLI to the
// docker CLI semantics the teacher's Docker-SDK runtime exercised
// (image, memory cap, workdir, per-language compile/run commands).
package planner

import (
	"fmt"
	"strconv"
	"strings"

	"codexec/internal/domain/execution"
)

// Phase selects which of the recipe's two commands to plan for.
type Phase int

const (
	PhaseCompile Phase = iota
	PhaseRun
)

// ContainerPath is the fixed in-container mount point for the workspace.
const ContainerPath = "/workspace"

// Binary is the container runtime CLI invoked by the executor. It is a
// package variable rather than a constant only so tests can substitute a
// fake binary name without faking a whole runtime.
var Binary = "docker"

// Plan builds the argument vector for one invocation. workspacePath is the
// host-side directory created by the workspace manager; it is mounted at
// ContainerPath inside the container. containerName is assigned via
// --name so the executor can issue `docker stop <name>` (and, if that
// fails, `docker kill <name>`) on a deadline without depending on the
// exec'd CLI process to forward signals into the container it spawned. Phase selects recipe.Compile or recipe.Run;
// planning PhaseCompile against a recipe with no Compile step is a caller
// error.
func Plan(workspacePath, containerName string, recipe execution.Recipe, limits execution.Limits, phase Phase) ([]string, error) {
	var command []string
	switch phase {
	case PhaseCompile:
		if !recipe.Compiled() {
			return nil, fmt.Errorf("planner: recipe %q has no compile step", recipe.Language)
		}
		command = recipe.Compile
	case PhaseRun:
		command = recipe.Run
	default:
		return nil, fmt.Errorf("planner: unknown phase %d", phase)
	}

	args := []string{
		"run",
		"--rm",
		"--network=none",
		"--read-only",
		"--security-opt=no-new-privileges",
		"--cap-drop=ALL",
		"-i",
	}
	if containerName != "" {
		args = append(args, "--name", containerName)
	}

	if limits.MemoryBytes > 0 {
		args = append(args,
			fmt.Sprintf("--memory=%d", limits.MemoryBytes),
			fmt.Sprintf("--memory-swap=%d", limits.MemoryBytes),
		)
	}
	if limits.MaxProcesses > 0 {
		args = append(args, fmt.Sprintf("--pids-limit=%d", limits.MaxProcesses))
	}

	args = append(args,
		"-v", workspacePath+":"+ContainerPath,
		"-w", ContainerPath,
		recipe.Image,
	)

	args = append(args, "sh", "-c", ulimitPrelude(limits)+shellJoin(command))

	return args, nil
}

// ulimitPrelude renders the shell prelude that restricts CPU time, stack
// size, and open-file count before the phase command executes — the caps
// container-level flags do not cover cleanly across runtimes.
func ulimitPrelude(limits execution.Limits) string {
	var b strings.Builder
	if limits.CPUTime > 0 {
		fmt.Fprintf(&b, "ulimit -t %d; ", int64(limits.CPUTime.Seconds()+0.999))
	}
	if limits.StackBytes > 0 {
		fmt.Fprintf(&b, "ulimit -s %d; ", limits.StackBytes/1024)
	}
	if limits.MaxOpenFiles > 0 {
		fmt.Fprintf(&b, "ulimit -n %d; ", limits.MaxOpenFiles)
	}
	b.WriteString("exec ")
	return b.String()
}

// shellJoin renders command as a single-quoted shell word sequence safe to
// embed in the `sh -c` prelude above.
func shellJoin(command []string) string {
	quoted := make([]string, len(command))
	for i, word := range command {
		quoted[i] = shellQuote(word)
	}
	return strings.Join(quoted, " ")
}

func shellQuote(word string) string {
	return "'" + strings.ReplaceAll(word, "'", `'"'"'`) + "'"
}

// FormatWallTimeoutSeconds formats a wall-time limit as decimal seconds
// with millisecond precision (10s becomes "10.000"). Unlike the CPU time
// in ulimitPrelude it is not rounded to whole seconds. The executor does
// not call it; it enforces the wall time with a context deadline.
func FormatWallTimeoutSeconds(limits execution.Limits) string {
	return strconv.FormatFloat(limits.WallTime.Seconds(), 'f', 3, 64)
}
