package ports

import (
	"context"

	"codexec/internal/domain/execution"
)

// Engine executes a submitted Script end to end — compiling if the
// language requires it, running its test cases if it has any — and
// reports the outcome as a RunReport. It narrows internal/engine.Engine to
// the one method the collaborator layer needs, the way the teacher's
// Runner interface narrowed its Docker-backed runtime.
type Engine interface {
	ExecuteReport(ctx context.Context, script execution.Script) execution.RunReport
}
