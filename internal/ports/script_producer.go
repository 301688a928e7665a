package ports

import (
	"context"

	"codexec/internal/domain/execution"
)

// ScriptProducer yields one submitted Script at a time, in the order they
// were received.
type ScriptProducer interface {
	NextScript(ctx context.Context) (execution.Script, error)
}
