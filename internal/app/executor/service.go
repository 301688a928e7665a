// Package executor coordinates script execution pulled from a producer
// (the Kafka consumer in production, a fake in tests) through an engine,
// bounding how many submissions run at once.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"codexec/internal/domain/execution"
	"codexec/internal/gate"
	"codexec/internal/ports"
)

// Service coordinates script execution through an engine dependency.
type Service struct {
	engine ports.Engine
	gate   *gate.Gate
}

// NewService constructs a Service. maxParallel bounds concurrent
// executions; a non-positive value falls back to gate.DefaultMaxConcurrent.
func NewService(engine ports.Engine, maxParallel int) *Service {
	return &Service{engine: engine, gate: gate.New(maxParallel)}
}

// ExecuteFromProducer pulls scripts from the supplied producer and runs
// them with bounded parallelism.
//
// If maxScripts is greater than zero the execution stops after the
// specified number of scripts has been processed. Otherwise it keeps
// consuming until the context is cancelled or the producer signals
// completion via io.EOF.
//
// When onReport is provided it is invoked after every script execution
// with the corresponding run report.
func (s *Service) ExecuteFromProducer(
	ctx context.Context,
	producer ports.ScriptProducer,
	maxScripts int,
	onReport func(execution.RunReport),
) error {
	var wg sync.WaitGroup
	processed := 0

	finish := func(err error) error {
		wg.Wait()
		return err
	}

	for {
		if maxScripts > 0 && processed >= maxScripts {
			return finish(nil)
		}

		script, err := producer.NextScript(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
				return finish(nil)
			}
			return finish(fmt.Errorf("get next script: %w", err))
		}

		release, err := s.gate.Acquire(ctx)
		if err != nil {
			return finish(nil)
		}

		wg.Add(1)
		processed++
		go func(script execution.Script) {
			defer wg.Done()
			defer release()

			report := s.engine.ExecuteReport(ctx, script)
			if onReport != nil {
				onReport(report)
			}
		}(script)
	}
}
