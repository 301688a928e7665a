package producer

import (
	"context"
	"io"
	"sync"
	"time"

	"codexec/internal/domain/execution"
	"codexec/internal/ports"
)

// Service implements ports.ScriptProducer by returning a fixed catalogue of sample scripts
// spanning a handful of the registry's supported languages. It is primarily useful for
// smoke-testing a deployment without wiring a real Kafka topic.
type Service struct {
	mu      sync.Mutex
	scripts []execution.Script
	index   int
}

var _ ports.ScriptProducer = (*Service)(nil)

// NewService builds a new producer service with a default script catalogue.
func NewService() *Service {
	return &Service{
		scripts: []execution.Script{
			{
				ID:       "hello",
				Language: execution.LanguagePython,
				Source:   "print('Hello from the sandbox!')\n",
			},
			{
				ID:       "time",
				Language: execution.LanguagePython,
				Source:   "import datetime\nprint('Current time:', datetime.datetime.now(datetime.timezone.utc).isoformat())\n",
			},
			{
				ID:       "fizzbuzz-go",
				Language: execution.LanguageGo,
				Source: `package main

import "fmt"

func main() {
	for i := 1; i <= 15; i++ {
		switch {
		case i%15 == 0:
			fmt.Println("FizzBuzz")
		case i%3 == 0:
			fmt.Println("Fizz")
		case i%5 == 0:
			fmt.Println("Buzz")
		default:
			fmt.Println(i)
		}
	}
}
`,
			},
			{
				ID:       "sum-c",
				Language: execution.LanguageC,
				Source: `#include <stdio.h>

int main(void) {
	int sum = 0;
	for (int i = 1; i <= 100; i++) {
		sum += i;
	}
	printf("sum: %d\n", sum);
	return 0;
}
`,
			},
		},
	}
}

// NextScript returns the next available sample script for execution.
func (s *Service) NextScript(ctx context.Context) (execution.Script, error) {
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

// AddScript allows extending the producer catalogue at runtime.
func (s *Service) AddScript(script execution.Script) {
	if script.ID == "" {
		script.ID = time.Now().UTC().Format(time.RFC3339Nano)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.scripts = append(s.scripts, script)
}
