package kafka

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"codexec/internal/domain/execution"
)

const (
	messageTypeScript = "script"
	messageTypeDone   = "done"
)

type scriptEnvelope struct {
	Type     string           `json:"type"`
	ID       string           `json:"id"`
	Language string           `json:"language"`
	Source   string           `json:"source"`
	Stdin    string           `json:"stdin,omitempty"`
	Limits   *scriptLimits    `json:"limits,omitempty"`
	Tests    []scriptTestCase `json:"tests,omitempty"`
}

type scriptLimits struct {
	CPUTimeMs    int64 `json:"cpu_time_ms,omitempty"`
	WallTimeMs   int64 `json:"wall_time_ms,omitempty"`
	MemoryBytes  int64 `json:"memory_bytes,omitempty"`
	StackBytes   int64 `json:"stack_bytes,omitempty"`
	MaxProcesses int   `json:"max_processes,omitempty"`
	MaxOpenFiles int   `json:"max_open_files,omitempty"`
}

type scriptTestCase struct {
	Name           string  `json:"name"`
	Input          string  `json:"input"`
	ExpectedOutput *string `json:"expected_output,omitempty"`
}

type resultEnvelope struct {
	ID            string               `json:"id"`
	Status        execution.Status     `json:"status,omitempty"`
	ExitCode      *int64               `json:"exit_code,omitempty"`
	Stdout        string               `json:"stdout,omitempty"`
	Stderr        string               `json:"stderr,omitempty"`
	WallElapsedMs *int64               `json:"wall_elapsed_ms,omitempty"`
	Error         string               `json:"error,omitempty"`
	Tests         []testResultEnvelope `json:"tests,omitempty"`
	Timestamp     time.Time            `json:"timestamp"`
}

type testResultEnvelope struct {
	Name          string           `json:"name"`
	Passed        bool             `json:"passed"`
	Status        execution.Status `json:"status,omitempty"`
	ExitCode      int64            `json:"exit_code"`
	WallElapsedMs int64            `json:"wall_elapsed_ms"`
	Stdout        string           `json:"stdout,omitempty"`
	Stderr        string           `json:"stderr,omitempty"`
	Expected      *string          `json:"expected_output,omitempty"`
	Error         string           `json:"error,omitempty"`
}

func decodeScriptMessage(msg kafkago.Message) (execution.Script, error) {
	var envelope scriptEnvelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		return execution.Script{}, fmt.Errorf("decode message: %w", err)
	}

	msgType := envelope.Type
	if msgType == "" {
		msgType = messageTypeScript
	}

	switch msgType {
	case messageTypeScript:
		return envelope.toScript(msg)
	case messageTypeDone:
		return execution.Script{}, io.EOF
	default:
		return execution.Script{}, fmt.Errorf("unknown message type %q", msgType)
	}
}

func (e scriptEnvelope) toScript(msg kafkago.Message) (execution.Script, error) {
	if e.Source == "" {
		return execution.Script{}, fmt.Errorf("script message missing source")
	}
	if e.Language == "" {
		return execution.Script{}, fmt.Errorf("script message missing language")
	}

	scriptID := e.ID
	if scriptID == "" {
		scriptID = string(msg.Key)
	}
	if scriptID == "" {
		scriptID = fmt.Sprintf("%s:%d", msg.Topic, msg.Offset)
	}

	return execution.Script{
		ID:       scriptID,
		Language: execution.Language(e.Language),
		Source:   e.Source,
		Stdin:    e.Stdin,
		Limits:   e.toLimits(),
		Tests:    e.toTests(),
	}, nil
}

func (e scriptEnvelope) toLimits() execution.Limits {
	if e.Limits == nil {
		return execution.Limits{}
	}

	return execution.Limits{
		CPUTime:      time.Duration(e.Limits.CPUTimeMs) * time.Millisecond,
		WallTime:     time.Duration(e.Limits.WallTimeMs) * time.Millisecond,
		MemoryBytes:  e.Limits.MemoryBytes,
		StackBytes:   e.Limits.StackBytes,
		MaxProcesses: e.Limits.MaxProcesses,
		MaxOpenFiles: e.Limits.MaxOpenFiles,
	}
}

func (e scriptEnvelope) toTests() []execution.TestCase {
	if len(e.Tests) == 0 {
		return nil
	}

	tests := make([]execution.TestCase, len(e.Tests))
	for idx, test := range e.Tests {
		name := test.Name
		if name == "" {
			name = fmt.Sprintf("case-%d", idx+1)
		}
		tests[idx] = execution.TestCase{
			Name:           name,
			Input:          test.Input,
			ExpectedOutput: test.ExpectedOutput,
		}
	}
	return tests
}

func encodeRunReport(report execution.RunReport) ([]byte, error) {
	payload, err := json.Marshal(makeResultEnvelope(report))
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return payload, nil
}

func makeResultEnvelope(report execution.RunReport) resultEnvelope {
	var exitCode *int64
	var wallElapsedMs *int64
	var stdout string
	var stderr string
	var status execution.Status

	if report.Result != nil {
		exit := report.Result.ExitCode
		exitCode = &exit

		elapsed := report.Result.WallElapsed.Milliseconds()
		wallElapsedMs = &elapsed

		stdout = report.Result.Stdout
		stderr = report.Result.Stderr
		status = report.Result.Status
	}

	errMsg := ""
	if report.Err != nil {
		errMsg = report.Err.Error()
	}

	return resultEnvelope{
		ID:            report.Script.ID,
		Status:        status,
		ExitCode:      exitCode,
		Stdout:        stdout,
		Stderr:        stderr,
		WallElapsedMs: wallElapsedMs,
		Error:         errMsg,
		Tests:         makeTestResultEnvelopes(report.PerTest),
		Timestamp:     time.Now().UTC(),
	}
}

func makeTestResultEnvelopes(perTest []execution.TestResult) []testResultEnvelope {
	if len(perTest) == 0 {
		return nil
	}

	tests := make([]testResultEnvelope, 0, len(perTest))
	for _, tr := range perTest {
		tests = append(tests, testResultEnvelope{
			Name:          tr.Name,
			Passed:        tr.Passed,
			Status:        tr.Status,
			ExitCode:      tr.Outcome.ExitCode,
			WallElapsedMs: tr.Outcome.WallElapsed.Milliseconds(),
			Stdout:        tr.Actual,
			Stderr:        tr.Outcome.Stderr,
			Expected:      tr.Expected,
			Error:         tr.Message,
		})
	}
	return tests
}
