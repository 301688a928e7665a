// Package inputresolver implements spec.md's External Input Resolver (C8):
// it normalizes the two shapes a test case's input or expected output
// may arrive in — inline text, or a URL to fetch — into the canonical
// execution.TestCase the harness consumes.
//
// The capped-size fetch with io.LimitReader is grounded on the teacher's
// client.go, which caps image-pull response bodies the same way before
// decoding them; a single fetch failure aborting the whole submission
// rather than silently skipping a case follows the teacher's
// fail-the-whole-request posture in service.go.
package inputresolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"codexec/internal/domain/execution"
)

// MaxFetchBytes bounds how much of a URL-sourced test case body is read.
// A response exceeding this is treated as a fetch failure, not silently
// truncated, so a corrupted expectation is never accepted unnoticed.
const MaxFetchBytes = 1 << 20 // 1 MiB

// FetchTimeout bounds how long a single URL fetch may take.
const FetchTimeout = 5 * time.Second

// Source is one of the shapes a test case's input or expected output may
// take in an inbound request. Exactly one field should be set; Inline
// takes precedence if both are somehow populated.
type Source struct {
	Inline *string
	URL    string
}

// RawTestCase is a test case as received from a client, before its input
// and expected-output sources have been resolved to literal strings.
type RawTestCase struct {
	Name           string
	Input          Source
	ExpectedOutput *Source
	LimitsOverride *execution.Limits
}

// Resolver fetches URL-sourced test data over HTTP.
type Resolver struct {
	Client *http.Client
}

// New builds a Resolver with a client bounded by FetchTimeout.
func New() *Resolver {
	return &Resolver{Client: &http.Client{Timeout: FetchTimeout}}
}

// Resolve normalizes every raw case in order. A single source failing to
// fetch aborts the whole call; no case is silently dropped or left with
// partial data.
func (r *Resolver) Resolve(ctx context.Context, raw []RawTestCase) ([]execution.TestCase, error) {
	out := make([]execution.TestCase, 0, len(raw))
	for _, rtc := range raw {
		input, err := r.resolveSource(ctx, rtc.Input)
		if err != nil {
			return nil, fmt.Errorf("%w: case %q input: %w", execution.ErrTestSourceFetchFailed, rtc.Name, err)
		}

		var expected *string
		if rtc.ExpectedOutput != nil {
			value, err := r.resolveSource(ctx, *rtc.ExpectedOutput)
			if err != nil {
				return nil, fmt.Errorf("%w: case %q expected output: %w", execution.ErrTestSourceFetchFailed, rtc.Name, err)
			}
			expected = &value
		}

		out = append(out, execution.TestCase{
			Name:           rtc.Name,
			Input:          input,
			ExpectedOutput: expected,
			LimitsOverride: rtc.LimitsOverride,
		})
	}
	return out, nil
}

func (r *Resolver) resolveSource(ctx context.Context, src Source) (string, error) {
	if src.Inline != nil {
		return *src.Inline, nil
	}
	if src.URL == "" {
		return "", nil
	}
	return r.fetch(ctx, src.URL)
}

func (r *Resolver) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: FetchTimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}

	limited := io.LimitReader(resp.Body, MaxFetchBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	if len(body) > MaxFetchBytes {
		return "", fmt.Errorf("fetching %s: response exceeds %d bytes", url, MaxFetchBytes)
	}
	return string(body), nil
}
