// Package limits implements spec.md's Resource-Limit Model (C2): merging a
// per-request override over a base Limits value and validating the result
// against host-configured ceilings.
package limits

import (
	"fmt"

	"codexec/internal/domain/execution"
)

// Ceilings bounds how far a per-test override may reduce wall time and
// memory. Per spec.md §3, overrides may only lower these two fields below
// the configured ceiling; every other field is taken from the override
// verbatim when present.
type Ceilings struct {
	MaxWallTime    execution.Limits
	MaxMemoryBytes int64
}

// DefaultCeilings mirrors execution.DefaultLimits: the global defaults
// double as the host ceilings unless the operator configures tighter
// per-test maximums.
func DefaultCeilings() Ceilings {
	d := execution.DefaultLimits()
	return Ceilings{MaxWallTime: d, MaxMemoryBytes: d.MemoryBytes}
}

// Merge overlays override on top of base: fields present (non-zero) in
// override replace the corresponding field in base. A nil override
// returns base unchanged.
func Merge(base execution.Limits, override *execution.Limits) execution.Limits {
	if override == nil {
		return base
	}

	merged := base
	if override.CPUTime > 0 {
		merged.CPUTime = override.CPUTime
	}
	if override.WallTime > 0 {
		merged.WallTime = override.WallTime
	}
	if override.MemoryBytes > 0 {
		merged.MemoryBytes = override.MemoryBytes
	}
	if override.StackBytes > 0 {
		merged.StackBytes = override.StackBytes
	}
	if override.MaxProcesses > 0 {
		merged.MaxProcesses = override.MaxProcesses
	}
	if override.MaxOpenFiles > 0 {
		merged.MaxOpenFiles = override.MaxOpenFiles
	}
	// NetworkAllowed is never taken from an override: user code never
	// gets network, regardless of what a request asks for.
	merged.NetworkAllowed = false

	return merged
}

// CompileLimits returns the fixed resource budget applied to a recipe's
// compile step. It is generous relative to the default run budget and is
// never taken from a caller's request: compilation never counts against
// the submitter's run-time budget.
func CompileLimits() execution.Limits {
	return execution.Limits{
		CPUTime:      20 * execution.DefaultLimits().CPUTime,
		WallTime:     3 * execution.DefaultLimits().WallTime,
		MemoryBytes:  4 * execution.DefaultLimits().MemoryBytes,
		StackBytes:   execution.DefaultLimits().StackBytes,
		MaxProcesses: 4 * execution.DefaultLimits().MaxProcesses,
		MaxOpenFiles: execution.DefaultLimits().MaxOpenFiles,
	}
}

// OutOfRangeError reports which Limits field exceeded its ceiling.
type OutOfRangeError struct {
	Field string
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("limits: field %q exceeds configured ceiling", e.Field)
}

// Validate enforces cpu_time <= wall_time and the wall-time/memory
// ceilings from spec.md §3. It returns an *OutOfRangeError wrapping
// execution.ErrLimitOutOfRange on violation.
func Validate(l execution.Limits, ceilings Ceilings) error {
	if l.CPUTime > l.WallTime {
		return fmt.Errorf("%w: %w", execution.ErrLimitOutOfRange, &OutOfRangeError{Field: "cpu_time"})
	}
	if ceilings.MaxWallTime.WallTime > 0 && l.WallTime > ceilings.MaxWallTime.WallTime {
		return fmt.Errorf("%w: %w", execution.ErrLimitOutOfRange, &OutOfRangeError{Field: "wall_time"})
	}
	if ceilings.MaxMemoryBytes > 0 && l.MemoryBytes > ceilings.MaxMemoryBytes {
		return fmt.Errorf("%w: %w", execution.ErrLimitOutOfRange, &OutOfRangeError{Field: "memory_bytes"})
	}
	return nil
}
