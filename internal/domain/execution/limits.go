package execution

import "time"

// Limits is an immutable, composable bundle of resource boundaries applied
// to a single execution. A field left at its zero value means "inherit
// from whatever Limits it is merged over" — see the limits package for the
// merge and validation policy.
type Limits struct {
	CPUTime        time.Duration
	WallTime       time.Duration
	MemoryBytes    int64
	StackBytes     int64
	MaxProcesses   int
	MaxOpenFiles   int
	NetworkAllowed bool
}

// DefaultLimits returns the host-configured global defaults: 5s CPU, 10s
// wall, 128MiB memory, 64MiB stack, 50 processes, 100 open files, no
// network.
func DefaultLimits() Limits {
	return Limits{
		CPUTime:        5 * time.Second,
		WallTime:       10 * time.Second,
		MemoryBytes:    128 * 1024 * 1024,
		StackBytes:     64 * 1024 * 1024,
		MaxProcesses:   50,
		MaxOpenFiles:   100,
		NetworkAllowed: false,
	}
}
