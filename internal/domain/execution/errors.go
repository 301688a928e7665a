package execution

import "errors"

// Sentinel errors for the error taxonomy in spec.md §7. Collaborators
// compare with errors.Is rather than matching strings, the way the
// teacher's infra layer checks client.IsErrNotFound.
var (
	ErrUnsupportedLanguage  = errors.New("execution: unsupported language")
	ErrLimitOutOfRange      = errors.New("execution: limit out of range")
	ErrTestSourceFetchFailed = errors.New("execution: test source fetch failed")
	ErrWorkspaceCreateFailed = errors.New("execution: workspace create failed")
	ErrWorkspaceWriteFailed  = errors.New("execution: workspace write failed")
	ErrSpawnFailed           = errors.New("execution: spawn failed")
	ErrCancelled             = errors.New("execution: cancelled")
)
