package execution

// Script is a submission's program: a language token, its source, and the
// caller's resource limit overrides.
type Script struct {
	ID       string
	Language Language
	Source   string
	Stdin    string
	Limits   Limits
	Tests    []TestCase
}

// RunReport captures the outcome of executing a Script, for the
// collaborator transport (kafka consumer/publisher) that predates the
// harness. Result is always the flattened, single-verdict view; PerTest
// is populated alongside it when the script carried test cases, so a
// transport that wants case-level detail doesn't have to re-derive it
// from Result.
type RunReport struct {
	Script  Script
	Result  *Result
	PerTest []TestResult
	Err     error
}
