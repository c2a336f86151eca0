package git

import "context"

// StepSource produces history steps newest first, starting at the commit
// the head snapshot belongs to. Sources are lazy and single use: nothing is
// read before the first Next, and Close must be called once the caller is
// done, whether the walk was exhausted, stopped early or failed.
type StepSource interface {
	// Next returns the next step, or io.EOF once history is exhausted.
	Next(ctx context.Context, pending PendingPaths) (*ChangeStep, error)
	Close() error
}

// Compile-time interface conformance checks.
var (
	_ StepSource = (*TreeWalker)(nil)
	_ StepSource = (*LogStream)(nil)
)
