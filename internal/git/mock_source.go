package git

import (
	"context"
	"io"
)

// MockStepSource is a test double for StepSource.
// It replays predefined steps, filtering each against the pending set the
// way the real sources do, and counts how many steps were requested.
type MockStepSource struct {
	Steps   []ChangeStep
	Error   error // returned instead of the step at index ErrorAt
	ErrorAt int

	Calls  int
	Closed bool
}

// NewMockStepSource creates a MockStepSource replaying steps.
func NewMockStepSource(steps []ChangeStep) *MockStepSource {
	return &MockStepSource{Steps: steps, ErrorAt: -1}
}

// Next returns the next predefined step restricted to pending paths.
func (m *MockStepSource) Next(_ context.Context, pending PendingPaths) (*ChangeStep, error) {
	if m.Closed {
		return nil, io.EOF
	}
	idx := m.Calls
	m.Calls++

	if m.Error != nil && idx == m.ErrorAt {
		return nil, m.Error
	}
	if idx >= len(m.Steps) {
		return nil, io.EOF
	}

	src := m.Steps[idx]
	step := &ChangeStep{Commit: src.Commit}
	for _, p := range src.Paths {
		if pending.Contains(p) {
			step.Paths = append(step.Paths, p)
		}
	}
	return step, nil
}

// Close marks the source as closed.
func (m *MockStepSource) Close() error {
	m.Closed = true
	return nil
}

// Compile-time interface conformance check.
var _ StepSource = (*MockStepSource)(nil)
