// Package testutil provides thread-safe fakes shared by package tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// MockIdleSource reports the time since its last simulated input, measured
// on a (usually fake) clock. Advancing the clock makes the user idler;
// ResetInput simulates a keystroke.
type MockIdleSource struct {
	mu          sync.Mutex
	clock       clock.PassiveClock
	lastInput   time.Time
	err         error
	calls       int
	beforeQuery func(call int)
}

// NewMockIdleSource creates a source whose user just typed something.
func NewMockIdleSource(clk clock.PassiveClock) *MockIdleSource {
	return &MockIdleSource{
		clock:     clk,
		lastInput: clk.Now(),
	}
}

// Idle implements interfaces.IdleSource.
func (m *MockIdleSource) Idle(_ context.Context) (time.Duration, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	hook := m.beforeQuery
	m.mu.Unlock()

	if hook != nil {
		hook(call)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return 0, m.err
	}
	return m.clock.Since(m.lastInput), nil
}

// ResetInput records user input at the current clock time.
func (m *MockIdleSource) ResetInput() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastInput = m.clock.Now()
}

// SetIdle makes the user appear idle for d as of now.
func (m *MockIdleSource) SetIdle(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastInput = m.clock.Now().Add(-d)
}

// SetError makes subsequent queries fail with err.
func (m *MockIdleSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// BeforeQuery installs a hook run at the start of every query with the
// 1-based call number. The hook may call ResetInput, SetIdle or SetError.
func (m *MockIdleSource) BeforeQuery(fn func(call int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.beforeQuery = fn
}

// Calls returns the number of queries made so far.
func (m *MockIdleSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// SequenceIdleSource returns a scripted series of samples, repeating the
// last one once the script runs out.
type SequenceIdleSource struct {
	mu      sync.Mutex
	samples []time.Duration
	calls   int
}

// NewSequenceIdleSource creates a scripted source.
func NewSequenceIdleSource(samples ...time.Duration) *SequenceIdleSource {
	return &SequenceIdleSource{samples: samples}
}

// Idle implements interfaces.IdleSource.
func (s *SequenceIdleSource) Idle(_ context.Context) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.calls
	s.calls++
	if len(s.samples) == 0 {
		return 0, nil
	}
	if i >= len(s.samples) {
		i = len(s.samples) - 1
	}
	return s.samples[i], nil
}

// Calls returns the number of queries made so far.
func (s *SequenceIdleSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
