package engine

import (
	"context"
	"sync"
)

// MockResponse is a canned result for MockEngine.
type MockResponse struct {
	Warnings []string
	Report   string
	Err      error
}

// MockEngine is a deterministic Engine for tests. It returns canned
// responses in FIFO order and records every input.
type MockEngine struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Input
}

// NewMockEngine creates a MockEngine with the given canned responses.
func NewMockEngine(responses ...MockResponse) *MockEngine {
	return &MockEngine{responses: responses}
}

// Analyze returns the next canned response, or ErrNoResponse when the
// queue is empty.
func (m *MockEngine) Analyze(_ context.Context, in Input) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, in)

	if len(m.responses) == 0 {
		return nil, ErrNoResponse
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]

	if resp.Err != nil {
		return nil, resp.Err
	}
	return &Result{Warnings: resp.Warnings, Report: resp.Report}, nil
}

// Name returns "mock".
func (m *MockEngine) Name() string { return "mock" }

// AddResponse appends a canned response to the queue.
func (m *MockEngine) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Analyze calls made.
func (m *MockEngine) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
