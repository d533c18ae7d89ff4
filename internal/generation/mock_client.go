package generation

import (
	"context"
	"sync"
)

// MockClient is a deterministic Client for tests. It returns canned responses
// in FIFO order, repeating the last one once the queue is drained, and records
// every prompt it receives.
type MockClient struct {
	mu        sync.Mutex
	responses []MockResponse
	Prompts   []string

	// Block, when non-nil, is received from before answering so tests can hold
	// a call in flight.
	Block chan struct{}
}

// MockResponse is a canned result for MockClient.
type MockResponse struct {
	Text string
	Err  error
}

// NewMockClient creates a MockClient with the given canned responses.
func NewMockClient(responses ...MockResponse) *MockClient {
	return &MockClient{responses: responses}
}

// Generate implements Client.
func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)
	if len(m.responses) == 0 {
		return "", ErrGenerationFailed
	}

	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return resp.Text, resp.Err
}

// Model implements Client.
func (m *MockClient) Model() string { return "mock" }

// Calls returns the number of prompts received so far.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}
