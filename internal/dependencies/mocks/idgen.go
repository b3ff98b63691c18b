package mocks

import (
	"fmt"

	"github.com/mcoot/wyrgame/internal/dependencies/idgen"
)

// MockIDs is a mock implementation of idgen.Generator for testing
type MockIDs struct {
	// Results is a queue of IDs to return from NewID
	Results []string
	index   int
	counter int
}

// Ensure MockIDs implements Generator
var _ idgen.Generator = (*MockIDs)(nil)

// NewMockIDs creates a new MockIDs
func NewMockIDs() *MockIDs {
	return &MockIDs{}
}

// NewID returns the next queued result, or a sequential ID once the queue is drained
func (g *MockIDs) NewID(prefix string) string {
	if g.index < len(g.Results) {
		result := g.Results[g.index]
		g.index++
		return result
	}
	g.counter++
	return fmt.Sprintf("%s%d", prefix, g.counter)
}

// Queue adds values to the result queue
func (g *MockIDs) Queue(values ...string) {
	g.Results = append(g.Results, values...)
}
