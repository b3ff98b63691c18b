package factory

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcoot/wyrgame/internal/dependencies/mocks"
	"github.com/mcoot/wyrgame/internal/storage/memory"
	"github.com/mcoot/wyrgame/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MockIDs   *mocks.MockIDs
	Registry  *prometheus.Registry
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithConfig(Config{})
}

// NewTestAppWithConfig is NewTestApp with engine tuning applied
func NewTestAppWithConfig(cfg Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 4, 12, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDs()
	registry := prometheus.NewRegistry()

	app := newWithDependencies(store, mockClock, mockIDs, registry, cfg, testutil.NopLogger())
	app.Gatherer = registry
	app.Location = time.UTC

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MockIDs:   mockIDs,
		Registry:  registry,
	}
}
