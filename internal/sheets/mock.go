package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/spent/internal/model"
)

// MockWriter is a mock implementation of service.ReportWriter for testing.
type MockWriter struct {
	WriteFunc  func(ctx context.Context, report *model.MonthReport) error
	LastReport *model.MonthReport
	WriteCalls int
	mu         sync.Mutex
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Write records the report and delegates to WriteFunc when set.
func (m *MockWriter) Write(ctx context.Context, report *model.MonthReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCalls++
	m.LastReport = report
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, report)
	}
	return nil
}

// Calls returns how many times Write was called.
func (m *MockWriter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.WriteCalls
}

// Last returns the most recently written report.
func (m *MockWriter) Last() *model.MonthReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LastReport
}
