package reasoning

import (
	"context"
	"sync"
)

// MockService is a lightweight in-memory Service for tests. It records every
// request and replays a scripted sequence of verdicts and errors.
type MockService struct {
	mu       sync.Mutex
	requests []Request
	verdicts []*Verdict
	errs     []error
	calls    int
}

// NewMockService constructs an empty mock; script it with AddVerdict/AddError.
func NewMockService() *MockService { return &MockService{} }

// AddVerdict appends a canned successful response.
func (m *MockService) AddVerdict(v *Verdict) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verdicts = append(m.verdicts, v)
	m.errs = append(m.errs, nil)
}

// AddError appends a canned failure.
func (m *MockService) AddError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verdicts = append(m.verdicts, nil)
	m.errs = append(m.errs, err)
}

// Evaluate implements Service: replays the script in order, repeating the
// last entry once exhausted.
func (m *MockService) Evaluate(ctx context.Context, req Request) (*Verdict, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if len(m.verdicts) == 0 {
		return defaultMockVerdict(), nil
	}
	i := m.calls
	if i >= len(m.verdicts) {
		i = len(m.verdicts) - 1
	}
	m.calls++
	if m.errs[i] != nil {
		return nil, m.errs[i]
	}
	return m.verdicts[i], nil
}

// Info implements Service.
func (m *MockService) Info() Info { return Info{Name: "mock", Provider: "mock"} }

// Requests returns a copy of all requests seen so far.
func (m *MockService) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Calls returns the number of Evaluate invocations.
func (m *MockService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func defaultMockVerdict() *Verdict {
	return &Verdict{
		Consensus:          "CLEAR",
		RecommendationType: "STAY_OUT",
		DriverInstruction:  "Hold position, maintain pace.",
		PitCrewInstruction: "No action required.",
		Reasoning:          "Mock verdict.",
		Urgency:            "LOW",
		Confidence:         0.9,
	}
}
