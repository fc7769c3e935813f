package core

import (
	"fmt"
	"sync"
)

// CallBudget tracks laps processed, coordinator invocations and reasoning
// service calls across a race. It exists for efficiency reporting; the only
// enforcement is an optional hard ceiling on service calls (0 = unlimited),
// which the coordinator treats as a signal to fall back, never as a crash.
type CallBudget struct {
	maxServiceCalls int
	laps            int
	invocations     int
	serviceCalls    int
	mu              sync.Mutex
}

// NewCallBudget creates a budget with an optional ceiling on service calls.
// If maxServiceCalls == 0, unlimited calls are allowed.
func NewCallBudget(maxServiceCalls int) *CallBudget {
	return &CallBudget{maxServiceCalls: maxServiceCalls}
}

// LapProcessed records one completed tick.
func (b *CallBudget) LapProcessed() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.laps++
}

// InvocationMade records one arbiter-approved coordinator invocation.
func (b *CallBudget) InvocationMade() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.invocations++
}

// ServiceCallMade increments the reasoning-service call counter and returns an
// error once the ceiling is exceeded.
func (b *CallBudget) ServiceCallMade() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.serviceCalls++
	if b.maxServiceCalls > 0 && b.serviceCalls > b.maxServiceCalls {
		return fmt.Errorf("exceeded max reasoning service calls: %d", b.maxServiceCalls)
	}
	return nil
}

// Laps returns the number of laps processed.
func (b *CallBudget) Laps() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.laps
}

// Invocations returns the number of coordinator invocations made.
func (b *CallBudget) Invocations() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.invocations
}

// ServiceCalls returns the number of reasoning-service calls made.
func (b *CallBudget) ServiceCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.serviceCalls
}

// Remaining returns how many service calls are left before the ceiling,
// or -1 when unlimited.
func (b *CallBudget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.maxServiceCalls == 0 {
		return -1
	}
	return b.maxServiceCalls - b.serviceCalls
}

// Efficiency returns coordinator invocations per lap processed.
func (b *CallBudget) Efficiency() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.laps == 0 {
		return 0
	}
	return float64(b.invocations) / float64(b.laps)
}
