package enrollsync

import (
	"sync"

	"github.com/agentstation/enrollsync/pkg/matchcase"
	"github.com/agentstation/enrollsync/pkg/reconcile"
)

// Hook function types for matching events
type (
	// CaseMatchedHook is called each time a case classifies a record
	CaseMatchedHook func(c *matchcase.Case)

	// StudentProcessedHook is called after each student's records are matched
	StudentProcessedHook func()
)

// Hooks registers progress callbacks.
type Hooks interface {
	OnCaseMatched(fn CaseMatchedHook)
	OnStudentProcessed(fn StudentProcessedHook)
}

var _ reconcile.Observer = (*hooks)(nil)

// hooks manages event callbacks for a merge
type hooks struct {
	mu                 sync.RWMutex
	onCaseMatched      []CaseMatchedHook
	onStudentProcessed []StudentProcessedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnCaseMatched registers a callback for classified records
func (h *hooks) OnCaseMatched(fn CaseMatchedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onCaseMatched = append(h.onCaseMatched, fn)
}

// OnStudentProcessed registers a callback for finished students
func (h *hooks) OnStudentProcessed(fn StudentProcessedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onStudentProcessed = append(h.onStudentProcessed, fn)
}

// CaseMatched implements reconcile.Observer.
func (h *hooks) CaseMatched(c *matchcase.Case) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onCaseMatched {
		fn(c)
	}
}

// StudentProcessed implements reconcile.Observer.
func (h *hooks) StudentProcessed() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onStudentProcessed {
		fn()
	}
}

// OnCaseMatched registers a callback on the client.
func (c *client) OnCaseMatched(fn CaseMatchedHook) {
	c.hooks.OnCaseMatched(fn)
}

// OnStudentProcessed registers a callback on the client.
func (c *client) OnStudentProcessed(fn StudentProcessedHook) {
	c.hooks.OnStudentProcessed(fn)
}
