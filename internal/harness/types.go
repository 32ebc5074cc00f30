package harness

import (
	"github.com/roach88/tiebreak/internal/engine"
	"github.com/roach88/tiebreak/internal/ir"
)

// TraceEvent is one journaled operation.
type TraceEvent struct {
	Revision int64          `json:"revision"`
	Op       string         `json:"op"`
	Args     map[string]any `json:"args,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step and expectation held.
	Pass bool `json:"pass"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Trace lists the operations that changed the tournament, in order.
	Trace []TraceEvent `json:"trace"`

	// Tournament is the final snapshot.
	Tournament ir.Tournament `json:"tournament"`

	// Standings ranks the final snapshot's players.
	Standings []engine.Standing `json:"standings"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
		Trace:  []TraceEvent{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a journaled operation.
func (r *Result) AddTrace(op ir.Operation) {
	r.Trace = append(r.Trace, TraceEvent{
		Revision: op.Revision,
		Op:       op.Op,
		Args:     op.Args,
	})
}
