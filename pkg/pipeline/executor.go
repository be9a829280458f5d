package pipeline

import (
	"context"
	"iter"

	"ai-permit-planner-be/pkg/stage"
)

// Invocation is everything an executor needs for one run.
type Invocation struct {
	SessionID   string
	RequesterID string
	Request     string
	Pipeline    stage.Pipeline
	State       *SessionState
}

// Executor runs the stages of a pipeline and reports progress as events.
//
// Events are yielded in execution order. A non-nil error ends the sequence.
// Stages record their output in inv.State under their output key before
// yielding their final event. When yield returns false the executor must
// stop without starting further stages.
type Executor interface {
	Execute(ctx context.Context, inv Invocation) iter.Seq2[Event, error]
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, inv Invocation) iter.Seq2[Event, error]

func (f ExecutorFunc) Execute(ctx context.Context, inv Invocation) iter.Seq2[Event, error] {
	return f(ctx, inv)
}
