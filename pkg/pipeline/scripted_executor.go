package pipeline

import (
	"context"
	"iter"
)

// ScriptStep is one scripted action: store Writes in session state, then
// yield Event, or fail with Err instead.
type ScriptStep struct {
	Event  Event
	Writes map[string]string
	Err    error
}

// ScriptedExecutor replays a fixed list of steps. It ignores the invocation
// apart from writing to its state.
type ScriptedExecutor struct {
	Steps []ScriptStep
}

var _ Executor = (*ScriptedExecutor)(nil)

func NewScriptedExecutor(steps ...ScriptStep) *ScriptedExecutor {
	return &ScriptedExecutor{Steps: steps}
}

func (s *ScriptedExecutor) Execute(ctx context.Context, inv Invocation) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		for _, step := range s.Steps {
			if err := ctx.Err(); err != nil {
				yield(Event{}, err)
				return
			}
			for k, v := range step.Writes {
				inv.State.Set(k, v)
			}
			if step.Err != nil {
				yield(Event{}, step.Err)
				return
			}
			if !yield(step.Event, nil) {
				return
			}
		}
	}
}

// Say scripts a final text event without touching state.
func Say(stageID, text string) ScriptStep {
	return ScriptStep{Event: TextEvent(stageID, text)}
}

// Answer scripts a stage storing text under key and announcing it.
func Answer(stageID, key, text string) ScriptStep {
	return ScriptStep{
		Event:  TextEvent(stageID, text),
		Writes: map[string]string{key: text},
	}
}

// Stream scripts an incremental text event.
func Stream(stageID, text string) ScriptStep {
	return ScriptStep{Event: PartialEvent(stageID, text)}
}

// Fail scripts an executor failure.
func Fail(err error) ScriptStep {
	return ScriptStep{Err: err}
}
