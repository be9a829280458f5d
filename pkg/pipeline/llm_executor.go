package pipeline

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"ai-permit-planner-be/pkg/llm"
	"ai-permit-planner-be/pkg/stage"
)

const systemPreamble = "You are one member of a team advising a small-business owner on opening a new business. " +
	"Other team members have already contributed the findings shown below. Stay within your role."

// LLMExecutor runs each stage as one chat call to a model backend. Stages
// run in order and each sees the request plus every earlier stage's output.
type LLMExecutor struct {
	provider llm.LLMProvider
	catalog  *stage.Catalog
	opts     []llm.Option
}

var _ Executor = (*LLMExecutor)(nil)

func NewLLMExecutor(provider llm.LLMProvider, catalog *stage.Catalog, opts ...llm.Option) *LLMExecutor {
	return &LLMExecutor{
		provider: provider,
		catalog:  catalog,
		opts:     opts,
	}
}

func (e *LLMExecutor) Execute(ctx context.Context, inv Invocation) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		var done []stage.Stage
		for _, s := range e.catalog.StagesOf(inv.Pipeline) {
			if err := ctx.Err(); err != nil {
				yield(Event{}, err)
				return
			}
			if !yield(PartialEvent(s.ID, fmt.Sprintf("%s is thinking...", s.DisplayName)), nil) {
				return
			}

			opts := append([]llm.Option{llm.WithTemperature(0.2), llm.WithJSONMode()}, e.opts...)
			out, err := e.provider.Chat(ctx, stageMessages(s, inv, done), opts...)
			if err != nil {
				yield(Event{}, fmt.Errorf("stage %s: %w", s.ID, err))
				return
			}

			inv.State.Set(s.OutputKey, out)
			done = append(done, s)
			if !yield(TextEvent(s.ID, out), nil) {
				return
			}
		}
	}
}

func stageMessages(s stage.Stage, inv Invocation, done []stage.Stage) []llm.Message {
	var sb strings.Builder
	sb.WriteString("Request: ")
	sb.WriteString(inv.Request)
	for _, prev := range done {
		if out, ok := inv.State.Get(prev.OutputKey); ok {
			fmt.Fprintf(&sb, "\n\n%s (%s):\n%s", prev.DisplayName, prev.OutputKey, out)
		}
	}
	return []llm.Message{
		{Role: "system", Content: systemPreamble + "\nYour role: " + s.DisplayName + ". " + s.Instruction},
		{Role: "user", Content: sb.String()},
	}
}
