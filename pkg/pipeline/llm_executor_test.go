package pipeline

import (
	"context"
	"errors"
	"testing"

	"ai-permit-planner-be/pkg/llm"
	"ai-permit-planner-be/pkg/stage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	replies []string
	failAt  int
	calls   [][]llm.Message
}

func (f *fakeProvider) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	f.calls = append(f.calls, history)
	n := len(f.calls)
	if f.failAt > 0 && n == f.failAt {
		return "", errors.New("model overloaded")
	}
	return f.replies[(n-1)%len(f.replies)], nil
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func TestLLMExecutorReducedPipeline(t *testing.T) {
	catalog := stage.MustDefault()
	provider := &fakeProvider{replies: []string{
		`{"intent":"open_bakery","confidence":0.7}`,
		`{"summary":"A bakery is feasible.","confidence":0.7}`,
	}}
	r := NewRunner(NewLLMExecutor(provider, catalog), catalog, WithReducedMode(func() bool { return true }))

	complete, err := r.RunToCompletion(context.Background(), RunRequest{Text: "open a bakery"})
	require.NoError(t, err)
	assert.Equal(t, "A bakery is feasible.", complete.Result["summary"])

	require.Len(t, provider.calls, 2)
	second := provider.calls[1]
	assert.Contains(t, second[0].Content, "Quick Advisor")
	assert.Contains(t, second[1].Content, "open_bakery")
}

func TestLLMExecutorFailureFallsBack(t *testing.T) {
	catalog := stage.MustDefault()
	provider := &fakeProvider{replies: []string{`{"intent":"open_bakery"}`}, failAt: 2}
	r := NewRunner(NewLLMExecutor(provider, catalog), catalog)

	complete, err := r.RunToCompletion(context.Background(), RunRequest{Text: "open a bakery"})
	require.NoError(t, err)
	assert.Equal(t, "fallback", complete.Result["source"])
	assert.Len(t, provider.calls, 2)
}
