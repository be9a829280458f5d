// Package pipeline drives a stage pipeline through an Executor and turns its
// events into a live sequence of stream items: progress, typing transitions,
// debate messages and a single closing complete item.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"ai-permit-planner-be/pkg/debate"
	"ai-permit-planner-be/pkg/fallback"
	"ai-permit-planner-be/pkg/stage"

	"github.com/google/uuid"
)

const logModule = "PIPELINE"

var (
	// ErrEmptyRequest is returned for request text that is blank after trimming.
	ErrEmptyRequest = errors.New("request text is empty")
	// ErrNoCompletion is returned when the executor finished without the
	// terminal stage answering and without reporting an error.
	ErrNoCompletion = errors.New("pipeline ended without a complete item")
)

// RunRequest is the input of one run.
type RunRequest struct {
	Text        string
	RequesterID string
	SessionID   string
}

// Runner executes pipeline runs. A Runner is immutable after construction and
// safe to share between concurrent runs; every run gets its own state.
type Runner struct {
	executor     Executor
	catalog      *stage.Catalog
	classifier   *debate.Classifier
	reduced      func() bool
	logger       Logger
	observer     Observer
	registry     SessionRegistry
	now          func() time.Time
	newSessionID func() string
}

type RunnerOption func(*Runner)

// WithReducedMode sets the switch selecting the reduced pipeline. It is read
// once at the start of every run.
func WithReducedMode(reduced func() bool) RunnerOption {
	return func(r *Runner) {
		r.reduced = reduced
	}
}

func WithLogger(logger Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

func WithObserver(observer Observer) RunnerOption {
	return func(r *Runner) {
		r.observer = observer
	}
}

func WithSessionRegistry(registry SessionRegistry) RunnerOption {
	return func(r *Runner) {
		r.registry = registry
	}
}

// WithClock overrides the time source for run and debate timestamps.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

func WithSessionIDGenerator(gen func() string) RunnerOption {
	return func(r *Runner) {
		r.newSessionID = gen
	}
}

func NewRunner(executor Executor, catalog *stage.Catalog, opts ...RunnerOption) *Runner {
	r := &Runner{
		executor:     executor,
		catalog:      catalog,
		reduced:      func() bool { return false },
		logger:       nopLogger{},
		observer:     ObserverFunc(func(context.Context, RunSummary) {}),
		registry:     nopRegistry{},
		now:          time.Now,
		newSessionID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.classifier = debate.NewClassifier(catalog, debate.WithClock(r.now))
	return r
}

// Run starts a run when the returned sequence is ranged over. Items arrive in
// executor order and the last item of a finished run is always KindComplete.
// Breaking out of the loop abandons the run and stops the executor.
//
// Executor errors never surface as items: the run completes with the
// fallback result instead. Blank request text yields an empty sequence.
func (r *Runner) Run(ctx context.Context, req RunRequest) iter.Seq[StreamItem] {
	return func(yield func(StreamItem) bool) {
		text := strings.TrimSpace(req.Text)
		if text == "" {
			r.logger.Warn(logModule, "Rejected run with empty request text", nil)
			return
		}

		reduced := r.reduced()
		name := stage.PipelineFull
		if reduced {
			name = stage.PipelineReduced
		}

		sessionID := req.SessionID
		if sessionID == "" {
			sessionID = r.newSessionID()
		}
		state := NewSessionState(sessionID)
		r.registry.Register(state)
		defer r.registry.Remove(state)

		summary := RunSummary{
			SessionID:   sessionID,
			RequesterID: req.RequesterID,
			Request:     text,
			Pipeline:    name,
			StartedAt:   r.now(),
		}

		r.logger.Info(logModule, "Pipeline run started", map[string]interface{}{
			"session_id": sessionID,
			"pipeline":   name,
		})

		p, ok := r.catalog.Pipeline(name)
		if !ok {
			// Without a pipeline there is nothing to execute; complete with
			// the fallback as for any other executor failure.
			err := fmt.Errorf("pipeline %q is not defined", name)
			r.finish(ctx, yield, &summary, fallback.Build(text), ResolutionExecutorFailed, err)
			return
		}

		inv := Invocation{
			SessionID:   sessionID,
			RequesterID: req.RequesterID,
			Request:     text,
			Pipeline:    p,
			State:       state,
		}

		var (
			tr       = newTransformer(r.catalog)
			speakers []string
			execErr  error
			terminal bool
		)

		for ev, err := range r.executor.Execute(ctx, inv) {
			if err != nil {
				execErr = err
				break
			}
			n := notificationFrom(ev, r.now())

			for _, t := range tr.Observe(n.StageID) {
				if !yield(typingItem(t)) {
					return
				}
			}

			if !yield(progressItem(n)) {
				return
			}
			summary.Progress++

			if !n.Partial && strings.TrimSpace(n.Text) != "" {
				if !reduced && debate.Substantive(n.Text) {
					if msg, ok := r.classifier.Classify(n.StageID, n.Text, speakers); ok {
						if !yield(debateItem(msg)) {
							return
						}
						summary.Debates++
					}
				}
				if len(speakers) == 0 || speakers[len(speakers)-1] != n.StageID {
					speakers = append(speakers, n.StageID)
				}
			}

			if n.StageID == p.TerminalStage && n.Final {
				terminal = true
				break
			}
		}

		if t, ok := tr.Close(); ok {
			if !yield(typingItem(t)) {
				return
			}
		}

		if execErr != nil {
			r.logger.Warn(logModule, "Executor failed, using fallback result", map[string]interface{}{
				"session_id": sessionID,
				"error":      execErr.Error(),
			})
			r.finish(ctx, yield, &summary, fallback.Build(text), ResolutionExecutorFailed, execErr)
			return
		}

		if !terminal {
			r.logger.Error(logModule, "Executor ended before the terminal stage answered", map[string]interface{}{
				"session_id":     sessionID,
				"terminal_stage": p.TerminalStage,
			})
			summary.Resolution = ResolutionIncomplete
			summary.Duration = r.now().Sub(summary.StartedAt)
			r.observer.RunFinished(ctx, summary)
			return
		}

		result, resolution := ResolveResult(text, state, p.ResultKey, nil)
		if resolution != ResolutionOK {
			r.logger.Warn(logModule, "Terminal result unusable, using fallback result", map[string]interface{}{
				"session_id": sessionID,
				"reason":     string(resolution),
			})
		}
		r.finish(ctx, yield, &summary, result, resolution, nil)
	}
}

func (r *Runner) finish(ctx context.Context, yield func(StreamItem) bool, summary *RunSummary, result map[string]any, resolution Resolution, err error) {
	yield(completeItem(Complete{
		Timestamp:   r.now(),
		Result:      result,
		SessionID:   summary.SessionID,
		RequesterID: summary.RequesterID,
		Pipeline:    summary.Pipeline,
		Resolution:  resolution,
	}))

	summary.Resolution = resolution
	summary.Err = err
	summary.Completed = true
	summary.Duration = r.now().Sub(summary.StartedAt)

	r.logger.Info(logModule, "Pipeline run completed", map[string]interface{}{
		"session_id": summary.SessionID,
		"resolution": string(resolution),
		"debates":    summary.Debates,
		"duration":   summary.Duration.String(),
	})
	r.observer.RunFinished(ctx, *summary)
}

// RunToCompletion drains a run and returns its complete item.
func (r *Runner) RunToCompletion(ctx context.Context, req RunRequest) (*Complete, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyRequest
	}
	var last *Complete
	for item := range r.Run(ctx, req) {
		if item.Kind == KindComplete {
			last = item.Complete
		}
	}
	if last == nil {
		return nil, ErrNoCompletion
	}
	return last, nil
}
