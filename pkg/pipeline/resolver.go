package pipeline

import (
	"ai-permit-planner-be/pkg/fallback"
	"ai-permit-planner-be/pkg/utils"
)

// Resolution records how a run's result was obtained. It only matters for
// logging; every value except ResolutionOK means the fallback was used.
type Resolution string

const (
	ResolutionOK             Resolution = "ok"
	ResolutionExecutorFailed Resolution = "executor_failed"
	ResolutionMissing        Resolution = "missing"
	ResolutionMalformed      Resolution = "malformed"
	ResolutionEmpty          Resolution = "empty"
	// ResolutionIncomplete marks a run whose executor stopped before the
	// terminal stage answered. No result is produced for it.
	ResolutionIncomplete Resolution = "incomplete"
)

// ResolveResult returns the final result of a run. After an executor failure
// the fallback is derived from request alone. Otherwise the value under
// resultKey must parse as a non-empty JSON object, optionally fenced.
func ResolveResult(request string, state *SessionState, resultKey string, execErr error) (map[string]any, Resolution) {
	if execErr != nil {
		return fallback.Build(request), ResolutionExecutorFailed
	}
	if state == nil {
		return fallback.Build(request), ResolutionMissing
	}
	raw, ok := state.Get(resultKey)
	if !ok {
		return fallback.Build(request), ResolutionMissing
	}
	obj, err := utils.ParseObject(raw)
	if err != nil {
		return fallback.Build(request), ResolutionMalformed
	}
	if len(obj) == 0 {
		return fallback.Build(request), ResolutionEmpty
	}
	return obj, ResolutionOK
}
