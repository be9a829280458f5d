package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"strings"
	"time"

	"ai-permit-planner-be/pkg/fallback"
	"ai-permit-planner-be/pkg/stage"
)

// OfflineExecutor plays every stage of the pipeline from the fallback
// scenario data, without calling a model. It backs the CLI's offline mode and
// demo deployments.
type OfflineExecutor struct {
	catalog *stage.Catalog
	// Pause is slept between stages so streamed output is watchable.
	Pause time.Duration
}

var _ Executor = (*OfflineExecutor)(nil)

func NewOfflineExecutor(catalog *stage.Catalog, pause time.Duration) *OfflineExecutor {
	return &OfflineExecutor{catalog: catalog, Pause: pause}
}

func (o *OfflineExecutor) Execute(ctx context.Context, inv Invocation) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		report := fallback.BuildReport(inv.Request)

		for i, s := range o.catalog.StagesOf(inv.Pipeline) {
			if i > 0 && o.Pause > 0 {
				select {
				case <-ctx.Done():
					yield(Event{}, ctx.Err())
					return
				case <-time.After(o.Pause):
				}
			}
			if err := ctx.Err(); err != nil {
				yield(Event{}, err)
				return
			}

			if !yield(PartialEvent(s.ID, fmt.Sprintf("%s is working...", s.DisplayName)), nil) {
				return
			}

			output, err := offlineOutput(s, report)
			if err != nil {
				yield(Event{}, fmt.Errorf("offline output for %s: %w", s.ID, err))
				return
			}
			inv.State.Set(s.OutputKey, output)

			if remark := offlineRemark(s, report); remark != "" {
				if !yield(TextEvent(s.ID, remark), nil) {
					return
				}
			}
			if !yield(TextEvent(s.ID, output), nil) {
				return
			}
		}
	}
}

func offlineOutput(s stage.Stage, r fallback.Report) (string, error) {
	var v any
	switch s.ID {
	case "intake_classifier":
		v = map[string]any{
			"intent":        "open_" + r.Category,
			"business_type": r.BusinessType,
			"location":      r.Location.City,
			"confidence":    r.Confidence,
		}
	case "zoning_researcher":
		v = map[string]any{
			"zone": "commercial",
			"findings": []string{
				fmt.Sprintf("A %s is usually a permitted use in commercial districts", r.BusinessType),
				"Parking minimums may apply to new occupancies",
			},
		}
	case "permit_researcher":
		v = map[string]any{"permits": r.Permits}
	case "cost_estimator":
		v = map[string]any{
			"total":    r.Costs.Total,
			"currency": r.Costs.Currency,
			"breakdown": map[string]float64{
				"permits":     r.Costs.Permits,
				"buildout":    r.Costs.Buildout,
				"equipment":   r.Costs.Equipment,
				"inventory":   r.Costs.Inventory,
				"contingency": r.Costs.Contingency,
			},
		}
	case "risk_assessor":
		v = map[string]any{"risks": r.Risks}
	case "strategy_planner":
		steps := make([]string, 0, len(r.Timeline.Phases))
		for _, ph := range r.Timeline.Phases {
			steps = append(steps, ph.Name)
		}
		v = map[string]any{"steps": steps, "total_weeks": r.Timeline.TotalWeeks}
	default:
		r.Source = "offline"
		v = r
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// offlineRemark is an optional prose line a stage says before its output.
func offlineRemark(s stage.Stage, r fallback.Report) string {
	switch s.ID {
	case "cost_estimator":
		return fmt.Sprintf("Building on the Permit Specialist's list, permit fees alone come to about %.0f %s.", r.Costs.Permits, r.Costs.Currency)
	case "risk_assessor":
		if len(r.Risks) > 0 {
			return fmt.Sprintf("Heads up, the biggest risk I see is %s.", strings.ToLower(r.Risks[0].Title))
		}
	case "strategy_planner":
		return fmt.Sprintf("I recommend starting permit applications in week one; moderate confidence in a %d week timeline.", r.Timeline.TotalWeeks)
	}
	return ""
}
