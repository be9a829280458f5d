package pipeline

import "ai-permit-planner-be/pkg/stage"

// transformer tracks which stage is speaking and produces typing transitions.
// At most one stage is active at a time.
type transformer struct {
	catalog *stage.Catalog
	active  string
}

func newTransformer(catalog *stage.Catalog) *transformer {
	return &transformer{catalog: catalog}
}

// Observe records a notification from stageID and returns the transitions it
// causes: none for the active stage, otherwise a stop for the previous
// speaker (if any) followed by a start for the new one. Authorless
// notifications never change the speaker.
func (t *transformer) Observe(stageID string) []Typing {
	if stageID == "" || stageID == t.active {
		return nil
	}
	out := make([]Typing, 0, 2)
	if t.active != "" {
		out = append(out, t.typing(t.active, false))
	}
	t.active = stageID
	return append(out, t.typing(stageID, true))
}

// Close stops the active speaker, if any.
func (t *transformer) Close() (Typing, bool) {
	if t.active == "" {
		return Typing{}, false
	}
	last := t.typing(t.active, false)
	t.active = ""
	return last, true
}

func (t *transformer) typing(stageID string, on bool) Typing {
	return Typing{
		StageID:     stageID,
		DisplayName: t.catalog.DisplayName(stageID),
		IsTyping:    on,
	}
}
