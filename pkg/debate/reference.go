package debate

import (
	"regexp"
	"strings"

	"ai-permit-planner-be/pkg/stage"
)

// Reference points a message at an earlier speaker.
type Reference struct {
	StageID     string
	DisplayName string
}

var backReference = regexp.MustCompile(`(?i)\b(as (mentioned|noted|stated|discussed|pointed out)|building on|to build on|following up on|the previous (analysis|finding|findings|point|stage|agent|speaker|assessment)|the earlier (analysis|finding|findings|point)|as .{1,40}? (said|noted|suggested|pointed out))\b`)

// DetectReference finds the earlier speaker that text responds to. Explicit
// mentions of a prior stage win over generic back-reference phrasing, which
// is attributed to the most recent prior speaker. prior lists speakers in
// the order they spoke; current is never referenced.
func DetectReference(text, current string, prior []stage.Stage) *Reference {
	lower := strings.ToLower(text)

	for i := len(prior) - 1; i >= 0; i-- {
		s := prior[i]
		if s.ID == current {
			continue
		}
		if strings.Contains(lower, strings.ToLower(s.DisplayName)) || strings.Contains(lower, s.Words()) {
			return &Reference{StageID: s.ID, DisplayName: s.DisplayName}
		}
	}

	if !backReference.MatchString(text) {
		return nil
	}
	for i := len(prior) - 1; i >= 0; i-- {
		if prior[i].ID != current {
			return &Reference{StageID: prior[i].ID, DisplayName: prior[i].DisplayName}
		}
	}
	return nil
}
