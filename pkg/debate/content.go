package debate

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"ai-permit-planner-be/pkg/stage"
	"ai-permit-planner-be/pkg/utils"
)

const (
	// MinTextLength is the shortest trimmed text worth turning into a message.
	MinTextLength = 20
	// MaxContentLength bounds the derived content, ellipsis included.
	MaxContentLength = 280
)

// LeadIns open a message of the given type when the content has none.
var LeadIns = map[MessageType]string{
	TypeWarning:      "Heads up!",
	TypeDisagreement: "I see it differently.",
	TypeAgreement:    "Agreed!",
	TypeQuestion:     "Quick question:",
	TypeSuggestion:   "Suggestion:",
	TypeInsight:      "Interesting!",
	TypeConsensus:    "We're aligned.",
	TypeCorrection:   "Correction:",
	TypeObservation:  "Noted:",
}

// A short capitalized opener followed by punctuation, e.g. "Agreed!" or "Good point,".
var leadIn = regexp.MustCompile(`^[A-Z][A-Za-z']*(?:\s+[A-Za-z']+){0,3}\s*[!:,.]`)

var genericSummaryFields = []string{"summary", "message", "analysis", "description", "result", "content"}

type extractRule func(obj map[string]any) (string, bool)

// stageRules pull a readable sentence out of a stage's structured output.
var stageRules = map[string]extractRule{
	"intake_classifier": intakeSummary,
	"zoning_researcher": zoningSummary,
	"permit_researcher": permitSummary,
	"cost_estimator":    costSummary,
	"risk_assessor":     riskSummary,
	"strategy_planner":  strategySummary,
	"final_synthesizer": reportSummary,
	"quick_advisor":     reportSummary,
}

// Substantive reports whether text is long enough to be debate-worthy.
func Substantive(text string) bool {
	return len([]rune(strings.TrimSpace(text))) >= MinTextLength
}

// DeriveContent turns raw stage output into display text without a lead-in.
// Structured output is parsed (fenced or not) and summarised; prose is used
// as is. The result is whitespace-collapsed and truncated.
func DeriveContent(s stage.Stage, text string) string {
	content := strings.TrimSpace(text)
	if utils.LooksStructured(text) {
		content = s.CannedPhrase
		if obj, err := utils.ParseObject(text); err == nil {
			if summary, ok := summarize(s.ID, obj); ok {
				content = summary
			}
		}
		if content == "" {
			content = fmt.Sprintf("%s has finished its analysis.", s.DisplayName)
		}
	}
	return utils.Truncate(utils.CollapseWhitespace(content), MaxContentLength)
}

// Conversational derives the content and prepends the lead-in for t unless
// the content already opens with one.
func Conversational(s stage.Stage, text string, t MessageType) string {
	return WithLeadIn(DeriveContent(s, text), t)
}

// WithLeadIn prepends the lead-in for t when content has no opener of its own.
func WithLeadIn(content string, t MessageType) string {
	if leadIn.MatchString(content) {
		return content
	}
	lead, ok := LeadIns[t]
	if !ok {
		return content
	}
	return lead + " " + content
}

func summarize(stageID string, obj map[string]any) (string, bool) {
	if rule, ok := stageRules[stageID]; ok {
		if s, ok := rule(obj); ok {
			return s, true
		}
	}
	for _, field := range genericSummaryFields {
		if s := str(obj, field); s != "" {
			return s, true
		}
	}
	return "", false
}

func intakeSummary(obj map[string]any) (string, bool) {
	intent := firstStr(obj, "intent", "business_type", "businessType")
	if intent == "" {
		return "", false
	}
	s := fmt.Sprintf("I read this as %s", humanize(intent))
	if loc := firstStr(obj, "location", "city"); loc != "" {
		s += " in " + loc
	}
	if c, ok := num(obj, "confidence"); ok {
		s += fmt.Sprintf(" (%d%% confidence)", percent(c))
	}
	return s + ".", true
}

func zoningSummary(obj map[string]any) (string, bool) {
	zone := firstStr(obj, "zone", "zoning")
	findings := strList(obj, "findings")
	if zone == "" && len(findings) == 0 {
		return "", false
	}
	var sb strings.Builder
	if zone != "" {
		sb.WriteString(fmt.Sprintf("The site looks like %s zoning.", zone))
	}
	if len(findings) > 0 {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(fmt.Sprintf("%s: %s.", countNoun(len(findings), "finding"), strings.Join(firstN(findings, 3), "; ")))
	}
	return sb.String(), true
}

func permitSummary(obj map[string]any) (string, bool) {
	names := namedList(obj, "permits", "name")
	if len(names) == 0 {
		return "", false
	}
	return fmt.Sprintf("I count %s, including %s.", countNoun(len(names), "required permit"), strings.Join(firstN(names, 3), ", ")), true
}

func costSummary(obj map[string]any) (string, bool) {
	total, ok := num(obj, "total")
	if !ok {
		if costs, isMap := obj["costs"].(map[string]any); isMap {
			total, ok = num(costs, "total")
		}
	}
	if !ok {
		return "", false
	}
	currency := str(obj, "currency")
	if currency == "" {
		currency = "USD"
	}
	return fmt.Sprintf("Start-up costs come to roughly %s %s.", formatAmount(total), currency), true
}

func riskSummary(obj map[string]any) (string, bool) {
	titles := namedList(obj, "risks", "title")
	if len(titles) == 0 {
		return "", false
	}
	return fmt.Sprintf("I see %s, chiefly %s.", countNoun(len(titles), "risk"), strings.Join(firstN(titles, 3), ", ")), true
}

func strategySummary(obj map[string]any) (string, bool) {
	steps := namedList(obj, "steps", "title")
	if len(steps) == 0 {
		return "", false
	}
	s := fmt.Sprintf("The plan has %s, starting with %s.", countNoun(len(steps), "step"), steps[0])
	if weeks, ok := num(obj, "total_weeks"); ok {
		s += fmt.Sprintf(" Expect about %d weeks end to end.", int(math.Round(weeks)))
	}
	return s, true
}

func reportSummary(obj map[string]any) (string, bool) {
	if s := str(obj, "summary"); s != "" {
		return s, true
	}
	return "", false
}

func str(obj map[string]any, key string) string {
	if v, ok := obj[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func firstStr(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := str(obj, k); s != "" {
			return s
		}
		// nested location objects: {"location": {"city": "Austin"}}
		if m, ok := obj[k].(map[string]any); ok {
			if s := str(m, "city"); s != "" {
				return s
			}
		}
	}
	return ""
}

func num(obj map[string]any, key string) (float64, bool) {
	v, ok := obj[key].(float64)
	return v, ok
}

func strList(obj map[string]any, key string) []string {
	return namedList(obj, key, "")
}

// namedList reads a list of strings, or of objects carrying a name-like field.
func namedList(obj map[string]any, key, field string) []string {
	raw, ok := obj[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				out = append(out, s)
			}
		case map[string]any:
			for _, f := range []string{field, "name", "title", "description"} {
				if f == "" {
					continue
				}
				if s := str(v, f); s != "" {
					out = append(out, s)
					break
				}
			}
		}
	}
	return out
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func countNoun(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func percent(c float64) int {
	if c <= 1 {
		c *= 100
	}
	return int(math.Round(c))
}

func humanize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return strings.ToLower(strings.TrimSpace(s))
}

func formatAmount(v float64) string {
	n := int64(math.Round(v))
	neg := n < 0
	if neg {
		n = -n
	}
	digits := fmt.Sprintf("%d", n)
	var sb strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(d)
	}
	if neg {
		return "-" + sb.String()
	}
	return sb.String()
}
