package debate

import (
	"regexp"

	"ai-permit-planner-be/pkg/stage"
)

// MessageType classifies a debate message.
type MessageType string

const (
	TypeWarning      MessageType = "warning"
	TypeDisagreement MessageType = "disagreement"
	TypeAgreement    MessageType = "agreement"
	TypeQuestion     MessageType = "question"
	TypeSuggestion   MessageType = "suggestion"
	TypeInsight      MessageType = "insight"
	TypeConsensus    MessageType = "consensus"
	TypeCorrection   MessageType = "correction"
	TypeObservation  MessageType = "observation"
)

// TypePattern maps a message type to the patterns that select it.
type TypePattern struct {
	Type     MessageType
	Patterns []*regexp.Regexp
}

// TypePatterns is evaluated top to bottom; the first matching type wins.
var TypePatterns = []TypePattern{
	{TypeWarning, compile(
		`(?i)\bwarn(ing)?\b`,
		`(?i)\bcaution\b`,
		`(?i)\bbe careful\b`,
		`(?i)\bwatch out\b`,
		`(?i)\bheads up\b`,
		`(?i)\b(major|significant|serious|high) risk\b`,
		`(?i)\bred flag\b`,
	)},
	{TypeDisagreement, compile(
		`(?i)\bi disagree\b`,
		`(?i)\bdisagree(s|ment)?\b`,
		`(?i)\bi don'?t think\b`,
		`(?i)\bon the contrary\b`,
		`(?i)\bthat'?s not (quite )?right\b`,
		`(?i)\bi see it differently\b`,
		`(?i)\bpush back\b`,
	)},
	{TypeAgreement, compile(
		`(?i)\bi agree\b`,
		`(?i)\bagreed\b`,
		`(?i)\bi concur\b`,
		`(?i)\bconfirms?\b`,
		`(?i)\bconsistent with\b`,
		`(?i)\bthat'?s right\b`,
		`(?i)\bgood point\b`,
	)},
	{TypeQuestion, compile(
		`\?(\s|$)`,
		`(?i)\bi wonder\b`,
		`(?i)\bunclear whether\b`,
		`(?i)\bcan (someone|we) (confirm|verify)\b`,
	)},
	{TypeSuggestion, compile(
		`(?i)\bi (suggest|recommend|propose)\b`,
		`(?i)\brecommend(ed|ation)?\b`,
		`(?i)\bconsider\b`,
		`(?i)\bit would be (wise|better)\b`,
		`(?i)\bwe should\b`,
	)},
	{TypeInsight, compile(
		`(?i)\bkey (insight|finding|takeaway)\b`,
		`(?i)\binterestingly\b`,
		`(?i)\bnotably\b`,
		`(?i)\bthis (means|suggests|indicates)\b`,
	)},
	{TypeConsensus, compile(
		`(?i)\bconsensus\b`,
		`(?i)\bwe all agree\b`,
		`(?i)\b(in summary|to summarize|overall)\b`,
		`(?i)\ball (agents|analyses|findings) (agree|point)\b`,
	)},
	{TypeCorrection, compile(
		`(?i)\bcorrection\b`,
		`(?i)\bto clarify\b`,
		`(?i)\blet me correct\b`,
		`(?i)\bi misspoke\b`,
		`(?i)\bactually\b`,
	)},
	{TypeObservation, compile(
		`(?i)\bi (see|notice|observe)\b`,
		`(?i)\bit (appears|seems)\b`,
		`(?i)\blooks like\b`,
		`(?i)\bfound\b`,
	)},
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// DetectType returns the first type whose patterns match text, or the
// default for the stage's group when nothing matches.
func DetectType(text string, group stage.Group) MessageType {
	for _, tp := range TypePatterns {
		for _, re := range tp.Patterns {
			if re.MatchString(text) {
				return tp.Type
			}
		}
	}
	return DefaultType(group)
}

// DefaultType is the message type used when no pattern matches.
func DefaultType(group stage.Group) MessageType {
	switch group {
	case stage.GroupFinalAnalysis:
		return TypeInsight
	case stage.GroupPlanning:
		return TypeSuggestion
	default:
		return TypeObservation
	}
}
