package debate

import (
	"regexp"
	"strconv"
)

var (
	// "confidence: 85%", "confidence of 0.8", "\"confidence\": 0.92"
	confidenceAfter = regexp.MustCompile(`(?i)confiden(?:ce|t)(?:[ _](?:level|score))?["']?\s*(?:[:=~]|\b(?:is|of|at|around|about)\b)\s*(\d{1,3}(?:\.\d+)?)`)
	// "confidence 85%". Without a separator the number must carry a percent sign.
	confidenceAfterPercent = regexp.MustCompile(`(?i)confiden(?:ce|t)(?:[ _](?:level|score))?["']?\s*(\d{1,3}(?:\.\d+)?)\s*%`)
	// "85% confident", "90 percent confidence"
	confidenceBefore = regexp.MustCompile(`(?i)(\d{1,3}(?:\.\d+)?)\s*(%|percent)\s*(?:sure|certain|confiden(?:ce|t))`)

	hedges = []struct {
		re    *regexp.Regexp
		value float64
	}{
		{regexp.MustCompile(`(?i)\b(high|strong|very)\s+confiden(ce|t)\b`), 0.9},
		{regexp.MustCompile(`(?i)\b(moderate|medium|reasonable|fair)(ly)?\s+confiden(ce|t)\b`), 0.7},
		{regexp.MustCompile(`(?i)\b(low|limited|little)\s+confiden(ce|t)\b`), 0.5},
	}
)

// ExtractConfidence returns the confidence stated in text as a 0-1 fraction.
// Explicit numbers win over qualitative hedges; nil means no signal.
func ExtractConfidence(text string) *float64 {
	for _, re := range []*regexp.Regexp{confidenceAfter, confidenceAfterPercent, confidenceBefore} {
		if m := re.FindStringSubmatch(text); m != nil {
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			return normalizeConfidence(v)
		}
	}
	for _, h := range hedges {
		if h.re.MatchString(text) {
			v := h.value
			return &v
		}
	}
	return nil
}

func normalizeConfidence(v float64) *float64 {
	if v > 1 {
		v /= 100
	}
	if v > 1 {
		v = 1
	}
	if v < 0 {
		v = 0
	}
	return &v
}
