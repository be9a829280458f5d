// Package fallback computes a complete, deterministic report from the request
// text alone. It is used whenever the pipeline cannot produce a usable
// result and must never fail.
package fallback

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode"
)

// Source marks reports produced by this package.
const Source = "fallback"

type Location struct {
	City   string `json:"city"`
	State  string `json:"state,omitempty"`
	Agency string `json:"agency"`
}

type Costs struct {
	Permits     float64 `json:"permits"`
	Buildout    float64 `json:"buildout"`
	Equipment   float64 `json:"equipment"`
	Inventory   float64 `json:"inventory"`
	Contingency float64 `json:"contingency"`
	Total       float64 `json:"total"`
	Currency    string  `json:"currency"`
}

type Phase struct {
	Name  string `json:"name"`
	Weeks int    `json:"weeks"`
}

type Timeline struct {
	TotalWeeks int     `json:"total_weeks"`
	Phases     []Phase `json:"phases"`
}

// Report has the same shape as the final report the pipeline produces.
type Report struct {
	BusinessType    string   `json:"business_type"`
	Category        string   `json:"category"`
	Location        Location `json:"location"`
	Summary         string   `json:"summary"`
	Permits         []Permit `json:"permits"`
	Costs           Costs    `json:"costs"`
	Timeline        Timeline `json:"timeline"`
	Risks           []Risk   `json:"risks"`
	Recommendations []string `json:"recommendations"`
	Confidence      float64  `json:"confidence"`
	Source          string   `json:"source"`
}

// Classify picks the scenario category and locality for request.
func Classify(request string) (categoryKey, localityKey string) {
	c, l := match(request)
	return c.key, l.key
}

// BuildReport returns the typed fallback report for request.
func BuildReport(request string) Report {
	c, l := match(request)

	permits := make([]Permit, len(c.permits))
	var permitCost float64
	longestPermit := 0
	for i, p := range c.permits {
		p.EstimatedCost = roundTo(p.EstimatedCost*l.multiplier, 10)
		permits[i] = p
		permitCost += p.EstimatedCost
		if p.ProcessingDays > longestPermit {
			longestPermit = p.ProcessingDays
		}
	}

	costs := Costs{
		Permits:   permitCost,
		Buildout:  roundTo(c.buildout*l.multiplier, 100),
		Equipment: roundTo(c.equipment*l.multiplier, 100),
		Inventory: roundTo(c.inventory*l.multiplier, 100),
		Currency:  "USD",
	}
	subtotal := costs.Permits + costs.Buildout + costs.Equipment + costs.Inventory
	costs.Contingency = roundTo(subtotal*0.15, 100)
	costs.Total = subtotal + costs.Contingency

	permitWeeks := int(math.Ceil(float64(longestPermit)/7)) + l.extraWeeks
	phases := []Phase{
		{Name: "Entity setup and site selection", Weeks: 3},
		{Name: "Permitting", Weeks: permitWeeks},
		{Name: "Build-out and inspections", Weeks: c.weeks - 3},
		{Name: "Soft opening", Weeks: 1},
	}
	if phases[2].Weeks < 1 {
		phases[2].Weeks = 1
	}
	total := 0
	for _, ph := range phases {
		total += ph.Weeks
	}

	risks := append([]Risk(nil), c.risks...)
	if l.localRisk != nil {
		risks = append(risks, *l.localRisk)
	}

	recs := append([]string(nil), c.recommended...)
	recs = append(recs, fmt.Sprintf("Contact the %s to confirm local requirements.", l.agency))

	where := l.city
	if l.key == unknownLocality.key {
		where = "your area"
	}

	return Report{
		BusinessType: c.label,
		Category:     c.key,
		Location: Location{
			City:   l.city,
			State:  l.state,
			Agency: l.agency,
		},
		Summary: fmt.Sprintf(
			"Opening a %s in %s typically needs %d permits, about %s USD in start-up costs and roughly %d weeks of lead time.",
			c.label, where, len(permits), formatThousands(costs.Total), total,
		),
		Permits:         permits,
		Costs:           costs,
		Timeline:        Timeline{TotalWeeks: total, Phases: phases},
		Risks:           risks,
		Recommendations: recs,
		Confidence:      confidence(c, l),
		Source:          Source,
	}
}

// Build returns the fallback report as a generic JSON object, the same form
// a parsed pipeline result takes.
func Build(request string) map[string]any {
	report := BuildReport(request)
	data, err := json.Marshal(report)
	if err != nil {
		return map[string]any{"summary": report.Summary, "source": Source}
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{"summary": report.Summary, "source": Source}
	}
	return out
}

func match(request string) (category, locality) {
	text := normalize(request)

	c := genericCategory
	for _, candidate := range categories {
		if containsAny(text, candidate.keywords) {
			c = candidate
			break
		}
	}

	l := unknownLocality
	for _, candidate := range localities {
		if containsAny(text, candidate.keywords) {
			l = candidate
			break
		}
	}
	return c, l
}

// normalize lowercases text, turns punctuation into spaces and pads it so
// keywords can be matched as whole words.
func normalize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return " " + strings.Join(strings.Fields(mapped), " ") + " "
}

// containsAny matches keywords as whole words, allowing a plural suffix.
func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		for _, suffix := range []string{" ", "s ", "es "} {
			if strings.Contains(text, " "+k+suffix) {
				return true
			}
		}
	}
	return false
}

func confidence(c category, l locality) float64 {
	conf := 0.4
	if c.key != genericCategory.key {
		conf += 0.15
	}
	if l.key != unknownLocality.key {
		conf += 0.1
	}
	return math.Round(conf*100) / 100
}

func roundTo(v, step float64) float64 {
	return math.Round(v/step) * step
}

func formatThousands(v float64) string {
	digits := fmt.Sprintf("%d", int64(math.Round(v)))
	var sb strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(d)
	}
	return sb.String()
}
