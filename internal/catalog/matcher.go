package catalog

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/auditflow/auditflow/internal/domain"
)

// Match is a template paired with its computed score and rank. Matches
// are derived fresh on every run and never persisted independently of
// the session's final report.
type Match struct {
	Template        Template
	Score           float64 // 0-100
	Rank            int
	MatchedKeywords []string
}

// Sub-score weights. Keyword overlap dominates because the pain points
// are the strongest signal the intake collects.
const (
	weightKeywords     = 0.40
	weightBudget       = 0.25
	weightIndustry     = 0.20
	weightSatisfaction = 0.15

	maxMatches = 3
)

// Matcher ranks catalog templates against the facts collected during an
// intake conversation. It is a pure function over its inputs: the same
// facts and catalog always produce the same ranked list.
type Matcher struct {
	templates []Template
}

// NewMatcher creates a matcher over the given catalog.
func NewMatcher(templates []Template) *Matcher {
	return &Matcher{templates: templates}
}

// Match evaluates every template against the merged facts and returns
// the top matches ordered by descending score. Ties break on higher
// satisfaction, then fewer implementation weeks. Templates whose
// matching rule finds no pain-point keyword are excluded.
func (m *Matcher) Match(data map[domain.Phase]domain.Facts) []Match {
	painText := painPointText(data)
	industry := stringFact(data, domain.PhaseDiscovery, "industry")
	budgetCeiling := parseBudgetCeiling(stringFact(data, domain.PhaseQualification, "budget"))

	var matches []Match
	for _, t := range m.templates {
		matched := matchedKeywords(t.Keywords, painText)
		if len(matched) == 0 {
			continue
		}

		keywordScore := float64(len(matched)) / float64(len(t.Keywords))
		score := weightKeywords*keywordScore +
			weightIndustry*industryFit(t.Industries, industry) +
			weightBudget*budgetFit(budgetCeiling, t.CostMin) +
			weightSatisfaction*(t.Satisfaction/5)

		matches = append(matches, Match{
			Template:        t,
			Score:           round1(score * 100),
			MatchedKeywords: matched,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Template.Satisfaction != b.Template.Satisfaction {
			return a.Template.Satisfaction > b.Template.Satisfaction
		}
		if a.Template.ImplementationWeeks != b.Template.ImplementationWeeks {
			return a.Template.ImplementationWeeks < b.Template.ImplementationWeeks
		}
		return a.Template.Slug < b.Template.Slug
	})

	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}
	for i := range matches {
		matches[i].Rank = i + 1
	}
	return matches
}

// painPointText concatenates every pain-point fact into one lowercase
// haystack for keyword matching.
func painPointText(data map[domain.Phase]domain.Facts) string {
	facts, ok := data[domain.PhasePainPoints]
	if !ok {
		return ""
	}
	var parts []string
	for _, field := range []string{"manualTasks", "bottlenecks", "dataSilos"} {
		if v, ok := facts[field].(string); ok {
			parts = append(parts, v)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func matchedKeywords(keywords []string, painText string) []string {
	if painText == "" {
		return nil
	}
	var matched []string
	for _, kw := range keywords {
		if strings.Contains(painText, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// industryFit scores 1.0 for a listed industry match, 0 for a listed
// miss, and a neutral 0.7 for templates that apply to any industry.
func industryFit(industries []string, industry string) float64 {
	if len(industries) == 0 {
		return 0.7
	}
	needle := strings.ToLower(industry)
	for _, candidate := range industries {
		if needle != "" && strings.Contains(needle, strings.ToLower(candidate)) {
			return 1.0
		}
	}
	return 0
}

// budgetFit scores 1.0 when the stated budget covers the template's
// minimum cost and grades down proportionally otherwise. An unparseable
// budget is treated as neutral.
func budgetFit(budgetCeiling float64, costMin int) float64 {
	if budgetCeiling <= 0 {
		return 0.5
	}
	if budgetCeiling >= float64(costMin) {
		return 1.0
	}
	return budgetCeiling / float64(costMin)
}

var budgetAmountRe = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s*([kK])?`)

// parseBudgetCeiling extracts the largest dollar amount mentioned in a
// free-text budget answer ("$5,000-$15,000" -> 15000, "around 20k" ->
// 20000). Returns 0 when no amount is found.
func parseBudgetCeiling(budget string) float64 {
	var ceiling float64
	for _, m := range budgetAmountRe.FindAllStringSubmatch(budget, -1) {
		raw := strings.ReplaceAll(m[1], ",", "")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if m[2] != "" {
			v *= 1000
		}
		if v > ceiling {
			ceiling = v
		}
	}
	return ceiling
}

func stringFact(data map[domain.Phase]domain.Facts, phase domain.Phase, field string) string {
	if facts, ok := data[phase]; ok {
		if v, ok := facts[field].(string); ok {
			return v
		}
	}
	return ""
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
