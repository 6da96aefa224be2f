package report

import (
	"strings"

	"github.com/auditflow/auditflow/internal/domain"
)

// Severity keywords with per-category caps. The score rewards breadth
// (several pain categories populated) and depth (many severity markers
// inside one answer) without letting any one answer dominate.
var (
	taskKeywords       = []string{"manual", "data entry", "copy paste", "repetitive", "time-consuming", "spreadsheet"}
	bottleneckKeywords = []string{"approval", "waiting", "delay", "bottleneck", "stuck"}
	siloKeywords       = []string{"silo", "disconnected", "separate", "manual sync", "duplicate", "lost"}
)

// PainScore derives a 0-100 severity measure from the pain_points and
// qualification answers. Deterministic for identical extracted data.
func PainScore(data map[domain.Phase]domain.Facts) int {
	pain := data[domain.PhasePainPoints]
	qual := data[domain.PhaseQualification]

	score := 0
	score += keywordScore(stringField(pain, "manualTasks"), taskKeywords, 6, 30)
	score += keywordScore(stringField(pain, "bottlenecks"), bottleneckKeywords, 5, 25)
	score += keywordScore(stringField(pain, "dataSilos"), siloKeywords, 4, 20)
	score += urgencyScore(stringField(qual, "budget"), stringField(qual, "timeline"))

	if score > 100 {
		score = 100
	}
	return score
}

// keywordScore counts keyword occurrences in the answer, worth perHit
// points each up to limit.
func keywordScore(answer string, keywords []string, perHit, limit int) int {
	if answer == "" {
		return 0
	}
	haystack := strings.ToLower(answer)
	hits := 0
	for _, kw := range keywords {
		hits += strings.Count(haystack, kw)
	}
	score := hits * perHit
	if score > limit {
		score = limit
	}
	return score
}

// urgencyScore adds up to 25 points for urgent budget and timeline
// language.
func urgencyScore(budget, timeline string) int {
	score := 0

	b := strings.ToLower(budget)
	switch {
	case strings.Contains(b, "urgent"), strings.Contains(b, "asap"):
		score += 15
	case strings.Contains(b, "soon"):
		score += 10
	case strings.Contains(b, "exploring"):
		score += 5
	}

	t := strings.ToLower(timeline)
	switch {
	case strings.Contains(t, "immediately"), strings.Contains(t, "asap"):
		score += 10
	case strings.Contains(t, "1 month"):
		score += 7
	case strings.Contains(t, "1-3 months"):
		score += 5
	}

	return score
}

func stringField(facts domain.Facts, field string) string {
	if facts == nil {
		return ""
	}
	if v, ok := facts[field].(string); ok {
		return v
	}
	return ""
}
