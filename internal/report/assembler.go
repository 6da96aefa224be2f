// Package report composes ranked matches and collected facts into the
// final roadmap, pain score, and value estimate.
package report

import (
	"github.com/auditflow/auditflow/internal/catalog"
	"github.com/auditflow/auditflow/internal/domain"
)

// Report is the assembled output attached to a completed session.
type Report struct {
	Roadmap        *domain.Roadmap
	PainScore      int
	EstimatedValue float64 // estimated annual value, USD
}

// Assembler builds reports from match results. It is deterministic:
// identical inputs always produce identical reports.
type Assembler struct {
	// HourlyValue is the dollar value assigned to one saved working hour.
	HourlyValue float64
}

// NewAssembler creates an assembler with the given hourly-value constant.
func NewAssembler(hourlyValue float64) *Assembler {
	return &Assembler{HourlyValue: hourlyValue}
}

// Assemble groups the ranked matches into sequential roadmap phases and
// computes the aggregate estimates. The top pick becomes phase 1 and
// later picks are scheduled after it week by week.
func (a *Assembler) Assemble(matches []catalog.Match, data map[domain.Phase]domain.Facts) Report {
	roadmap := &domain.Roadmap{}
	week := 0
	var estimated float64

	for i, m := range matches {
		t := m.Template
		start := week
		end := week + t.ImplementationWeeks
		week = end

		roadmap.Phases = append(roadmap.Phases, domain.RoadmapPhase{
			Number:              i + 1,
			Name:                t.Name,
			Category:            t.Category,
			Problem:             t.Problem,
			Solution:            t.Solution,
			CostMin:             t.CostMin,
			CostMax:             t.CostMax,
			HoursSavedPerMonth:  t.HoursSavedPerMonth,
			ImplementationWeeks: t.ImplementationWeeks,
			StartWeek:           start,
			EndWeek:             end,
			MatchScore:          m.Score,
		})
		estimated += t.HoursSavedPerMonth * a.HourlyValue * 12
	}
	roadmap.TotalWeeks = week

	return Report{
		Roadmap:        roadmap,
		PainScore:      PainScore(data),
		EstimatedValue: estimated,
	}
}
