package report

import (
	"reflect"
	"testing"

	"github.com/auditflow/auditflow/internal/catalog"
	"github.com/auditflow/auditflow/internal/domain"
)

func sampleData() map[domain.Phase]domain.Facts {
	return map[domain.Phase]domain.Facts{
		domain.PhasePainPoints: {
			"manualTasks": "manual data entry into spreadsheets, very repetitive",
			"bottlenecks": "every approval waits on the owner",
			"dataSilos":   "disconnected tools, data gets lost",
		},
		domain.PhaseQualification: {
			"budget":   "$10,000",
			"timeline": "within 1 month",
			"userRole": "decision_maker",
		},
	}
}

func sampleMatches() []catalog.Match {
	templates := catalog.Templates()
	return []catalog.Match{
		{Template: templates[4], Score: 72.5, Rank: 1, MatchedKeywords: []string{"manual data entry"}},
		{Template: templates[1], Score: 61.0, Rank: 2, MatchedKeywords: []string{"sync"}},
	}
}

func TestAssembleSequencesPhasesWeekByWeek(t *testing.T) {
	a := NewAssembler(60)

	rep := a.Assemble(sampleMatches(), sampleData())
	if len(rep.Roadmap.Phases) != 2 {
		t.Fatalf("Expected 2 roadmap phases, got %d", len(rep.Roadmap.Phases))
	}

	first, second := rep.Roadmap.Phases[0], rep.Roadmap.Phases[1]
	if first.StartWeek != 0 || first.EndWeek != first.ImplementationWeeks {
		t.Errorf("First phase weeks = [%d, %d]", first.StartWeek, first.EndWeek)
	}
	if second.StartWeek != first.EndWeek {
		t.Errorf("Second phase should start where the first ends: %d != %d", second.StartWeek, first.EndWeek)
	}
	if rep.Roadmap.TotalWeeks != second.EndWeek {
		t.Errorf("TotalWeeks = %d, want %d", rep.Roadmap.TotalWeeks, second.EndWeek)
	}
	if first.Number != 1 || second.Number != 2 {
		t.Errorf("Phases should be numbered sequentially: %d, %d", first.Number, second.Number)
	}
}

func TestAssembleEstimatedValueFromHoursSaved(t *testing.T) {
	a := NewAssembler(60)

	rep := a.Assemble(sampleMatches(), sampleData())
	var hours float64
	for _, m := range sampleMatches() {
		hours += m.Template.HoursSavedPerMonth
	}
	want := hours * 60 * 12
	if rep.EstimatedValue != want {
		t.Errorf("EstimatedValue = %v, want %v", rep.EstimatedValue, want)
	}
}

func TestAssembleIsIdempotent(t *testing.T) {
	a := NewAssembler(60)

	first := a.Assemble(sampleMatches(), sampleData())
	second := a.Assemble(sampleMatches(), sampleData())
	if !reflect.DeepEqual(first, second) {
		t.Error("Assemble should be deterministic for identical inputs")
	}
}

func TestAssembleNoMatches(t *testing.T) {
	a := NewAssembler(60)

	rep := a.Assemble(nil, sampleData())
	if rep.EstimatedValue != 0 {
		t.Errorf("No matches should estimate zero value, got %v", rep.EstimatedValue)
	}
	if rep.Roadmap.TotalWeeks != 0 {
		t.Errorf("No matches should span zero weeks, got %d", rep.Roadmap.TotalWeeks)
	}
	if rep.PainScore == 0 {
		t.Error("Pain score should still reflect the answers without matches")
	}
}

func TestPainScoreBounds(t *testing.T) {
	extreme := map[domain.Phase]domain.Facts{
		domain.PhasePainPoints: {
			"manualTasks": "manual manual manual data entry data entry repetitive repetitive spreadsheet copy paste time-consuming",
			"bottlenecks": "approval approval waiting waiting delay delay stuck stuck bottleneck",
			"dataSilos":   "silo silo disconnected disconnected duplicate duplicate lost lost separate",
		},
		domain.PhaseQualification: {
			"budget":   "urgent, asap",
			"timeline": "immediately",
		},
	}

	score := PainScore(extreme)
	if score != 100 {
		t.Errorf("Saturated answers should cap at 100, got %d", score)
	}
	if got := PainScore(nil); got != 0 {
		t.Errorf("Empty data should score 0, got %d", got)
	}
}

func TestPainScoreIsDeterministic(t *testing.T) {
	data := sampleData()
	first := PainScore(data)
	if first <= 0 || first > 100 {
		t.Fatalf("Score out of range: %d", first)
	}
	for i := 0; i < 5; i++ {
		if got := PainScore(data); got != first {
			t.Fatalf("Score changed between runs: %d != %d", got, first)
		}
	}
}

func TestUrgencyScore(t *testing.T) {
	tests := []struct {
		budget, timeline string
		want             int
	}{
		{"urgent", "immediately", 25},
		{"we're exploring options", "1-3 months", 10},
		{"", "", 0},
		{"soon", "within 1 month", 17},
	}
	for _, tt := range tests {
		if got := urgencyScore(tt.budget, tt.timeline); got != tt.want {
			t.Errorf("urgencyScore(%q, %q) = %d, want %d", tt.budget, tt.timeline, got, tt.want)
		}
	}
}
