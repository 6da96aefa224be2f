package domain

// Roadmap is the ordered, phased set of recommended opportunities
// assembled when a session completes. It is derived data, stored as part
// of the session snapshot for later retrieval.
type Roadmap struct {
	TotalWeeks int            `json:"totalWeeks"`
	Phases     []RoadmapPhase `json:"phases"`
}

// RoadmapPhase is one rollout step of the roadmap. Cost and time-saved
// figures are copied from the matched opportunity template.
type RoadmapPhase struct {
	Number              int     `json:"phase"`
	Name                string  `json:"name"`
	Category            string  `json:"category"`
	Problem             string  `json:"problem"`
	Solution            string  `json:"solution"`
	CostMin             int     `json:"costMin"`
	CostMax             int     `json:"costMax"`
	HoursSavedPerMonth  float64 `json:"hoursSavedPerMonth"`
	ImplementationWeeks int     `json:"implementationWeeks"`
	StartWeek           int     `json:"startWeek"`
	EndWeek             int     `json:"endWeek"`
	MatchScore          float64 `json:"matchScore"`
}

// Lead is the qualified-contact payload handed to the outbound
// notification channels after a session finishes.
type Lead struct {
	SessionID      string  `json:"sessionId"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Company        string  `json:"company,omitempty"`
	Industry       string  `json:"industry,omitempty"`
	Budget         string  `json:"budget,omitempty"`
	Timeline       string  `json:"timeline,omitempty"`
	PainScore      int     `json:"painScore"`
	EstimatedValue float64 `json:"estimatedValue"`
	TopOpportunity string  `json:"topOpportunity,omitempty"`
}
