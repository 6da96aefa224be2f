// Package catalog holds the static opportunity templates and the
// matching logic that ranks them against collected facts.
package catalog

// Template is one catalog entry: a candidate recommendation with a
// keyword matching rule and cost/time estimates. The catalog is static
// reference data, shared read-only by all sessions.
type Template struct {
	Slug                string
	Name                string
	Category            string
	Problem             string
	Solution            string
	Keywords            []string // pain-point keywords the template targets
	Industries          []string // industries with a strong fit; empty means any
	CostMin             int      // implementation cost range, USD
	CostMax             int
	HoursSavedPerMonth  float64
	ErrorReduction      int // percent
	ImplementationWeeks int
	Satisfaction        float64 // historical client satisfaction, 0-5
}

// Templates returns the built-in opportunity catalog. The slice is
// rebuilt on every call so callers can never mutate shared state.
func Templates() []Template {
	return []Template{
		{
			Slug:     "automated-lead-scoring",
			Name:     "Automated Lead Scoring",
			Category: "lead_gen",
			Problem:  "Manual lead qualification takes hours and is inconsistent across team members",
			Solution: "Automatically score and qualify leads based on behavior, demographics, and engagement patterns",
			Keywords: []string{"lead", "qualify", "sales", "prospect", "scoring"},
			CostMin:  6000, CostMax: 10000,
			HoursSavedPerMonth: 40, ErrorReduction: 25, ImplementationWeeks: 4,
			Satisfaction: 4.4,
		},
		{
			Slug:       "inventory-sync-automation",
			Name:       "Inventory Sync Automation",
			Category:   "ops_automation",
			Problem:    "Manual inventory updates lead to overselling and stock discrepancies",
			Solution:   "Sync inventory levels in real time between storefront, warehouse, and accounting systems",
			Keywords:   []string{"inventory", "stock", "sync", "warehouse", "overselling"},
			Industries: []string{"e-commerce", "retail"},
			CostMin:    4000, CostMax: 7000,
			HoursSavedPerMonth: 30, ErrorReduction: 90, ImplementationWeeks: 3,
			Satisfaction: 4.7,
		},
		{
			Slug:       "customer-support-chatbot",
			Name:       "Customer Support Chatbot",
			Category:   "support",
			Problem:    "Support team overwhelmed with repetitive questions and slow response times",
			Solution:   "First-line AI chatbot that answers common inquiries and escalates complex issues to the help desk",
			Keywords:   []string{"support", "customer", "tickets", "response", "chatbot"},
			Industries: []string{"saas", "e-commerce"},
			CostMin:    8000, CostMax: 12000,
			HoursSavedPerMonth: 50, ErrorReduction: 15, ImplementationWeeks: 5,
			Satisfaction: 4.2,
		},
		{
			Slug:     "automated-reporting-dashboard",
			Name:     "Automated Reporting Dashboard",
			Category: "analytics",
			Problem:  "Manual report creation takes days and data is often outdated",
			Solution: "Dashboard that pulls data from every source and generates executive reports automatically",
			Keywords: []string{"reporting", "dashboard", "analytics", "kpi", "metrics"},
			CostMin:  7000, CostMax: 11000,
			HoursSavedPerMonth: 35, ErrorReduction: 80, ImplementationWeeks: 4,
			Satisfaction: 4.5,
		},
		{
			Slug:     "multi-platform-integration-hub",
			Name:     "Multi-Platform Integration Hub",
			Category: "integration",
			Problem:  "Data silos and manual data entry between disconnected systems",
			Solution: "Central hub connecting CRM, accounting, e-commerce, and marketing tools with managed data flow",
			Keywords: []string{"integration", "sync", "connect", "silos", "platforms", "manual data entry", "disconnected"},
			CostMin:  12000, CostMax: 18000,
			HoursSavedPerMonth: 60, ErrorReduction: 95, ImplementationWeeks: 8,
			Satisfaction: 4.6,
		},
	}
}
