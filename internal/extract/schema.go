package extract

import (
	"fmt"

	"github.com/auditflow/auditflow/internal/domain"
)

// FieldType is the primitive type of a schema field.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeNumber FieldType = "number"
	TypeEnum   FieldType = "enum"
)

// Field is one typed entry of a phase's extraction contract.
type Field struct {
	Name        string
	Label       string // human wording used in clarifying questions
	Type        FieldType
	Description string
	Enum        []string // allowed values when Type == TypeEnum
	Required    bool
}

// Schema is the extraction contract for one phase: the set of typed
// fields the phase must collect before the conversation advances.
type Schema struct {
	Phase  domain.Phase
	Fields []Field
}

// schemas defines, once, the extraction contract of every collecting
// phase. Field descriptions double as the tool-parameter documentation
// shown to the model.
var schemas = map[domain.Phase]Schema{
	domain.PhaseDiscovery: {
		Phase: domain.PhaseDiscovery,
		Fields: []Field{
			{Name: "industry", Label: "your industry", Type: TypeString, Required: true,
				Description: "The visitor's industry (e.g. 'B2B SaaS', 'E-commerce', 'Marketing Agency')."},
			{Name: "companySize", Label: "your company size", Type: TypeString, Required: true,
				Description: "The number of employees in the company (e.g. '1-10', '50-200')."},
			{Name: "acquisitionFlow", Label: "how you acquire customers", Type: TypeString,
				Description: "A summary of how the company finds and acquires new customers."},
		},
	},
	domain.PhasePainPoints: {
		Phase: domain.PhasePainPoints,
		Fields: []Field{
			{Name: "manualTasks", Label: "the manual tasks slowing you down", Type: TypeString, Required: true,
				Description: "A summary of the manual, repetitive tasks that slow the team down."},
			{Name: "bottlenecks", Label: "where approvals or decisions get stuck", Type: TypeString, Required: true,
				Description: "A summary of which approvals or decisions create bottlenecks."},
			{Name: "dataSilos", Label: "where information gets lost between systems", Type: TypeString, Required: true,
				Description: "A summary of where information gets lost or is not shared between systems or teams."},
		},
	},
	domain.PhaseQualification: {
		Phase: domain.PhaseQualification,
		Fields: []Field{
			{Name: "budget", Label: "your budget range", Type: TypeString, Required: true,
				Description: "The estimated budget for the project (e.g. '$5,000-$15,000')."},
			{Name: "timeline", Label: "your timeline", Type: TypeString, Required: true,
				Description: "The desired timeline for implementation (e.g. 'Within 1 month', '1-3 months')."},
			{Name: "userRole", Label: "your role in the decision", Type: TypeEnum, Required: true,
				Enum:        []string{"decision_maker", "influencer", "consultant", "researcher"},
				Description: "The visitor's role in the buying decision."},
		},
	},
	domain.PhaseEmailRequest: {
		Phase: domain.PhaseEmailRequest,
		Fields: []Field{
			{Name: "name", Label: "your name", Type: TypeString, Required: true,
				Description: "The visitor's full name."},
			{Name: "email", Label: "your email address", Type: TypeString, Required: true,
				Description: "The visitor's email address."},
			{Name: "company", Label: "your company name", Type: TypeString,
				Description: "The visitor's company name."},
		},
	},
}

// SchemaFor returns the extraction contract for a phase. Terminal phases
// have no schema.
func SchemaFor(phase domain.Phase) (Schema, bool) {
	s, ok := schemas[phase]
	return s, ok
}

// RequiredFields lists the names of the phase's required fields, in
// schema order.
func RequiredFields(phase domain.Phase) []string {
	s, ok := schemas[phase]
	if !ok {
		return nil
	}
	var names []string
	for _, f := range s.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// MissingFields lists required fields of the phase not yet present in
// the collected facts.
func MissingFields(phase domain.Phase, facts domain.Facts) []string {
	var missing []string
	for _, name := range RequiredFields(phase) {
		if _, ok := facts[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// MissingLabels returns the human wording for each required field of
// the phase not yet present in the collected facts, for use in
// clarifying questions.
func MissingLabels(phase domain.Phase, facts domain.Facts) []string {
	s, ok := schemas[phase]
	if !ok {
		return nil
	}
	var labels []string
	for _, f := range s.Fields {
		if !f.Required {
			continue
		}
		if _, ok := facts[f.Name]; !ok {
			labels = append(labels, f.Label)
		}
	}
	return labels
}

// Parameters renders the schema as a JSON-schema object suitable for a
// function-tool definition.
func (s Schema) Parameters() map[string]any {
	properties := make(map[string]any, len(s.Fields))
	var required []string
	for _, f := range s.Fields {
		prop := map[string]any{"description": f.Description}
		switch f.Type {
		case TypeNumber:
			prop["type"] = "number"
		case TypeEnum:
			prop["type"] = "string"
			prop["enum"] = f.Enum
		default:
			prop["type"] = "string"
		}
		properties[f.Name] = prop
		if f.Required {
			required = append(required, f.Name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// Validate checks a raw payload against the schema and returns the
// accepted facts. Partial payloads are fine — the engine merges fields
// across turns and only advances once the cumulative facts cover every
// required field — but every present field must have the declared type,
// and a payload carrying no schema field at all is rejected. Unknown
// fields are dropped.
func (s Schema) Validate(raw map[string]any) (domain.Facts, error) {
	facts := make(domain.Facts)
	for _, f := range s.Fields {
		v, ok := raw[f.Name]
		if !ok {
			continue
		}
		switch f.Type {
		case TypeNumber:
			n, ok := v.(float64)
			if !ok {
				return nil, fmt.Errorf("%w: field %q must be a number", ErrInvalidFacts, f.Name)
			}
			facts[f.Name] = n
		case TypeEnum:
			str, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: field %q must be a string", ErrInvalidFacts, f.Name)
			}
			if !contains(f.Enum, str) {
				return nil, fmt.Errorf("%w: field %q has value %q outside %v", ErrInvalidFacts, f.Name, str, f.Enum)
			}
			facts[f.Name] = str
		default:
			str, ok := v.(string)
			if !ok || str == "" {
				return nil, fmt.Errorf("%w: field %q must be a non-empty string", ErrInvalidFacts, f.Name)
			}
			facts[f.Name] = str
		}
	}
	if len(facts) == 0 {
		return nil, fmt.Errorf("%w: payload contains no %s field", ErrInvalidFacts, s.Phase)
	}
	return facts, nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
