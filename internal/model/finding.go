package model

// Severity grades a finding. Values sort low < medium < high.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Evidence is one concrete occurrence backing a finding: a flat record of
// presentation-ready values (timestamps as RFC 3339 strings, numbers as-is).
type Evidence map[string]any

// Finding is the structured output of a single clinical rule. Produced fresh
// on every analysis call and never mutated after construction. A rule with
// zero qualifying occurrences produces no Finding at all.
type Finding struct {
	Rule                 string     `json:"rule"`
	Severity             Severity   `json:"severity"`
	Count                int        `json:"count"`
	Description          string     `json:"description"`
	ClinicalSignificance string     `json:"clinicalSignificance"`
	Evidence             []Evidence `json:"evidence"`
}
