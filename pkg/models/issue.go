package models

import "fmt"

// Severity represents the severity level of an issue.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// RuleID identifies a quality rule. The rule set is closed.
type RuleID string

const (
	RuleLongFunction       RuleID = "long-function"
	RuleDeepNesting        RuleID = "deep-nesting"
	RuleHighCyclomatic     RuleID = "high-cyclomatic"
	RuleHighCognitive      RuleID = "high-cognitive"
	RuleMagicNumber        RuleID = "magic-number"
	RuleDuplicateStructure RuleID = "duplicate-structure"
)

// Location points at a range in a source file. Columns are 1-based;
// EndColumn is zero when the rule applies to whole lines.
type Location struct {
	File      string `json:"file"`
	Line      uint32 `json:"line"`
	Column    uint32 `json:"column,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndColumn uint32 `json:"end_column,omitempty"`
}

func (l Location) String() string {
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Issue is a single rule violation attached to a location. Issues are pure
// facts: a file accumulates one issue per occurrence, never one per rule.
type Issue struct {
	Rule     RuleID   `json:"rule"`
	Severity Severity `json:"severity"`
	Location Location `json:"location"`
	Message  string   `json:"message"`
}

// QualityMetrics is the composite quality result for one file.
// Score uses a weighted deduction model clamped to [0,100].
type QualityMetrics struct {
	Score  float64 `json:"score"`
	Issues []Issue `json:"issues"`
}
