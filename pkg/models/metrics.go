// Package models defines the value types shared by the analyzers and report
// layers. Results are immutable once constructed; a changed source file
// produces a new fingerprint and a new result, never an in-place update.
package models

// BasicMetrics are lexical facts computed from raw text without parsing.
type BasicMetrics struct {
	TotalLines    int `json:"total_lines"`
	CodeLines     int `json:"code_lines"`
	CommentLines  int `json:"comment_lines"`
	BlankLines    int `json:"blank_lines"`
	LongestLine   int `json:"longest_line"`
	CamelCase     int `json:"camel_case_identifiers"`
	SnakeCase     int `json:"snake_case_identifiers"`
	ScreamingCase int `json:"screaming_case_identifiers"`
}

// FunctionInfo describes one function found by the AST walk.
type FunctionInfo struct {
	Name           string `json:"name"`
	StartLine      uint32 `json:"start_line"`
	EndLine        uint32 `json:"end_line"`
	BodyLines      int    `json:"body_lines"`
	NestingDepth   int    `json:"nesting_depth"`
	StructuralHash uint64 `json:"structural_hash"`
}

// ClassInfo describes one class found by the AST walk.
type ClassInfo struct {
	Name      string `json:"name"`
	StartLine uint32 `json:"start_line"`
	EndLine   uint32 `json:"end_line"`
	Methods   int    `json:"methods"`
}

// NumericLiteral records a number literal and whether it appeared inside a
// declaration initializer (declaration literals are exempt from the
// magic-number rule).
type NumericLiteral struct {
	Value         string `json:"value"`
	Line          uint32 `json:"line"`
	Column        uint32 `json:"column"`
	InDeclaration bool   `json:"in_declaration"`
}

// ASTMetrics are structural facts from a single AST walk.
type ASTMetrics struct {
	Functions []FunctionInfo   `json:"functions"`
	Classes   []ClassInfo      `json:"classes"`
	MaxDepth  int              `json:"max_depth"`
	Literals  []NumericLiteral `json:"literals,omitempty"`

	// Reference resolution is best-effort name binding, not type-aware.
	ResolvedRefs   int `json:"resolved_refs"`
	UnresolvedRefs int `json:"unresolved_refs"`
}

// ComplexityMetrics holds per-function complexity measurements.
// Cyclomatic is always >= 1: one execution path exists for any function.
type ComplexityMetrics struct {
	Function     string `json:"function"`
	StartLine    uint32 `json:"start_line"`
	EndLine      uint32 `json:"end_line"`
	Cyclomatic   uint32 `json:"cyclomatic"`
	Cognitive    uint32 `json:"cognitive"`
	NestingDepth int    `json:"nesting_depth"`
	Lines        int    `json:"lines"`
}
