package analyzer

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/nvoss/codelens/pkg/models"
	"github.com/nvoss/codelens/pkg/parser"
)

// ComplexityAnalyzer computes cyclomatic and cognitive complexity per
// function. Both traversals stop at nested function boundaries: inner
// functions carry their own entries.
type ComplexityAnalyzer struct{}

// NewComplexityAnalyzer creates a complexity analyzer.
func NewComplexityAnalyzer() *ComplexityAnalyzer {
	return &ComplexityAnalyzer{}
}

// Analyze returns one entry per function found in the tree. Cyclomatic
// complexity is 1 + decision points; a function with no branches has exactly
// one path.
func (a *ComplexityAnalyzer) Analyze(result *parser.ParseResult) []models.ComplexityMetrics {
	functions := parser.GetFunctions(result)
	metrics := make([]models.ComplexityMetrics, 0, len(functions))

	for _, fn := range functions {
		m := models.ComplexityMetrics{
			Function:   fn.Name,
			StartLine:  fn.StartLine,
			EndLine:    fn.EndLine,
			Cyclomatic: 1,
			Lines:      int(fn.EndLine - fn.StartLine + 1),
		}

		if fn.Body != nil {
			m.Cyclomatic += countDecisionPoints(fn.Body, result.Source)
			m.Cognitive = cognitiveComplexity(fn.Body, result.Source, 0, false)
			m.NestingDepth = maxNesting(fn.Body, 0)
		}

		metrics = append(metrics, m)
	}

	return metrics
}

// decisionTypes are the JS/TS node types counted as decision points:
// branches, loops, cases, catches, and ternaries.
var decisionTypes = map[string]bool{
	"if_statement":       true,
	"for_statement":      true,
	"for_in_statement":   true,
	"while_statement":    true,
	"do_statement":       true,
	"switch_case":        true,
	"catch_clause":       true,
	"ternary_expression": true,
}

// cognitiveNesting are constructs that increment the nesting penalty for
// everything beneath them.
var cognitiveNesting = map[string]bool{
	"if_statement":       true,
	"for_statement":      true,
	"for_in_statement":   true,
	"while_statement":    true,
	"do_statement":       true,
	"switch_statement":   true,
	"catch_clause":       true,
	"ternary_expression": true,
}

// cognitiveFlat are constructs that add complexity without nesting.
var cognitiveFlat = map[string]bool{
	"break_statement":    true,
	"continue_statement": true,
	"labeled_statement":  true,
}

// countDecisionPoints counts branching constructs for cyclomatic complexity.
// Logical short-circuit operators (&& and ||) count as additional decision
// points; nested function bodies are excluded.
func countDecisionPoints(node *sitter.Node, source []byte) uint32 {
	var count uint32

	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		childType := child.Type()

		if parser.IsFunctionNode(childType) {
			continue
		}
		if decisionTypes[childType] {
			// An empty switch_case is the default clause; it adds no branch.
			if childType != "switch_case" || child.ChildByFieldName("value") != nil {
				count++
			}
		}
		if childType == "binary_expression" && isShortCircuit(child, source) {
			count++
		}

		count += countDecisionPoints(child, source)
	}

	return count
}

// isShortCircuit reports whether a binary expression's operator is && or ||.
func isShortCircuit(node *sitter.Node, source []byte) bool {
	op := parser.GetNodeText(node.ChildByFieldName("operator"), source)
	return op == "&&" || op == "||"
}

// cognitiveComplexity computes nesting-weighted complexity: each decision
// point adds its base weight plus the current nesting level, so sequential
// structure is free while nested branching compounds. else-if chains count
// as a single level, matching how readers follow them.
func cognitiveComplexity(node *sitter.Node, source []byte, depth int, afterElse bool) uint32 {
	var complexity uint32
	var sawElse bool

	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		childType := child.Type()

		if childType == "else" {
			sawElse = true
			continue
		}
		if parser.IsFunctionNode(childType) {
			sawElse = false
			continue
		}

		switch {
		case childType == "if_statement" && (sawElse || afterElse):
			// else-if: base weight only, no extra nesting penalty.
			complexity++
			complexity += cognitiveComplexity(child, source, depth, false)
		case cognitiveNesting[childType]:
			complexity++
			complexity += uint32(depth)
			complexity += cognitiveComplexity(child, source, depth+1, false)
		case cognitiveFlat[childType]:
			complexity++
			complexity += cognitiveComplexity(child, source, depth, false)
		case childType == "binary_expression":
			if isShortCircuit(child, source) {
				complexity++
			}
			complexity += cognitiveComplexity(child, source, depth, false)
		case childType == "else_clause":
			complexity += cognitiveComplexity(child, source, depth, true)
		default:
			complexity += cognitiveComplexity(child, source, depth, sawElse)
		}
		sawElse = false
	}

	return complexity
}
