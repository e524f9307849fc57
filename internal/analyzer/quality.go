package analyzer

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/nvoss/codelens/pkg/config"
	"github.com/nvoss/codelens/pkg/models"
)

// QualityAnalyzer combines basic, AST, and complexity metrics into a quality
// score with issues. The score is a weighted deduction model: start at 100,
// subtract a configured penalty per rule occurrence, clamp to [0,100].
type QualityAnalyzer struct {
	thresholds config.ThresholdConfig
	penalties  config.PenaltyConfig
	allowList  map[float64]bool
}

// minDuplicateBodyLines keeps trivial one-liner bodies (getters, delegating
// arrow functions) out of the duplicate-structure rule.
const minDuplicateBodyLines = 3

// NewQualityAnalyzer creates a quality analyzer from configuration. The
// configuration is immutable for the analyzer's lifetime, keeping per-run
// results reproducible.
func NewQualityAnalyzer(cfg *config.Config) *QualityAnalyzer {
	allowList := make(map[float64]bool, len(cfg.MagicNumberAllowList))
	for _, v := range cfg.MagicNumberAllowList {
		allowList[v] = true
	}
	return &QualityAnalyzer{
		thresholds: cfg.Thresholds,
		penalties:  cfg.Penalties,
		allowList:  allowList,
	}
}

// Analyze evaluates every rule and returns the composite result. Each
// violated rule emits one issue per occurrence, so a file can accumulate
// many issues of the same rule.
func (a *QualityAnalyzer) Analyze(path string, basic models.BasicMetrics, ast models.ASTMetrics, complexity []models.ComplexityMetrics) models.QualityMetrics {
	var issues []models.Issue

	issues = append(issues, a.functionRules(path, complexity)...)
	issues = append(issues, a.magicNumbers(path, ast.Literals)...)
	issues = append(issues, a.duplicateStructure(path, ast.Functions)...)

	score := 100.0
	for _, issue := range issues {
		score -= a.penaltyFor(issue.Rule)
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Location.Line != issues[j].Location.Line {
			return issues[i].Location.Line < issues[j].Location.Line
		}
		if issues[i].Rule != issues[j].Rule {
			return issues[i].Rule < issues[j].Rule
		}
		return issues[i].Location.Column < issues[j].Location.Column
	})

	return models.QualityMetrics{Score: score, Issues: issues}
}

func (a *QualityAnalyzer) functionRules(path string, complexity []models.ComplexityMetrics) []models.Issue {
	var issues []models.Issue

	for _, fn := range complexity {
		loc := models.Location{File: path, Line: fn.StartLine, EndLine: fn.EndLine}

		if fn.Lines > a.thresholds.MaxFunctionLines {
			issues = append(issues, models.Issue{
				Rule:     models.RuleLongFunction,
				Severity: models.SeverityWarning,
				Location: loc,
				Message:  fmt.Sprintf("function %s is %d lines long (max %d)", fn.Function, fn.Lines, a.thresholds.MaxFunctionLines),
			})
		}
		if fn.NestingDepth > a.thresholds.MaxNestingDepth {
			issues = append(issues, models.Issue{
				Rule:     models.RuleDeepNesting,
				Severity: models.SeverityWarning,
				Location: loc,
				Message:  fmt.Sprintf("function %s nests %d levels deep (max %d)", fn.Function, fn.NestingDepth, a.thresholds.MaxNestingDepth),
			})
		}
		if fn.Cyclomatic > uint32(a.thresholds.MaxCyclomaticComplexity) {
			issues = append(issues, models.Issue{
				Rule:     models.RuleHighCyclomatic,
				Severity: models.SeverityError,
				Location: loc,
				Message:  fmt.Sprintf("function %s has cyclomatic complexity %d (max %d)", fn.Function, fn.Cyclomatic, a.thresholds.MaxCyclomaticComplexity),
			})
		}
		if fn.Cognitive > uint32(a.thresholds.MaxCognitiveComplexity) {
			issues = append(issues, models.Issue{
				Rule:     models.RuleHighCognitive,
				Severity: models.SeverityError,
				Location: loc,
				Message:  fmt.Sprintf("function %s has cognitive complexity %d (max %d)", fn.Function, fn.Cognitive, a.thresholds.MaxCognitiveComplexity),
			})
		}
	}

	return issues
}

func (a *QualityAnalyzer) magicNumbers(path string, literals []models.NumericLiteral) []models.Issue {
	var issues []models.Issue

	for _, lit := range literals {
		if lit.InDeclaration {
			continue
		}
		value, err := strconv.ParseFloat(lit.Value, 64)
		if err != nil {
			// Hex, binary, and bigint literals are deliberate notation, not
			// magic numbers.
			continue
		}
		if a.allowList[value] {
			continue
		}
		issues = append(issues, models.Issue{
			Rule:     models.RuleMagicNumber,
			Severity: models.SeverityInfo,
			Location: models.Location{File: path, Line: lit.Line, Column: lit.Column},
			Message:  fmt.Sprintf("magic number %s; extract a named constant", lit.Value),
		})
	}

	return issues
}

func (a *QualityAnalyzer) duplicateStructure(path string, functions []models.FunctionInfo) []models.Issue {
	firstByHash := make(map[uint64]models.FunctionInfo)
	var issues []models.Issue

	for _, fn := range functions {
		if fn.StructuralHash == 0 || fn.BodyLines < minDuplicateBodyLines {
			continue
		}
		first, seen := firstByHash[fn.StructuralHash]
		if !seen {
			firstByHash[fn.StructuralHash] = fn
			continue
		}
		issues = append(issues, models.Issue{
			Rule:     models.RuleDuplicateStructure,
			Severity: models.SeverityWarning,
			Location: models.Location{File: path, Line: fn.StartLine, EndLine: fn.EndLine},
			Message:  fmt.Sprintf("function %s duplicates the structure of %s (line %d)", fn.Name, first.Name, first.StartLine),
		})
	}

	return issues
}

func (a *QualityAnalyzer) penaltyFor(rule models.RuleID) float64 {
	switch rule {
	case models.RuleLongFunction:
		return a.penalties.LongFunction
	case models.RuleDeepNesting:
		return a.penalties.DeepNesting
	case models.RuleHighCyclomatic:
		return a.penalties.HighCyclomatic
	case models.RuleHighCognitive:
		return a.penalties.HighCognitive
	case models.RuleMagicNumber:
		return a.penalties.MagicNumber
	case models.RuleDuplicateStructure:
		return a.penalties.DuplicateStructure
	default:
		return 0
	}
}
