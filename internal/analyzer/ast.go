package analyzer

import (
	"github.com/cespare/xxhash/v2"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/nvoss/codelens/pkg/models"
	"github.com/nvoss/codelens/pkg/parser"
)

// ASTAnalyzer walks a syntax tree once, extracting the function and class
// inventory, nesting depths, numeric literals, structural hashes, and a
// best-effort reference graph. Unresolved references are counted, never
// raised as errors.
type ASTAnalyzer struct{}

// NewASTAnalyzer creates an AST analyzer.
func NewASTAnalyzer() *ASTAnalyzer {
	return &ASTAnalyzer{}
}

// nestingTypes are the block-scoping constructs that contribute to nesting
// depth. A node's depth is the number of these among its ancestors.
var nestingTypes = map[string]bool{
	"if_statement":     true,
	"for_statement":    true,
	"for_in_statement": true,
	"while_statement":  true,
	"do_statement":     true,
	"switch_statement": true,
	"try_statement":    true,
}

// declarationTypes are contexts whose numeric literals are exempt from the
// magic-number rule.
var declarationTypes = map[string]bool{
	"variable_declarator":     true,
	"public_field_definition": true,
	"field_definition":        true,
	"enum_assignment":         true,
	"default_parameter":       true,
	"required_parameter":      true,
	"optional_parameter":      true,
}

// Analyze walks the tree once and returns structural metrics.
func (a *ASTAnalyzer) Analyze(result *parser.ParseResult) models.ASTMetrics {
	w := &astWalker{source: result.Source, declared: make(map[string]bool)}
	w.walk(result.Tree.RootNode(), walkState{})

	metrics := models.ASTMetrics{
		Functions: w.functions,
		Classes:   w.classes,
		MaxDepth:  w.maxDepth,
		Literals:  w.literals,
	}

	// Resolution happens after the walk so use-before-declaration (hoisting)
	// still binds. This is name matching, not type-aware binding.
	for _, name := range w.usages {
		if w.declared[name] {
			metrics.ResolvedRefs++
		} else {
			metrics.UnresolvedRefs++
		}
	}

	return metrics
}

// walkState is the per-branch traversal context.
type walkState struct {
	depth         int  // block-scoping ancestors
	inDeclaration bool // inside a declaration initializer
	inDeclName    bool // inside a name-binding position
}

type astWalker struct {
	source []byte

	functions []models.FunctionInfo
	classes   []models.ClassInfo
	literals  []models.NumericLiteral
	maxDepth  int

	declared map[string]bool
	usages   []string
}

func (w *astWalker) walk(node *sitter.Node, state walkState) {
	nodeType := node.Type()

	switch {
	case parser.IsFunctionNode(nodeType):
		w.collectFunction(node, nodeType)
	case nodeType == "class_declaration" || nodeType == "class":
		w.collectClass(node)
	case nodeType == "number":
		w.literals = append(w.literals, models.NumericLiteral{
			Value:         parser.GetNodeText(node, w.source),
			Line:          node.StartPoint().Row + 1,
			Column:        node.StartPoint().Column + 1,
			InDeclaration: state.inDeclaration,
		})
	case nodeType == "identifier" || nodeType == "shorthand_property_identifier":
		name := parser.GetNodeText(node, w.source)
		if state.inDeclName {
			w.declared[name] = true
		} else {
			w.usages = append(w.usages, name)
		}
	}

	if nestingTypes[nodeType] {
		state.depth++
		if state.depth > w.maxDepth {
			w.maxDepth = state.depth
		}
	}
	if declarationTypes[nodeType] {
		state.inDeclaration = true
	}

	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		childState := state
		childState.inDeclName = isBindingPosition(node, nodeType, child)
		w.walk(child, childState)
	}
}

// isBindingPosition reports whether child occupies a name-declaring position
// under node: declarator names, function/class names, parameters, imports.
func isBindingPosition(node *sitter.Node, nodeType string, child *sitter.Node) bool {
	switch nodeType {
	case "variable_declarator", "function_declaration", "generator_function_declaration",
		"class_declaration", "method_definition":
		return node.ChildByFieldName("name") == child
	case "formal_parameters", "required_parameter", "optional_parameter",
		"default_parameter", "rest_pattern", "object_pattern", "array_pattern":
		return true
	case "import_specifier", "namespace_import":
		return true
	case "import_clause":
		return child.Type() == "identifier"
	}
	return false
}

func (w *astWalker) collectFunction(node *sitter.Node, nodeType string) {
	fn := models.FunctionInfo{
		StartLine: node.StartPoint().Row + 1,
		EndLine:   node.EndPoint().Row + 1,
	}

	extracted := extractName(node, w.source)
	if extracted == "" {
		extracted = "<anonymous>"
	}
	fn.Name = extracted

	if body := node.ChildByFieldName("body"); body != nil {
		fn.BodyLines = int(body.EndPoint().Row-body.StartPoint().Row) + 1
		fn.NestingDepth = maxNesting(body, 0)
		fn.StructuralHash = structuralHash(body)
	}

	w.functions = append(w.functions, fn)
}

func (w *astWalker) collectClass(node *sitter.Node) {
	cls := models.ClassInfo{
		Name:      parser.GetNodeText(node.ChildByFieldName("name"), w.source),
		StartLine: node.StartPoint().Row + 1,
		EndLine:   node.EndPoint().Row + 1,
	}

	if body := node.ChildByFieldName("body"); body != nil {
		for i := range int(body.ChildCount()) {
			if body.Child(i).Type() == "method_definition" {
				cls.Methods++
			}
		}
	}

	w.classes = append(w.classes, cls)
}

func extractName(node *sitter.Node, source []byte) string {
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		return parser.GetNodeText(nameNode, source)
	}

	parent := node.Parent()
	if parent == nil {
		return ""
	}
	switch parent.Type() {
	case "variable_declarator":
		return parser.GetNodeText(parent.ChildByFieldName("name"), source)
	case "pair":
		return parser.GetNodeText(parent.ChildByFieldName("key"), source)
	case "assignment_expression":
		return parser.GetNodeText(parent.ChildByFieldName("left"), source)
	case "public_field_definition", "field_definition":
		return parser.GetNodeText(parent.ChildByFieldName("name"), source)
	}
	return ""
}

// maxNesting finds the maximum block-scoping depth below node.
func maxNesting(node *sitter.Node, currentDepth int) int {
	maxDepth := currentDepth

	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		childDepth := currentDepth
		if nestingTypes[child.Type()] {
			childDepth++
		}
		if d := maxNesting(child, childDepth); d > maxDepth {
			maxDepth = d
		}
	}

	return maxDepth
}

// structuralHash fingerprints the shape of a subtree: named node types in
// pre-order, names and literal values excluded. Two bodies with the same
// hash are structural duplicates of one another.
func structuralHash(node *sitter.Node) uint64 {
	digest := xxhash.New()
	hashShape(node, digest)
	return digest.Sum64()
}

func hashShape(node *sitter.Node, digest *xxhash.Digest) {
	digest.WriteString(node.Type())
	digest.WriteString("(")
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		if !child.IsNamed() {
			continue
		}
		hashShape(child, digest)
	}
	digest.WriteString(")")
}
