package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// FunctionNode represents a parsed function or method.
type FunctionNode struct {
	Name      string
	StartLine uint32
	EndLine   uint32
	Body      *sitter.Node
	Node      *sitter.Node
}

// ClassNode represents a parsed class.
type ClassNode struct {
	Name      string
	StartLine uint32
	EndLine   uint32
	Node      *sitter.Node
}

// functionNodeTypes are the JS/TS AST node types that declare a function.
var functionNodeTypes = map[string]bool{
	"function_declaration":           true,
	"function_expression":            true,
	"function":                       true, // older grammar name for function_expression
	"generator_function":             true,
	"generator_function_declaration": true,
	"arrow_function":                 true,
	"method_definition":              true,
}

// classNodeTypes are the JS/TS AST node types that declare a class.
var classNodeTypes = map[string]bool{
	"class_declaration": true,
	"class":             true,
}

// IsFunctionNode reports whether a node type declares a function.
func IsFunctionNode(nodeType string) bool {
	return functionNodeTypes[nodeType]
}

// GetFunctions extracts all function definitions from parsed code,
// including methods, function expressions, and arrow functions.
func GetFunctions(result *ParseResult) []FunctionNode {
	var functions []FunctionNode

	WalkTyped(result.Tree.RootNode(), result.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		if functionNodeTypes[nodeType] {
			functions = append(functions, extractFunction(node, source))
		}
		return true
	})

	return functions
}

// extractFunction extracts function details from an AST node.
func extractFunction(node *sitter.Node, source []byte) FunctionNode {
	fn := FunctionNode{
		StartLine: node.StartPoint().Row + 1,
		EndLine:   node.EndPoint().Row + 1,
		Node:      node,
	}

	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		fn.Name = GetNodeText(nameNode, source)
	}
	if fn.Name == "" {
		fn.Name = inferAssignedName(node, source)
	}
	if fn.Name == "" {
		fn.Name = "<anonymous>"
	}

	fn.Body = node.ChildByFieldName("body")
	return fn
}

// inferAssignedName names anonymous functions after the variable, property,
// or parameter they are bound to: `const f = () => {}` yields "f".
func inferAssignedName(node *sitter.Node, source []byte) string {
	parent := node.Parent()
	if parent == nil {
		return ""
	}

	switch parent.Type() {
	case "variable_declarator":
		return GetNodeText(parent.ChildByFieldName("name"), source)
	case "pair":
		return GetNodeText(parent.ChildByFieldName("key"), source)
	case "assignment_expression":
		return GetNodeText(parent.ChildByFieldName("left"), source)
	case "public_field_definition", "field_definition":
		return GetNodeText(parent.ChildByFieldName("name"), source)
	}
	return ""
}

// GetClasses extracts all class definitions from parsed code.
func GetClasses(result *ParseResult) []ClassNode {
	var classes []ClassNode

	WalkTyped(result.Tree.RootNode(), result.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		if classNodeTypes[nodeType] {
			cls := ClassNode{
				StartLine: node.StartPoint().Row + 1,
				EndLine:   node.EndPoint().Row + 1,
				Node:      node,
			}
			if nameNode := node.ChildByFieldName("name"); nameNode != nil {
				cls.Name = GetNodeText(nameNode, source)
			}
			classes = append(classes, cls)
		}
		return true
	})

	return classes
}
