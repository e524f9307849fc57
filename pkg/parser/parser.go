// Package parser wraps tree-sitter for JavaScript and TypeScript parsing.
package parser

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language represents a supported source language.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangUnknown    Language = "unknown"
)

// utf8BOM is stripped before parsing so byte offsets line up with columns.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseError describes a syntax error localized to one file.
// Parsing is all-or-nothing: no partial tree is returned alongside it.
type ParseError struct {
	Path   string
	Line   uint32 // 1-based
	Column uint32 // 1-based
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Reason)
}

// Parser wraps a tree-sitter parser. Not safe for concurrent use;
// create one per goroutine (see internal/fileproc).
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the parsed AST and the source it was built from.
// The tree is a pure function of Source: parsing identical bytes yields
// structurally identical trees.
type ParseResult struct {
	Tree     *sitter.Tree
	Language Language
	Source   []byte
	Path     string
}

// New creates a new parser instance.
func New() *Parser {
	return &Parser{parser: sitter.NewParser()}
}

// ParseFile reads and parses a source file.
func (p *Parser) ParseFile(path string) (*ParseResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	lang := DetectLanguage(path)
	if lang == LangUnknown {
		return nil, fmt.Errorf("unsupported language for file: %s", path)
	}

	return p.Parse(source, lang, path)
}

// Parse parses source bytes with a specified language. A leading UTF-8 BOM
// is stripped; empty input parses to an empty program.
func (p *Parser) Parse(source []byte, lang Language, path string) (*ParseResult, error) {
	source = bytes.TrimPrefix(source, utf8BOM)

	tsLang, err := grammarFor(lang)
	if err != nil {
		return nil, err
	}

	p.parser.SetLanguage(tsLang)
	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}

	if perr := firstSyntaxError(tree.RootNode(), path); perr != nil {
		tree.Close()
		return nil, perr
	}

	return &ParseResult{
		Tree:     tree,
		Language: lang,
		Source:   source,
		Path:     path,
	}, nil
}

// firstSyntaxError scans the tree for ERROR or MISSING nodes and reports the
// earliest one. tree-sitter always produces a tree; rejecting here gives the
// all-or-nothing contract.
func firstSyntaxError(root *sitter.Node, path string) *ParseError {
	if !root.HasError() {
		return nil
	}

	var found *sitter.Node
	var reason string
	Walk(root, nil, func(node *sitter.Node, _ []byte) bool {
		if found != nil {
			return false
		}
		if node.IsError() {
			found = node
			reason = "syntax error"
			return false
		}
		if node.IsMissing() {
			found = node
			reason = fmt.Sprintf("missing %s", node.Type())
			return false
		}
		return true
	})

	if found == nil {
		// HasError with no reachable ERROR node; report at the root.
		found = root
		reason = "syntax error"
	}

	return &ParseError{
		Path:   path,
		Line:   found.StartPoint().Row + 1,
		Column: found.StartPoint().Column + 1,
		Reason: reason,
	}
}

// grammarFor returns the tree-sitter grammar for a language.
func grammarFor(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// DetectLanguage determines the language from a file path.
func DetectLanguage(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".mjs", ".cjs":
		return LangJavaScript
	case ".ts", ".mts", ".cts":
		return LangTypeScript
	case ".tsx":
		return LangTSX
	case ".jsx":
		return LangTSX // the TSX grammar is a superset of JSX
	default:
		return LangUnknown
	}
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// Close releases the parse tree.
func (r *ParseResult) Close() {
	if r.Tree != nil {
		r.Tree.Close()
	}
}

// NodeVisitor is a function that visits AST nodes.
type NodeVisitor func(node *sitter.Node, source []byte) bool

// TypedNodeVisitor visits AST nodes with pre-cached node type to avoid CGO overhead.
type TypedNodeVisitor func(node *sitter.Node, nodeType string, source []byte) bool

// Walk traverses the AST calling visitor for each node.
func Walk(node *sitter.Node, source []byte, visitor NodeVisitor) {
	if node == nil {
		return
	}

	if !visitor(node, source) {
		return
	}

	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), source, visitor)
	}
}

// WalkTyped traverses the AST with cached node types to reduce CGO overhead.
// Use this when you need to check node types frequently.
func WalkTyped(node *sitter.Node, source []byte, visitor TypedNodeVisitor) {
	if node == nil {
		return
	}

	nodeType := node.Type() // Cache the type once per node
	if !visitor(node, nodeType, source) {
		return
	}

	for i := range int(node.ChildCount()) {
		WalkTyped(node.Child(i), source, visitor)
	}
}

// GetNodeText extracts the source text for a node.
// Returns empty string if node is nil or byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}
