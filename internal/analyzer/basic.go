// Package analyzer implements the per-file and project analysis pipeline.
package analyzer

import (
	"strings"
	"unicode"

	"github.com/nvoss/codelens/pkg/models"
)

// BasicAnalyzer computes lexical metrics from raw text. It is a pure function
// of its input and never fails on valid UTF-8.
type BasicAnalyzer struct{}

// NewBasicAnalyzer creates a basic analyzer.
func NewBasicAnalyzer() *BasicAnalyzer {
	return &BasicAnalyzer{}
}

// Analyze scans source text line by line. Block comments are tracked across
// lines; a line holding both code and a comment counts as code.
func (a *BasicAnalyzer) Analyze(source []byte) models.BasicMetrics {
	var m models.BasicMetrics

	inBlockComment := false
	for _, line := range splitLines(string(source)) {
		m.TotalLines++
		if len(line) > m.LongestLine {
			m.LongestLine = len(line)
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			m.BlankLines++
		case inBlockComment:
			m.CommentLines++
			if idx := strings.Index(trimmed, "*/"); idx >= 0 {
				inBlockComment = false
				rest := strings.TrimSpace(trimmed[idx+2:])
				if rest != "" && !strings.HasPrefix(rest, "//") {
					m.CommentLines--
					m.CodeLines++
				}
			}
		case strings.HasPrefix(trimmed, "//"):
			m.CommentLines++
		case strings.HasPrefix(trimmed, "/*"):
			m.CommentLines++
			if !strings.Contains(trimmed, "*/") {
				inBlockComment = true
			}
		default:
			m.CodeLines++
			if idx := strings.Index(trimmed, "/*"); idx >= 0 && !strings.Contains(trimmed[idx:], "*/") {
				inBlockComment = true
			}
		}

		countNamingStyles(trimmed, &m)
	}

	return m
}

// splitLines splits on \n and tolerates \r\n line endings.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	// A trailing newline does not start a new line.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// countNamingStyles tallies identifier naming conventions in a line of text.
// This is a lexical approximation: words are runs of letters, digits, and
// underscores starting with a letter or underscore.
func countNamingStyles(line string, m *models.BasicMetrics) {
	for _, word := range identifierWords(line) {
		switch {
		case isScreamingCase(word):
			m.ScreamingCase++
		case strings.Contains(word, "_"):
			m.SnakeCase++
		case hasInnerUpper(word):
			m.CamelCase++
		}
	}
}

func identifierWords(line string) []string {
	var words []string
	var current strings.Builder
	for _, r := range line {
		if unicode.IsLetter(r) || r == '_' || (current.Len() > 0 && unicode.IsDigit(r)) {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 1 {
			words = append(words, current.String())
		}
		current.Reset()
	}
	if current.Len() > 1 {
		words = append(words, current.String())
	}
	return words
}

func isScreamingCase(word string) bool {
	hasUpper := false
	for _, r := range word {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	return hasUpper && strings.Contains(word, "_")
}

func hasInnerUpper(word string) bool {
	for i, r := range word {
		if i > 0 && unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
