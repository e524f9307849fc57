// Package report renders a ProjectResult into its serialized forms. Output
// is a pure function of the result: generating twice from the same value
// yields byte-identical output.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	toon "github.com/toon-format/toon-go"

	"github.com/nvoss/codelens/internal/output"
	"github.com/nvoss/codelens/pkg/config"
	"github.com/nvoss/codelens/pkg/models"
)

// Generate serializes the result in the requested format. Unknown formats
// fail with a ConfigurationError; there is no silent fallback.
func Generate(result *models.ProjectResult, format string) ([]byte, error) {
	f, err := output.ParseFormat(format)
	if err != nil {
		return nil, &config.ConfigurationError{Field: "output.format", Reason: err.Error()}
	}

	switch f {
	case output.FormatJSON:
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case output.FormatTOON:
		out, err := toon.Marshal(result, toon.WithIndent(2))
		if err != nil {
			return nil, err
		}
		return append([]byte(out), '\n'), nil
	case output.FormatMarkdown:
		return renderSections(result, func(r output.Renderable, buf *bytes.Buffer) error {
			return r.RenderMarkdown(buf)
		})
	default:
		return renderSections(result, func(r output.Renderable, buf *bytes.Buffer) error {
			return r.RenderText(buf, false)
		})
	}
}

// GenerateColored renders the text format with terminal colors for direct
// console output. Colored output is a display concern and exempt from the
// byte-determinism contract.
func GenerateColored(result *models.ProjectResult) ([]byte, error) {
	var buf bytes.Buffer
	for _, section := range sections(result) {
		if err := section.RenderText(&buf, true); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func renderSections(result *models.ProjectResult, render func(output.Renderable, *bytes.Buffer) error) ([]byte, error) {
	var buf bytes.Buffer
	for _, section := range sections(result) {
		if err := render(section, &buf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// sections builds the report structure. The result's slices are already
// sorted with fully specified tie-breaks, so iteration order is stable.
func sections(result *models.ProjectResult) []output.Renderable {
	var parts []output.Renderable

	parts = append(parts, summarySection(result))
	parts = append(parts, histogramTable(result))

	if len(result.WorstFiles) > 0 {
		parts = append(parts, worstFilesTable(result))
	}
	if issues := issuesTable(result); issues != nil {
		parts = append(parts, issues)
	}
	if len(result.Failures) > 0 {
		parts = append(parts, failuresTable(result))
	}

	return parts
}

func summarySection(result *models.ProjectResult) output.Renderable {
	s := result.Summary
	lines := []string{
		fmt.Sprintf("Analyzed:       %d files (%d functions, %d classes)", s.TotalFiles, s.TotalFunctions, s.TotalClasses),
		fmt.Sprintf("Failed:         %d files", len(result.Failures)),
		fmt.Sprintf("Skipped:        %d files", len(result.Skipped)),
		fmt.Sprintf("Lines:          %d total, %d code", s.TotalLines, s.TotalCodeLines),
		fmt.Sprintf("Quality score:  %.1f / 100 (%d issues)", s.AvgScore, s.TotalIssues),
		fmt.Sprintf("Cyclomatic:     avg %.2f, p50 %.0f, p90 %.0f, p95 %.0f, max %d",
			s.AvgCyclomatic, s.P50Cyclomatic, s.P90Cyclomatic, s.P95Cyclomatic, s.MaxCyclomatic),
		fmt.Sprintf("Cognitive:      avg %.2f, max %d", s.AvgCognitive, s.MaxCognitive),
		fmt.Sprintf("Cache hits:     %d", result.CacheHits),
	}
	if result.Incomplete {
		lines = append(lines, "NOTE: run was cancelled; results are partial")
	}
	return &output.Section{Title: "Project Summary", Lines: lines}
}

func histogramTable(result *models.ProjectResult) output.Renderable {
	rows := make([][]string, 0, len(result.Histogram))
	for _, bucket := range result.Histogram {
		rows = append(rows, []string{bucket.Label, fmt.Sprintf("%d", bucket.Count)})
	}
	return &output.Table{
		Title:   "Complexity Distribution",
		Headers: []string{"Cyclomatic", "Functions"},
		Rows:    rows,
	}
}

func worstFilesTable(result *models.ProjectResult) output.Renderable {
	rows := make([][]string, 0, len(result.WorstFiles))
	for _, file := range result.WorstFiles {
		rows = append(rows, []string{
			file.Path,
			fmt.Sprintf("%.1f", file.Score),
			fmt.Sprintf("%d", file.Issues),
		})
	}
	return &output.Table{
		Title:   "Worst Files",
		Headers: []string{"File", "Score", "Issues"},
		Rows:    rows,
	}
}

func issuesTable(result *models.ProjectResult) output.Renderable {
	var rows [][]string
	for _, file := range result.Files {
		for _, issue := range file.Quality.Issues {
			rows = append(rows, []string{
				issue.Location.String(),
				string(issue.Severity),
				string(issue.Rule),
				issue.Message,
			})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return &output.Table{
		Title:   "Issues",
		Headers: []string{"Location", "Severity", "Rule", "Message"},
		Rows:    rows,
	}
}

func failuresTable(result *models.ProjectResult) output.Renderable {
	rows := make([][]string, 0, len(result.Failures))
	for _, failure := range result.Failures {
		loc := failure.Path
		if failure.Line > 0 {
			loc = fmt.Sprintf("%s:%d:%d", failure.Path, failure.Line, failure.Column)
		}
		rows = append(rows, []string{loc, failure.Reason})
	}
	return &output.Table{
		Title:   "Failed to Parse",
		Headers: []string{"Location", "Reason"},
		Rows:    rows,
	}
}
