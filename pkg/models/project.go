package models

import "sort"

// FileResult is the per-file aggregate of every analyzer's output. It is
// cached under the file's content fingerprint and immutable after creation.
type FileResult struct {
	Path        string              `json:"path"`
	Language    string              `json:"language"`
	Fingerprint string              `json:"fingerprint"`
	Basic       BasicMetrics        `json:"basic"`
	AST         ASTMetrics          `json:"ast"`
	Complexity  []ComplexityMetrics `json:"complexity"`
	Quality     QualityMetrics      `json:"quality"`
}

// WithPath returns a copy of the result reported under a different relative
// path. Cached results are shared across byte-identical files, so every
// path-bearing field moves together; the issue slice is copied to keep the
// cached value untouched.
func (r FileResult) WithPath(rel string) FileResult {
	r.Path = rel
	if len(r.Quality.Issues) > 0 {
		issues := make([]Issue, len(r.Quality.Issues))
		copy(issues, r.Quality.Issues)
		for i := range issues {
			issues[i].Location.File = rel
		}
		r.Quality.Issues = issues
	}
	return r
}

// FileFailure records a file excluded from aggregates by a parse failure.
type FileFailure struct {
	Path   string `json:"path"`
	Line   uint32 `json:"line,omitempty"`
	Column uint32 `json:"column,omitempty"`
	Reason string `json:"reason"`
}

// ComplexityBucket is one bar of the project complexity histogram.
type ComplexityBucket struct {
	Label string `json:"label"`
	Min   uint32 `json:"min"`
	Max   uint32 `json:"max"` // 0 means unbounded
	Count int    `json:"count"`
}

// RankedFile is a worst-offender entry, ordered by score ascending then path.
type RankedFile struct {
	Path   string  `json:"path"`
	Score  float64 `json:"score"`
	Issues int     `json:"issues"`
}

// ProjectSummary holds totals and distribution statistics over all
// successfully analyzed files.
type ProjectSummary struct {
	TotalFiles     int     `json:"total_files"`
	TotalFunctions int     `json:"total_functions"`
	TotalClasses   int     `json:"total_classes"`
	TotalLines     int     `json:"total_lines"`
	TotalCodeLines int     `json:"total_code_lines"`
	TotalIssues    int     `json:"total_issues"`
	AvgScore       float64 `json:"avg_score"`
	AvgCyclomatic  float64 `json:"avg_cyclomatic"`
	AvgCognitive   float64 `json:"avg_cognitive"`
	MaxCyclomatic  uint32  `json:"max_cyclomatic"`
	MaxCognitive   uint32  `json:"max_cognitive"`
	P50Cyclomatic  float64 `json:"p50_cyclomatic"`
	P90Cyclomatic  float64 `json:"p90_cyclomatic"`
	P95Cyclomatic  float64 `json:"p95_cyclomatic"`
}

// ProjectResult aggregates a complete analysis run. It is built once from an
// immutable snapshot of per-file results; the report layer must be able to
// rely on its ordering, so the slices are fully sorted at construction.
type ProjectResult struct {
	Root       string             `json:"root"`
	Files      []FileResult       `json:"files"`
	Failures   []FileFailure      `json:"failures,omitempty"`
	Skipped    []string           `json:"skipped,omitempty"`
	Summary    ProjectSummary     `json:"summary"`
	Histogram  []ComplexityBucket `json:"histogram"`
	WorstFiles []RankedFile       `json:"worst_files"`
	Incomplete bool               `json:"incomplete,omitempty"`
	CacheHits  int                `json:"cache_hits"`
}

// SortStable orders every slice with a fully specified tie-break so that
// report generation is byte-deterministic for identical inputs.
func (r *ProjectResult) SortStable() {
	sort.Slice(r.Files, func(i, j int) bool { return r.Files[i].Path < r.Files[j].Path })
	sort.Slice(r.Failures, func(i, j int) bool { return r.Failures[i].Path < r.Failures[j].Path })
	sort.Strings(r.Skipped)
	sort.Slice(r.WorstFiles, func(i, j int) bool {
		if r.WorstFiles[i].Score != r.WorstFiles[j].Score {
			return r.WorstFiles[i].Score < r.WorstFiles[j].Score
		}
		return r.WorstFiles[i].Path < r.WorstFiles[j].Path
	})
}
