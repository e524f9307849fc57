package models

import (
	"reflect"
	"testing"
)

func TestSortStable(t *testing.T) {
	r := &ProjectResult{
		Files: []FileResult{
			{Path: "z.js"}, {Path: "a.js"}, {Path: "m.js"},
		},
		Failures: []FileFailure{
			{Path: "y.js"}, {Path: "b.js"},
		},
		Skipped: []string{"w.js", "c.js"},
		WorstFiles: []RankedFile{
			{Path: "tied-b.js", Score: 90},
			{Path: "best.js", Score: 100},
			{Path: "tied-a.js", Score: 90},
		},
	}

	r.SortStable()

	wantFiles := []string{"a.js", "m.js", "z.js"}
	for i, f := range r.Files {
		if f.Path != wantFiles[i] {
			t.Errorf("Files[%d] = %q, want %q", i, f.Path, wantFiles[i])
		}
	}

	if r.Failures[0].Path != "b.js" {
		t.Errorf("Failures not sorted: %+v", r.Failures)
	}
	if !reflect.DeepEqual(r.Skipped, []string{"c.js", "w.js"}) {
		t.Errorf("Skipped not sorted: %v", r.Skipped)
	}

	wantWorst := []string{"tied-a.js", "tied-b.js", "best.js"}
	for i, w := range r.WorstFiles {
		if w.Path != wantWorst[i] {
			t.Errorf("WorstFiles[%d] = %q, want %q", i, w.Path, wantWorst[i])
		}
	}
}

func TestWithPath_RebindsIssueLocations(t *testing.T) {
	original := FileResult{
		Path: "aaa.js",
		Quality: QualityMetrics{
			Score: 99,
			Issues: []Issue{
				{Rule: RuleMagicNumber, Location: Location{File: "aaa.js", Line: 1, Column: 24}},
			},
		},
	}

	rebound := original.WithPath("bbb.js")

	if rebound.Path != "bbb.js" {
		t.Errorf("Path = %q, want bbb.js", rebound.Path)
	}
	if got := rebound.Quality.Issues[0].Location.File; got != "bbb.js" {
		t.Errorf("issue location = %q, want bbb.js", got)
	}
	// The original, possibly cached, value stays untouched.
	if got := original.Quality.Issues[0].Location.File; got != "aaa.js" {
		t.Errorf("original issue location mutated to %q", got)
	}
}

func TestSortStable_Idempotent(t *testing.T) {
	r := &ProjectResult{
		Files:      []FileResult{{Path: "b.js"}, {Path: "a.js"}},
		WorstFiles: []RankedFile{{Path: "a.js", Score: 80}, {Path: "b.js", Score: 95}},
	}

	r.SortStable()
	snapshot := *r
	r.SortStable()

	if !reflect.DeepEqual(snapshot.Files, r.Files) || !reflect.DeepEqual(snapshot.WorstFiles, r.WorstFiles) {
		t.Error("sorting an already sorted result changed it")
	}
}
