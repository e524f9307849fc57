package fileproc

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/nvoss/codelens/pkg/parser"
)

func TestMapFiles_CollectsResults(t *testing.T) {
	files := []string{"a.js", "b.js", "c.js"}

	results, errs := MapFiles(context.Background(), files, 2,
		func(_ *parser.Parser, path string) (string, error) {
			return path + ":done", nil
		}, nil)

	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(results) != 3 {
		t.Errorf("results = %d, want 3", len(results))
	}
}

func TestMapFiles_RecordsPerFileErrors(t *testing.T) {
	files := []string{"good.js", "bad.js", "fine.js"}
	boom := errors.New("boom")

	results, errs := MapFiles(context.Background(), files, 2,
		func(_ *parser.Parser, path string) (int, error) {
			if path == "bad.js" {
				return 0, boom
			}
			return 1, nil
		}, nil)

	if len(results) != 2 {
		t.Errorf("results = %d, want 2", len(results))
	}
	if errs == nil || len(errs.Errors) != 1 {
		t.Fatalf("errors = %v, want exactly 1", errs)
	}
	if errs.Errors[0].Path != "bad.js" {
		t.Errorf("error path = %q, want bad.js", errs.Errors[0].Path)
	}
	if !errors.Is(errs.Errors[0].Err, boom) {
		t.Errorf("error = %v, want wrapped boom", errs.Errors[0].Err)
	}
}

func TestMapFiles_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files := []string{"a.js", "b.js"}
	results, errs := MapFiles(ctx, files, 1,
		func(_ *parser.Parser, path string) (int, error) {
			t.Errorf("file %s processed after cancellation", path)
			return 0, nil
		}, nil)

	if len(results) != 0 {
		t.Errorf("results = %d, want 0", len(results))
	}
	if errs == nil || len(errs.Errors) != 2 {
		t.Fatalf("errors = %v, want one per unstarted file", errs)
	}
	for _, pe := range errs.Errors {
		if !errors.Is(pe.Err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", pe.Err)
		}
	}
}

func TestMapFiles_ProgressCallback(t *testing.T) {
	files := make([]string, 10)
	for i := range files {
		files[i] = fmt.Sprintf("f%d.js", i)
	}

	var ticks atomic.Int32
	_, errs := MapFiles(context.Background(), files, 4,
		func(_ *parser.Parser, _ string) (struct{}, error) {
			return struct{}{}, nil
		}, func() { ticks.Add(1) })

	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if ticks.Load() != 10 {
		t.Errorf("progress ticks = %d, want 10", ticks.Load())
	}
}

func TestMapFiles_Empty(t *testing.T) {
	results, errs := MapFiles(context.Background(), nil, 4,
		func(_ *parser.Parser, _ string) (int, error) { return 0, nil }, nil)
	if results != nil || errs != nil {
		t.Errorf("empty input should yield nil results and nil errors")
	}
}

func TestWorkers(t *testing.T) {
	if got := Workers(8); got != 8 {
		t.Errorf("Workers(8) = %d, want 8", got)
	}
	if got := Workers(0); got < 1 {
		t.Errorf("Workers(0) = %d, want >= 1", got)
	}
	if got := Workers(-3); got < 1 {
		t.Errorf("Workers(-3) = %d, want >= 1", got)
	}
}
