package analyzer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"

	"gonum.org/v1/gonum/stat"

	"github.com/nvoss/codelens/internal/cache"
	"github.com/nvoss/codelens/internal/discover"
	"github.com/nvoss/codelens/internal/fileproc"
	"github.com/nvoss/codelens/pkg/config"
	"github.com/nvoss/codelens/pkg/models"
	"github.com/nvoss/codelens/pkg/parser"
)

// Version tags cache entries. Bump it when a metric definition changes so
// stale-schema results are discarded rather than migrated.
const Version = "1"

// worstFilesLimit bounds the worst-offender ranking in the project result.
const worstFilesLimit = 10

// ProjectAnalyzer drives the full pipeline: enumerate files, consult the
// cache, run the per-file analyzers on misses, and aggregate. It is the only
// component with fan-out/fan-in responsibility; per-file analysis is a pure
// function of file content and configuration.
type ProjectAnalyzer struct {
	cfg     *config.Config
	cache   *cache.Cache
	basic   *BasicAnalyzer
	ast     *ASTAnalyzer
	cmplx   *ComplexityAnalyzer
	quality *QualityAnalyzer
}

// NewProjectAnalyzer creates a project analyzer. The configuration must have
// been validated; it is treated as immutable for the analyzer's lifetime.
func NewProjectAnalyzer(cfg *config.Config, c *cache.Cache) *ProjectAnalyzer {
	return &ProjectAnalyzer{
		cfg:     cfg,
		cache:   c,
		basic:   NewBasicAnalyzer(),
		ast:     NewASTAnalyzer(),
		cmplx:   NewComplexityAnalyzer(),
		quality: NewQualityAnalyzer(cfg),
	}
}

// Analyze runs the pipeline over every file under root. A single file's
// parse failure never aborts the run: it is recorded and excluded from
// aggregates. Cancellation between files yields a partial result flagged
// Incomplete instead of an error.
func (p *ProjectAnalyzer) Analyze(ctx context.Context, root string, onProgress fileproc.ProgressFunc) (*models.ProjectResult, int, error) {
	enumerated, err := discover.Walk(root, p.cfg)
	if err != nil {
		return nil, 0, err
	}

	var hits atomic.Int64
	results, procErrs := fileproc.MapFiles(ctx, enumerated.Files, p.cfg.Workers,
		func(psr *parser.Parser, rel string) (models.FileResult, error) {
			return p.analyzeFile(psr, root, rel, &hits)
		}, onProgress)

	result := &models.ProjectResult{
		Root:      root,
		Files:     results,
		Skipped:   enumerated.Skipped,
		CacheHits: int(hits.Load()),
	}

	if procErrs != nil {
		for _, pe := range procErrs.Errors {
			if errors.Is(pe.Err, context.Canceled) || errors.Is(pe.Err, context.DeadlineExceeded) {
				result.Incomplete = true
				continue
			}
			result.Failures = append(result.Failures, toFailure(pe))
		}
	}
	if ctx.Err() != nil {
		result.Incomplete = true
	}

	aggregate(result)
	result.SortStable()
	return result, len(enumerated.Files), nil
}

// analyzeFile computes one file's result, reusing the cached value when the
// content fingerprint matches.
func (p *ProjectAnalyzer) analyzeFile(psr *parser.Parser, root, rel string, hits *atomic.Int64) (models.FileResult, error) {
	source, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		return models.FileResult{}, err
	}

	fingerprint := cache.Fingerprint(source)
	result, hit, err := p.cache.Compute(fingerprint, func() (models.FileResult, error) {
		return p.computeFile(psr, rel, fingerprint, source)
	})
	if err != nil {
		return models.FileResult{}, err
	}
	if hit {
		hits.Add(1)
	}
	// The result may have been computed under a different relative path for
	// identical content, whether it came from the cache or from a concurrent
	// computation; report it, issues included, under this one.
	return result.WithPath(rel), nil
}

// computeFile runs the full per-file analyzer chain. Each analyzer is a pure
// function of its inputs; data flows strictly downstream.
func (p *ProjectAnalyzer) computeFile(psr *parser.Parser, rel, fingerprint string, source []byte) (models.FileResult, error) {
	lang := parser.DetectLanguage(rel)
	parsed, err := psr.Parse(source, lang, rel)
	if err != nil {
		return models.FileResult{}, err
	}
	defer parsed.Close()

	basic := p.basic.Analyze(parsed.Source)
	astMetrics := p.ast.Analyze(parsed)
	complexity := p.cmplx.Analyze(parsed)
	quality := p.quality.Analyze(rel, basic, astMetrics, complexity)

	return models.FileResult{
		Path:        rel,
		Language:    string(lang),
		Fingerprint: fingerprint,
		Basic:       basic,
		AST:         astMetrics,
		Complexity:  complexity,
		Quality:     quality,
	}, nil
}

func toFailure(pe fileproc.ProcessingError) models.FileFailure {
	failure := models.FileFailure{Path: pe.Path, Reason: pe.Err.Error()}

	var perr *parser.ParseError
	if errors.As(pe.Err, &perr) {
		failure.Line = perr.Line
		failure.Column = perr.Column
		failure.Reason = perr.Reason
	}
	return failure
}

// histogramBounds defines the cyclomatic complexity distribution buckets.
var histogramBounds = []models.ComplexityBucket{
	{Label: "1-5", Min: 1, Max: 5},
	{Label: "6-10", Min: 6, Max: 10},
	{Label: "11-20", Min: 11, Max: 20},
	{Label: "21+", Min: 21, Max: 0},
}

// aggregate computes project-level statistics over the successfully analyzed
// files. Failed files are excluded from every numeric aggregate.
func aggregate(result *models.ProjectResult) {
	summary := &result.Summary
	summary.TotalFiles = len(result.Files)

	buckets := make([]models.ComplexityBucket, len(histogramBounds))
	copy(buckets, histogramBounds)

	var cyclomatic []float64
	var scores []float64
	var cognitiveTotal uint64

	for _, file := range result.Files {
		summary.TotalFunctions += len(file.Complexity)
		summary.TotalClasses += len(file.AST.Classes)
		summary.TotalLines += file.Basic.TotalLines
		summary.TotalCodeLines += file.Basic.CodeLines
		summary.TotalIssues += len(file.Quality.Issues)
		scores = append(scores, file.Quality.Score)

		for _, fn := range file.Complexity {
			cyclomatic = append(cyclomatic, float64(fn.Cyclomatic))
			cognitiveTotal += uint64(fn.Cognitive)

			if fn.Cyclomatic > summary.MaxCyclomatic {
				summary.MaxCyclomatic = fn.Cyclomatic
			}
			if fn.Cognitive > summary.MaxCognitive {
				summary.MaxCognitive = fn.Cognitive
			}
			for i := range buckets {
				if fn.Cyclomatic >= buckets[i].Min && (buckets[i].Max == 0 || fn.Cyclomatic <= buckets[i].Max) {
					buckets[i].Count++
					break
				}
			}
		}
	}
	result.Histogram = buckets

	if len(scores) > 0 {
		summary.AvgScore = stat.Mean(scores, nil)
	}
	if len(cyclomatic) > 0 {
		summary.AvgCyclomatic = stat.Mean(cyclomatic, nil)
		summary.AvgCognitive = float64(cognitiveTotal) / float64(len(cyclomatic))

		sort.Float64s(cyclomatic)
		summary.P50Cyclomatic = stat.Quantile(0.50, stat.Empirical, cyclomatic, nil)
		summary.P90Cyclomatic = stat.Quantile(0.90, stat.Empirical, cyclomatic, nil)
		summary.P95Cyclomatic = stat.Quantile(0.95, stat.Empirical, cyclomatic, nil)
	}

	ranked := make([]models.RankedFile, 0, len(result.Files))
	for _, file := range result.Files {
		ranked = append(ranked, models.RankedFile{
			Path:   file.Path,
			Score:  file.Quality.Score,
			Issues: len(file.Quality.Issues),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score < ranked[j].Score
		}
		return ranked[i].Path < ranked[j].Path
	})
	if len(ranked) > worstFilesLimit {
		ranked = ranked[:worstFilesLimit]
	}
	result.WorstFiles = ranked
}
