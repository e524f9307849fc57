package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nvoss/codelens/internal/analyzer"
	"github.com/nvoss/codelens/internal/cache"
	"github.com/nvoss/codelens/internal/progress"
	"github.com/nvoss/codelens/internal/report"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Analyze a project's source files",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Output format: text, markdown, json, toon")
	analyzeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write report to file instead of stdout")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "Disable result caching")
	analyzeCmd.Flags().IntVar(&workers, "workers", 0, "Worker count (0 = 2x CPU cores)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	c, err := cache.New(cache.Options{
		Enabled:    cfg.Cache.Enabled,
		Path:       cfg.Cache.Path,
		MaxEntries: cfg.Cache.MaxEntries,
		Version:    analyzer.Version,
	})
	if err != nil {
		// The cache is an optimization, not a dependency: degrade and go on.
		warnf("cache disabled: %v", err)
		c, _ = cache.New(cache.Options{Enabled: false})
	}
	if err := c.Load(); err != nil {
		warnf("cache disabled: %v", err)
		c.Disable()
	}

	start := time.Now()
	pa := analyzer.NewProjectAnalyzer(cfg, c)

	var tracker *progress.Tracker
	onProgress := func() {}
	if cfg.Output.Format == "text" && outputFile == "" {
		tracker = progress.NewTracker("Analyzing", -1)
		onProgress = tracker.Tick
	}

	result, total, err := pa.Analyze(cmd.Context(), root, onProgress)
	if tracker != nil {
		tracker.Finish()
	}
	if err != nil {
		return err
	}

	if err := c.Save(); err != nil {
		warnf("failed to persist cache: %v", err)
	}

	if cfg.Output.Verbose {
		verbosef("analyzed %d of %d files in %s (%d cache hits)",
			result.Summary.TotalFiles, total, time.Since(start).Round(time.Millisecond), result.CacheHits)
	}

	useColor := cfg.Output.Color && !noColor && outputFile == "" && cfg.Output.Format == "text"
	var data []byte
	if useColor {
		data, err = report.GenerateColored(result)
	} else {
		data, err = report.Generate(result, cfg.Output.Format)
	}
	if err != nil {
		return err
	}

	if outputFile != "" {
		return os.WriteFile(outputFile, data, 0o644)
	}
	_, err = os.Stdout.Write(data)
	return err
}

func warnf(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}

func verbosef(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
