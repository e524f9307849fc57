package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nvoss/codelens/internal/analyzer"
	"github.com/nvoss/codelens/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the persisted analysis cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry count for the current project",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the persisted cache file",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func openCache() (*cache.Cache, error) {
	cfg, err := loadConfig(".")
	if err != nil {
		return nil, err
	}
	if cfg.Cache.Path == "" {
		return nil, fmt.Errorf("no cache path configured (set cache.path in codelens.toml)")
	}

	return cache.New(cache.Options{
		Enabled:    true,
		Path:       cfg.Cache.Path,
		MaxEntries: cfg.Cache.MaxEntries,
		Version:    analyzer.Version,
	})
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	if err := c.Load(); err != nil {
		return err
	}

	stats := c.Stats()
	fmt.Printf("Entries: %d\n", stats.Entries)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	if err := c.Clear(); err != nil {
		return err
	}
	color.Green("Cache cleared")
	return nil
}
