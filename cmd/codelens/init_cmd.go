package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"

	"github.com/nvoss/codelens/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a codelens.toml with the default configuration",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	const path = "codelens.toml"

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	data, err := toml.Marshal(tomlConfig(config.Default()))
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	color.Green("Wrote %s", path)
	return nil
}

// tomlConfig mirrors config.Config with toml tags matching the koanf keys,
// so the generated file round-trips through config.Load.
func tomlConfig(cfg *config.Config) map[string]any {
	return map[string]any{
		"thresholds": map[string]any{
			"max_function_lines":        cfg.Thresholds.MaxFunctionLines,
			"max_nesting_depth":         cfg.Thresholds.MaxNestingDepth,
			"max_cyclomatic_complexity": cfg.Thresholds.MaxCyclomaticComplexity,
			"max_cognitive_complexity":  cfg.Thresholds.MaxCognitiveComplexity,
		},
		"penalties": map[string]any{
			"long_function":       cfg.Penalties.LongFunction,
			"deep_nesting":        cfg.Penalties.DeepNesting,
			"high_cyclomatic":     cfg.Penalties.HighCyclomatic,
			"high_cognitive":      cfg.Penalties.HighCognitive,
			"magic_number":        cfg.Penalties.MagicNumber,
			"duplicate_structure": cfg.Penalties.DuplicateStructure,
		},
		"magic_number_allow_list": cfg.MagicNumberAllowList,
		"files": map[string]any{
			"include":   cfg.Files.Include,
			"exclude":   cfg.Files.Exclude,
			"gitignore": cfg.Files.Gitignore,
		},
		"cache": map[string]any{
			"enabled":     cfg.Cache.Enabled,
			"path":        cfg.Cache.Path,
			"max_entries": cfg.Cache.MaxEntries,
		},
		"output": map[string]any{
			"format":  cfg.Output.Format,
			"color":   cfg.Output.Color,
			"verbose": cfg.Output.Verbose,
		},
		"workers": cfg.Workers,
	}
}
