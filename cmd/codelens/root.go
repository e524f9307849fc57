package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nvoss/codelens/pkg/config"
)

var (
	cfgFile    string
	verbose    bool
	noColor    bool
	noCache    bool
	formatFlag string
	outputFile string
	workers    int
)

var rootCmd = &cobra.Command{
	Use:     "codelens",
	Short:   "JavaScript/TypeScript code quality analyzer",
	Version: version,
	Long: `Codelens parses a project's JavaScript and TypeScript sources, computes
complexity and quality metrics per file, caches results by content
fingerprint, and emits structured reports.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to config file (TOML, YAML, or JSON)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

// loadConfig resolves configuration for a run rooted at root: the --config
// file if given, otherwise the standard locations, otherwise defaults. Flag
// overrides are applied before validation.
func loadConfig(root string) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.LoadOrDefault(root)
	}

	if formatFlag != "" {
		cfg.Output.Format = formatFlag
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if verbose {
		cfg.Output.Verbose = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
