// Package discover enumerates the source files of a project root.
package discover

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/nvoss/codelens/pkg/config"
	"github.com/nvoss/codelens/pkg/parser"
)

// Result separates the files selected for analysis from those the filters
// rejected, so reports can distinguish tooling gaps from quality issues.
type Result struct {
	Files   []string // relative to root, slash-separated
	Skipped []string
}

// Walk enumerates supported source files under root, honoring the include and
// exclude glob patterns and, when enabled, the project's .gitignore. Paths in
// the result are relative to root and sorted by the filesystem walk order.
func Walk(root string, cfg *config.Config) (*Result, error) {
	var ignorer *gitignore.GitIgnore
	if cfg.Files.Gitignore {
		if ig, err := gitignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
			ignorer = ig
		}
	}

	res := &Result{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if d.Name() == ".git" || d.Name() == "node_modules" {
				return filepath.SkipDir
			}
			if ignorer != nil && ignorer.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if parser.DetectLanguage(rel) == parser.LangUnknown {
			return nil
		}

		if !matchesAny(cfg.Files.Include, rel) {
			res.Skipped = append(res.Skipped, rel)
			return nil
		}
		if matchesAny(cfg.Files.Exclude, rel) {
			res.Skipped = append(res.Skipped, rel)
			return nil
		}
		if ignorer != nil && ignorer.MatchesPath(rel) {
			res.Skipped = append(res.Skipped, rel)
			return nil
		}

		res.Files = append(res.Files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// Stat reports whether a path exists and is a directory.
func Stat(root string) (bool, error) {
	info, err := os.Stat(root)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
