package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// ErrNoInput is returned when neither a template path nor a directory is set.
var ErrNoInput = errors.New("no template configured: set templatePath or templatesDirPath")

// Resolve returns the template paths a run scans. A directory wins over a
// single path. Directory listings are not recursive, keep regular files only
// and are sorted by name.
func Resolve(cfg Config) ([]string, error) {
	if cfg.TemplatesDir != "" {
		return listDir(cfg)
	}
	if cfg.TemplatePath != "" {
		return []string{cfg.TemplatePath}, nil
	}
	return nil, ErrNoInput
}

func listDir(cfg Config) ([]string, error) {
	entries, err := os.ReadDir(cfg.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("reading templates directory: %w", err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		full := filepath.Join(cfg.TemplatesDir, name)
		if !isRegular(full, e) {
			continue
		}
		if cfg.DefaultExcludes && isDefaultFileExcluded(strings.ToLower(name)) {
			slog.Warn("skipping file excluded by default", "file", full)
			continue
		}
		if !allowedByGlobs(name, cfg) {
			continue
		}
		out = append(out, full)
	}
	return out, nil
}

// isRegular follows symlinks so linked templates are scanned too.
func isRegular(full string, e os.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && info.Mode().IsRegular()
}

// allowedByGlobs applies the comma-separated include globs as a positive
// filter, then subtracts the exclude globs.
func allowedByGlobs(name string, cfg Config) bool {
	includes := parseGlobsList(cfg.IncludeGlobs)
	excludes := parseGlobsList(cfg.ExcludeGlobs)
	if len(includes) > 0 && !matchAnyGlob(name, includes) {
		return false
	}
	if len(excludes) > 0 && matchAnyGlob(name, excludes) {
		return false
	}
	return true
}

func parseGlobsList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, strings.TrimPrefix(p, "./"))
	}
	return out
}

func matchAnyGlob(name string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, name); ok {
			return true
		}
		// patterns written relative to the repo root still match by basename
		if ok, _ := doublestar.Match(g, filepath.Base(name)); ok {
			return true
		}
	}
	return false
}

// ValidateGlobs reports the first malformed pattern.
func ValidateGlobs(list string) error {
	for _, g := range parseGlobsList(list) {
		if !doublestar.ValidatePattern(g) {
			return fmt.Errorf("invalid glob %q", g)
		}
	}
	return nil
}
