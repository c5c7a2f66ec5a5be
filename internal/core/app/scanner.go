package app

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"

	cerrors "sl2c/internal/core/errors"
	"sl2c/internal/shared/util"
)

func compilePatterns(kind string, patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", kind, p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// ExpandInputs turns files and directories into a sorted, de-duplicated
// list of source files. Files named explicitly are always kept; directories
// are walked with the configured include and exclude patterns, skipping the
// output directory.
func (s *Service) ExpandInputs(paths []string) ([]string, error) {
	cfg := s.Config()

	include, err := compilePatterns("include", cfg.Input.Include)
	if err != nil {
		return nil, err
	}
	excludeDirs, err := compilePatterns("exclude dir", cfg.Input.ExcludeDirs)
	if err != nil {
		return nil, err
	}
	excludeFiles, err := compilePatterns("exclude file", cfg.Input.ExcludeFiles)
	if err != nil {
		return nil, err
	}

	outDir := ""
	if cfg.Output.Dir != "" {
		if abs, err := filepath.Abs(cfg.Output.Dir); err == nil {
			outDir = abs
		}
	}

	seen := make(map[string]bool)
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, cerrors.AddContext(cerrors.New(cerrors.CodeNotFound, "input does not exist"), cerrors.CtxPath, root)
			}
			return nil, cerrors.AddContext(cerrors.Wrap(err, cerrors.CodeIO, "stat input"), cerrors.CtxPath, root)
		}
		if !info.IsDir() {
			seen[filepath.Clean(root)] = true
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			base := filepath.Base(path)
			if d.IsDir() {
				if path == root {
					return nil
				}
				if matchAny(excludeDirs, base) || isWithin(path, outDir) {
					return filepath.SkipDir
				}
				return nil
			}
			if len(include) > 0 && !matchAny(include, base) {
				return nil
			}
			if matchAny(excludeFiles, base) {
				return nil
			}
			seen[filepath.Clean(path)] = true
			return nil
		})
		if err != nil {
			return nil, cerrors.AddContext(cerrors.Wrap(err, cerrors.CodeIO, "walk input directory"), cerrors.CtxPath, root)
		}
	}

	return util.SortedStringKeys(seen), nil
}

func isWithin(path, dir string) bool {
	if dir == "" {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return util.HasPathPrefix(abs, dir)
}
