package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrNoSourceFiles = errors.New("format: no source files found")

// OutPrefix marks files written by the default output mode and debug dumps.
const OutPrefix = "out_"

// IsMarkupFile reports whether path has a markup extension.
func IsMarkupFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

// CollectFiles expands paths the way FormatPaths does and fails with
// ErrNoSourceFiles when nothing matches.
func CollectFiles(ctx context.Context, paths []string) ([]string, error) {
	files, err := collectSourceFiles(ctx, paths)
	if err == nil && len(files) == 0 {
		err = ErrNoSourceFiles
	}
	return files, err
}

// collectSourceFiles expands files, directories and glob patterns. Explicit
// files are taken as given; directories and globs only contribute markup
// files that are not outputs of an earlier run.
func collectSourceFiles(ctx context.Context, paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	addFile := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}
	candidate := func(path string) bool {
		return IsMarkupFile(path) && !strings.HasPrefix(filepath.Base(path), OutPrefix)
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if hasGlobMeta(p) {
			matches, err := filepath.Glob(p)
			if err != nil {
				return nil, fmt.Errorf("bad pattern %q: %w", p, err)
			}
			for _, m := range matches {
				if info, err := os.Stat(m); err == nil && !info.IsDir() && candidate(m) {
					addFile(m)
				}
			}
			continue
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			addFile(p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if candidate(path) {
				addFile(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

func hasGlobMeta(p string) bool {
	return strings.ContainsAny(p, "*?[")
}

// OutputPath is where the default mode writes the result for src.
func OutputPath(src string) string {
	return filepath.Join(filepath.Dir(src), OutPrefix+filepath.Base(src))
}

// DebugPaths returns the rule-trace and AST dump paths for src.
func DebugPaths(src string) (traces, tree string) {
	dir := filepath.Dir(src)
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return filepath.Join(dir, OutPrefix+"rt_"+base+".json"),
		filepath.Join(dir, OutPrefix+"ast_"+base+".json")
}
