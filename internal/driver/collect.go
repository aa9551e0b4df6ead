package driver

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// collectSourceFiles expands paths into a sorted, de-duplicated file list.
// Directories are walked recursively; inside them only files with one of exts
// are taken and entries named in exclude are skipped. Files named explicitly
// are always taken.
func collectSourceFiles(ctx context.Context, paths, exts, exclude []string) ([]string, error) {
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

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
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
			if path != p && slices.Contains(exclude, d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if slices.Contains(exts, filepath.Ext(path)) {
				addFile(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	slices.Sort(files)
	return files, nil
}

// CollectFiles returns the files FormatPaths would format for paths. Empty
// exts means ".swift".
func CollectFiles(ctx context.Context, paths, exts, exclude []string) ([]string, error) {
	if len(exts) == 0 {
		exts = defaultExtensions
	}
	return collectSourceFiles(ctx, paths, exts, exclude)
}
