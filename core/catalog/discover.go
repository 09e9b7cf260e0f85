package catalog

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// packageExt is the archive extension the scanner looks for.
const packageExt = ".var"

// DiscoverPaths walks the configured folders and returns every package
// archive found, split by role origin. Unreadable directories and
// entries are skipped; discovery never fails, a folder that cannot be
// read simply contributes no files this cycle.
func DiscoverPaths(loadedDir string, otherDirs []string) (loadedPaths, otherPaths []string) {
	loadedPaths = collectArchives(loadedDir)
	for _, dir := range otherDirs {
		otherPaths = append(otherPaths, collectArchives(dir)...)
	}
	return loadedPaths, otherPaths
}

func collectArchives(dir string) []string {
	if dir == "" {
		return nil
	}
	var paths []string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), packageExt) {
			paths = append(paths, path)
		}
		return nil
	})
	return paths
}
