package classify

import (
	"os"
	"path/filepath"
)

// Expand materializes a dropped path list: files pass through untouched
// (unrecognized extensions are reported later by Classify), directories
// are walked recursively collecting subtitle files. A visited set keyed
// by resolved path guards against symlink cycles.
//
// Paths that cannot be read are collected into the second return value
// and never stop the expansion of their siblings. A file can vanish
// between the watcher event and the debounce flush; the rest of the
// batch still goes through.
func Expand(paths []string) ([]string, []*PathAccessError) {
	visited := make(map[string]bool)
	out := make([]string, 0, len(paths))
	var inaccessible []*PathAccessError

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			inaccessible = append(inaccessible, &PathAccessError{Path: path, Err: err})
			continue
		}
		if !info.IsDir() {
			out = append(out, path)
			continue
		}
		expandDir(path, visited, &out, &inaccessible)
	}

	return out, inaccessible
}

func expandDir(dir string, visited map[string]bool, out *[]string, inaccessible *[]*PathAccessError) {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		*inaccessible = append(*inaccessible, &PathAccessError{Path: dir, Err: err})
		return
	}
	if visited[resolved] {
		return
	}
	visited[resolved] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		*inaccessible = append(*inaccessible, &PathAccessError{Path: dir, Err: err})
		return
	}

	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())

		isDir := entry.IsDir()
		if entry.Type()&os.ModeSymlink != 0 {
			target, err := os.Stat(full)
			if err != nil {
				continue // dangling symlink
			}
			isDir = target.IsDir()
		}

		if isDir {
			expandDir(full, visited, out, inaccessible)
			continue
		}
		if IsSubtitlePath(entry.Name()) {
			*out = append(*out, full)
		}
	}
}
