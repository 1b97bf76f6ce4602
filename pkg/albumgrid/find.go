package albumgrid

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
)

// Find returns the full paths of entries directly inside dir whose extension
// matches exts, case-insensitively, sorted by name. Subdirectories are not
// descended into. An empty result is ErrNoMatchingFiles.
func Find(dir string, exts []string) ([]string, error) {
	names, err := godirwalk.ReadDirnames(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	sort.Strings(names)

	var paths []string
	for _, name := range names {
		if matchExt(name, exts) {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoMatchingFiles, dir)
	}
	return paths, nil
}

func matchExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
