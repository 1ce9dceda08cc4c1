package file

import (
	"path/filepath"
	"strings"
)

// Stem returns the final path element without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
