package file

import (
	"os"
	"path/filepath"
	"time"
)

// FindRecentAfter returns all regular files under dir whose modification
// time is after startTime. Used by the scheduled catch-up scan to pick up
// subtitles dropped while the service was not watching.
func FindRecentAfter(dir string, startTime time.Time) ([]string, error) {
	var recentFiles []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo,
		err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && info.ModTime().After(startTime) {
			recentFiles = append(recentFiles, path)
		}
		return nil
	})

	return recentFiles, err
}
