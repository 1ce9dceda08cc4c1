package intake

import (
	"sort"
	"time"

	"github.com/subworks/subflow/internal/classify"
	"github.com/subworks/subflow/pkg/file"
	"github.com/subworks/subflow/pkg/log"
)

// CatchUpScan returns subtitle files modified after since in any of the
// drop directories. It backs up the watcher for files that arrived
// while the service was down.
func CatchUpScan(dirs []string, since time.Time) []string {
	var found []string
	for _, dir := range dirs {
		recent, err := file.FindRecentAfter(dir, since)
		if err != nil {
			log.Warn("Catch-up scan failed for %s: %v", dir, err)
			continue
		}
		for _, path := range recent {
			if classify.IsSubtitlePath(path) {
				found = append(found, path)
			}
		}
	}
	sort.Strings(found)
	return found
}
