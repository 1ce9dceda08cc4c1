package persistence

import "time"

// MetadataCacheEntry caches one TMDB lookup keyed by normalized title,
// kind and year so repeated batches skip the network round trip.
type MetadataCacheEntry struct {
	Title        string
	IsSeries     bool
	Year         int
	TMDBID       int
	MatchedTitle string
	MatchedYear  int
	Overview     string
	ExpiresAt    time.Time
	UpdatedAt    time.Time
}
