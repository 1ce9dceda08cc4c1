package service

import (
	"context"
	"fmt"
	"time"

	"github.com/subworks/subflow/internal/classify"
	"github.com/subworks/subflow/internal/persistence"
	"github.com/subworks/subflow/pkg/log"
)

var timeNow = time.Now

// lookupMetadata resolves one group against TMDB. Concurrent lookups of
// the same group collapse into one flight, and resolved entries go
// through the persisted cache.
func (s *Service) lookupMetadata(ctx context.Context, group classify.MediaGroup) (GroupMetadata, error) {
	isSeries := group.Kind == classify.KindSeries
	key := fmt.Sprintf("%s|%t|%d", group.Title, isSeries, group.Year)

	v, err, _ := s.sf.Do(key, func() (any, error) {
		if s.cache != nil {
			cached, ok, err := s.cache.Get(ctx, group.Title, isSeries, group.Year)
			if err != nil {
				log.Warn("Metadata cache read failed for %q: %v", group.Title, err)
			} else if ok {
				return cached, nil
			}
		}

		match, err := s.metadata.FindBestMatch(ctx, group.Title, isSeries, group.Year)
		if err != nil {
			return GroupMetadata{}, WrapError(err, ErrAPI, "metadata search failed")
		}
		if match == nil {
			return GroupMetadata{}, nil
		}

		meta := GroupMetadata{
			TMDBID:       match.ID,
			MatchedTitle: match.Title,
			MatchedYear:  match.Year,
			Overview:     match.Overview,
		}
		if s.cache != nil {
			if err := s.cache.Put(ctx, group.Title, isSeries, group.Year, meta); err != nil {
				log.Warn("Metadata cache write failed for %q: %v", group.Title, err)
			}
		}
		return meta, nil
	})
	if err != nil {
		return GroupMetadata{}, err
	}
	return v.(GroupMetadata), nil
}

// storeMetadataCache adapts the SQLite store to the MetadataCache
// interface.
type storeMetadataCache struct {
	store *persistence.SQLiteStore
}

func NewStoreMetadataCache(store *persistence.SQLiteStore) MetadataCache {
	return &storeMetadataCache{store: store}
}

func (c *storeMetadataCache) Get(ctx context.Context, title string, isSeries bool, year int) (GroupMetadata, bool, error) {
	entry, ok, err := c.store.GetMetadataCache(ctx, title, isSeries, year, timeNow())
	if err != nil || !ok {
		return GroupMetadata{}, false, err
	}
	return GroupMetadata{
		TMDBID:       entry.TMDBID,
		MatchedTitle: entry.MatchedTitle,
		MatchedYear:  entry.MatchedYear,
		Overview:     entry.Overview,
	}, true, nil
}

func (c *storeMetadataCache) Put(ctx context.Context, title string, isSeries bool, year int, meta GroupMetadata) error {
	return c.store.PutMetadataCache(ctx, persistence.MetadataCacheEntry{
		Title:        title,
		IsSeries:     isSeries,
		Year:         year,
		TMDBID:       meta.TMDBID,
		MatchedTitle: meta.MatchedTitle,
		MatchedYear:  meta.MatchedYear,
		Overview:     meta.Overview,
	})
}
