package service

import (
	"context"

	"github.com/subworks/subflow/internal/classify"
	"github.com/subworks/subflow/internal/runner"
	"github.com/subworks/subflow/internal/tmdb"
)

// MetadataProvider resolves a title group against a metadata catalog.
type MetadataProvider interface {
	FindBestMatch(ctx context.Context, title string, isSeries bool, year int) (*tmdb.Result, error)
}

// TranslationRunner executes one external translation run.
type TranslationRunner interface {
	Run(ctx context.Context, req runner.Request, onLine func(string)) error
}

// MetadataCache is the persisted TMDB lookup cache.
type MetadataCache interface {
	Get(ctx context.Context, title string, isSeries bool, year int) (GroupMetadata, bool, error)
	Put(ctx context.Context, title string, isSeries bool, year int, meta GroupMetadata) error
}

// GroupMetadata is the resolved metadata for one media group.
type GroupMetadata struct {
	TMDBID       int    `json:"tmdb_id,omitempty"`
	MatchedTitle string `json:"matched_title,omitempty"`
	MatchedYear  int    `json:"matched_year,omitempty"`
	Overview     string `json:"overview,omitempty"`
}

// PlannedFile is one input file with its rewrite outcome and, when the
// batch was submitted rather than previewed, the job it was enqueued as.
type PlannedFile struct {
	InputPath  string `json:"input_path"`
	OutputPath string `json:"output_path"`
	Changed    bool   `json:"changed"`
	JobID      string `json:"job_id,omitempty"`
	Skipped    bool   `json:"skipped,omitempty"`
	SkipReason string `json:"skip_reason,omitempty"`
}

// GroupReport is one classified group with its metadata and plans.
type GroupReport struct {
	Kind     classify.Kind `json:"kind"`
	Title    string        `json:"title"`
	Year     int           `json:"year,omitempty"`
	Season   int           `json:"season,omitempty"`
	Metadata GroupMetadata `json:"metadata"`

	// Description is the context hint passed to the translation CLI,
	// built from the matched metadata.
	Description string `json:"description,omitempty"`

	Files []PlannedFile `json:"files"`
}

// BatchReport is the outcome of previewing or submitting one batch.
// Per-file and per-group failures are collected here, never fatal.
type BatchReport struct {
	Source       string                              `json:"source"`
	Groups       []GroupReport                       `json:"groups"`
	Ambiguous    []*classify.AmbiguousGroupingError  `json:"ambiguous,omitempty"`
	Unrecognized []*classify.UnrecognizedFormatError `json:"unrecognized,omitempty"`
	Inaccessible []*classify.PathAccessError         `json:"inaccessible,omitempty"`
	Enqueued     int                                 `json:"enqueued"`
}
