package classify

// Kind describes what a media group was inferred to be.
type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
)

// SubtitleFile is a single input path decomposed into the segments the
// grouping and rewrite passes operate on. Immutable after parsing.
type SubtitleFile struct {
	Path string `json:"path"`

	// Title is the raw title segment: the stem with the episode marker,
	// year and trailing language token stripped, separators preserved.
	Title string `json:"title"`

	// NormalizedTitle is the grouping key: lowercased, punctuation and
	// whitespace collapsed to single spaces.
	NormalizedTitle string `json:"normalized_title"`

	// LanguageCode is the normalized ISO 639-1 code of the trailing
	// language token, or "" when the filename carries none.
	LanguageCode string `json:"language_code,omitempty"`

	// Marker is the original season/episode marker text (e.g. "S01E02",
	// "1x02"), exactly as it appeared. Empty for movies.
	Marker string `json:"marker,omitempty"`

	Season  int `json:"season,omitempty"`
	Episode int `json:"episode,omitempty"`

	// Year is a release year found in the stem, 0 when absent.
	Year int `json:"year,omitempty"`

	// Ext is the original extension including the leading dot.
	Ext string `json:"ext"`
}

// HasMarker reports whether a season/episode marker was recognized.
func (f SubtitleFile) HasMarker() bool {
	return f.Marker != ""
}

// MediaGroup is a set of subtitle files sharing a normalized title.
type MediaGroup struct {
	Kind  Kind           `json:"kind"`
	Title string         `json:"title"`
	Year  int            `json:"year,omitempty"`
	Files []SubtitleFile `json:"files"`

	// Season is set when every marked member belongs to the same season;
	// it is the season component of the metadata query key.
	Season int `json:"season,omitempty"`
}

// RewritePlan maps one input subtitle path to its output path with the
// language code segment substituted.
type RewritePlan struct {
	File       SubtitleFile `json:"file"`
	OutputPath string       `json:"output_path"`

	// Changed reports whether an existing code was replaced (true) or the
	// target code was simply appended to an uncoded name (false).
	Changed bool `json:"changed"`
}

// Result is the outcome of classifying one batch. Errors are collected
// per file and per group; they never abort sibling files.
type Result struct {
	Groups       []MediaGroup               `json:"groups"`
	Ambiguous    []*AmbiguousGroupingError  `json:"ambiguous,omitempty"`
	Unrecognized []*UnrecognizedFormatError `json:"unrecognized,omitempty"`
}

// FileCount returns the number of successfully classified files.
func (r Result) FileCount() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Files)
	}
	return n
}
