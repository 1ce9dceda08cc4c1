package classify

import (
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/subworks/subflow/pkg/file"
)

var subtitleExts = []string{
	".srt", ".ass", ".ssa", ".vtt", ".sub", ".idx", ".sup",
	".ttml", ".dfxp", ".sbv", ".smi", ".stl", ".txt",
}

// IsSubtitlePath reports whether the path carries a recognized subtitle
// extension.
func IsSubtitlePath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(subtitleExts, ext)
}

// Episode marker patterns, matching what the desktop front end called
// "Smart TV Series Detection": S01E01, 1x01 and the spelled-out
// Season 1 / Episode 1 forms.
var (
	seasonEpisodePattern = regexp.MustCompile(`(?i)\bS(\d{1,2})[ ._-]?E(\d{1,3})\b`)
	crossPattern         = regexp.MustCompile(`(?i)\b(\d{1,2})x(\d{2,3})\b`)
	seasonWordPattern    = regexp.MustCompile(`(?i)\bseason[ ._-]*(\d{1,2})\b`)
	episodeWordPattern   = regexp.MustCompile(`(?i)\bepisode[ ._-]*(\d{1,3})\b`)
	yearPattern          = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

var separatorRun = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Parse decomposes a subtitle path into {title segment, optional
// season/episode marker, optional trailing language token, optional
// year}. Pure: touches no filesystem state.
func Parse(path string) (SubtitleFile, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(subtitleExts, ext) {
		return SubtitleFile{}, &UnrecognizedFormatError{Path: path, Ext: filepath.Ext(path)}
	}

	base := filepath.Base(path)
	clean, token := stripTrailingLangToken(file.Stem(base))

	f := SubtitleFile{
		Path:         path,
		LanguageCode: NormalizeLangCode(token),
		Ext:          filepath.Ext(base),
	}

	title := clean
	if loc := seasonEpisodePattern.FindStringSubmatchIndex(clean); loc != nil {
		f.Marker = clean[loc[0]:loc[1]]
		f.Season = mustAtoi(clean[loc[2]:loc[3]])
		f.Episode = mustAtoi(clean[loc[4]:loc[5]])
		title = clean[:loc[0]]
	} else if loc := crossPattern.FindStringSubmatchIndex(clean); loc != nil {
		f.Marker = clean[loc[0]:loc[1]]
		f.Season = mustAtoi(clean[loc[2]:loc[3]])
		f.Episode = mustAtoi(clean[loc[4]:loc[5]])
		title = clean[:loc[0]]
	} else if loc := episodeWordPattern.FindStringSubmatchIndex(clean); loc != nil {
		f.Marker = clean[loc[0]:loc[1]]
		f.Episode = mustAtoi(clean[loc[2]:loc[3]])
		title = clean[:loc[0]]
		if sloc := seasonWordPattern.FindStringSubmatchIndex(clean); sloc != nil {
			f.Season = mustAtoi(clean[sloc[2]:sloc[3]])
			if sloc[0] < loc[0] {
				f.Marker = clean[sloc[0]:loc[1]]
				title = clean[:sloc[0]]
			}
		}
	}

	if yloc := yearPattern.FindStringIndex(title); yloc != nil {
		year := mustAtoi(title[yloc[0]:yloc[1]])
		// Release-group names can contain numbers that look like years;
		// only trust a year that does not start the title.
		if yloc[0] > 0 {
			f.Year = year
			title = title[:yloc[0]]
		}
	}

	title = strings.TrimRight(title, " ._-([")
	if title == "" {
		title = clean
	}
	f.Title = title
	f.NormalizedTitle = NormalizeTitle(title)

	return f, nil
}

// NormalizeTitle lowercases and collapses whitespace and punctuation so
// that "The.Show", "the show" and "The_Show" group together.
func NormalizeTitle(title string) string {
	lower := strings.ToLower(title)
	collapsed := separatorRun.ReplaceAllString(lower, " ")
	return strings.TrimSpace(collapsed)
}

// DisplayTitle renders a title segment for humans and metadata queries:
// dots, underscores and dashes become single spaces.
func DisplayTitle(title string) string {
	return strings.TrimSpace(separatorRun.ReplaceAllString(title, " "))
}

// stripTrailingLangToken removes a recognized language token from the end
// of a stem along with its separator. Only the trailing segment is
// considered; a token that would consume the whole stem is left alone.
func stripTrailingLangToken(stem string) (clean, token string) {
	idx := strings.LastIndexAny(stem, "._- ")
	if idx <= 0 || idx == len(stem)-1 {
		return stem, ""
	}
	candidate := stem[idx+1:]
	if NormalizeLangCode(candidate) == "" {
		return stem, ""
	}
	return stem[:idx], candidate
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
