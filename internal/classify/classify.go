package classify

import (
	"errors"
	"fmt"
	"sort"
)

// Classify decomposes a batch of paths and partitions the recognized
// files into media groups. Every input file lands in exactly one of
// Groups, Ambiguous or Unrecognized; errors on one file or group never
// affect siblings.
func Classify(paths []string) Result {
	var ret Result

	groupOrder := make([]string, 0)
	grouped := make(map[string][]SubtitleFile)

	for _, path := range paths {
		f, err := Parse(path)
		if err != nil {
			var unrec *UnrecognizedFormatError
			if !errors.As(err, &unrec) {
				unrec = &UnrecognizedFormatError{Path: path}
			}
			ret.Unrecognized = append(ret.Unrecognized, unrec)
			continue
		}

		key := f.NormalizedTitle
		if _, seen := grouped[key]; !seen {
			groupOrder = append(groupOrder, key)
		}
		grouped[key] = append(grouped[key], f)
	}

	for _, key := range groupOrder {
		files := grouped[key]

		if dup := findDuplicateMarker(files); dup != nil {
			ret.Ambiguous = append(ret.Ambiguous, dup)
			continue
		}

		ret.Groups = append(ret.Groups, buildGroup(files))
	}

	return ret
}

// findDuplicateMarker returns an error when two files in the same title
// group carry the same season/episode marker, since there is no way to
// order them into distinct episodes.
func findDuplicateMarker(files []SubtitleFile) *AmbiguousGroupingError {
	type markerKey struct{ season, episode int }
	byMarker := make(map[markerKey][]string)

	for _, f := range files {
		if !f.HasMarker() {
			continue
		}
		k := markerKey{f.Season, f.Episode}
		byMarker[k] = append(byMarker[k], f.Path)
	}

	var keys []markerKey
	for k, paths := range byMarker {
		if len(paths) > 1 {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].season != keys[j].season {
			return keys[i].season < keys[j].season
		}
		return keys[i].episode < keys[j].episode
	})

	members := make([]string, 0, len(files))
	for _, f := range files {
		members = append(members, f.Path)
	}

	first := keys[0]
	return &AmbiguousGroupingError{
		Title:   DisplayTitle(files[0].Title),
		Marker:  fmt.Sprintf("S%02dE%02d", first.season, first.episode),
		Paths:   byMarker[markerKey{first.season, first.episode}],
		Members: members,
	}
}

func buildGroup(files []SubtitleFile) MediaGroup {
	group := MediaGroup{
		Kind:  KindMovie,
		Title: DisplayTitle(files[0].Title),
		Files: files,
	}

	markers := make(map[[2]int]bool)
	seasons := make(map[int]bool)
	for _, f := range files {
		if f.Year != 0 && group.Year == 0 {
			group.Year = f.Year
		}
		if f.HasMarker() {
			markers[[2]int{f.Season, f.Episode}] = true
			seasons[f.Season] = true
		}
	}

	// Series iff at least two members share the title but differ in
	// episode marker. A lone marked file still reads as a movie drop.
	if len(markers) >= 2 {
		group.Kind = KindSeries
	}

	if len(seasons) == 1 {
		for s := range seasons {
			group.Season = s
		}
	}

	return group
}
