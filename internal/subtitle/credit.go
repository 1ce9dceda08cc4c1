package subtitle

import (
	"fmt"
	"sort"
	"time"
)

// TranslatorCredit renders the credit text for a model name.
func TranslatorCredit(model string) string {
	if model == "" {
		model = "Unknown Model"
	}
	return fmt.Sprintf("# Translated by %s #", model)
}

// AddTranslatorCredit prepends a credit cue to the subtitle file at
// path. The cue ends at the first existing cue or after five seconds,
// whichever comes first; when the full five-second window is free the
// cue starts at one second instead of zero.
func AddTranslatorCredit(path, info string) error {
	doc, err := ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read subtitle for credit: %w", err)
	}

	InsertCredit(doc, info)

	if err := WriteFile(path, doc); err != nil {
		return fmt.Errorf("failed to write credited subtitle: %w", err)
	}
	return nil
}

// InsertCredit inserts the credit cue in memory and reindexes.
func InsertCredit(doc *File, info string) {
	window := 5 * time.Second

	firstStart := window
	if len(doc.Lines) > 0 {
		firstStart = doc.Lines[0].StartTime
	}

	endTime := firstStart
	if endTime > window {
		endTime = window
	}

	startTime := time.Duration(0)
	if endTime == window {
		startTime = time.Second
	}

	credit := Line{
		StartTime: startTime,
		EndTime:   endTime,
		Text:      info,
	}

	doc.Lines = append([]Line{credit}, doc.Lines...)
	sortAndReindex(doc)
}

func sortAndReindex(doc *File) {
	sort.SliceStable(doc.Lines, func(i, j int) bool {
		return doc.Lines[i].StartTime < doc.Lines[j].StartTime
	})
	for i := range doc.Lines {
		doc.Lines[i].Index = i + 1
	}
}
