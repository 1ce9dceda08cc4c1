package subtitle

import (
	"time"

	"golang.org/x/text/language"
)

// Line is a single subtitle cue.
type Line struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// File is a parsed subtitle file.
type File struct {
	Path     string
	Lines    []Line
	Language language.Tag
	Format   string // e.g. SRT
}
