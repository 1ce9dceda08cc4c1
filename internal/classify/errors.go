package classify

import (
	"errors"
	"fmt"
	"strings"
)

// UnrecognizedFormatError reports a path whose extension is not a known
// subtitle extension. Recoverable: the caller may skip or pass through.
type UnrecognizedFormatError struct {
	Path string `json:"path"`
	Ext  string `json:"ext"`
}

func (e *UnrecognizedFormatError) Error() string {
	if e.Ext == "" {
		return fmt.Sprintf("unrecognized format: %s has no extension", e.Path)
	}
	return fmt.Sprintf("unrecognized format: %s (extension %q is not a subtitle format)", e.Path, e.Ext)
}

// PathAccessError reports an input path that could not be read during
// expansion. Recoverable: siblings in the same batch are unaffected.
type PathAccessError struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

func (e *PathAccessError) Error() string {
	return fmt.Sprintf("cannot access %s: %v", e.Path, e.Err)
}

func (e *PathAccessError) Unwrap() error {
	return e.Err
}

// AmbiguousGroupingError reports a title group that cannot be ordered
// into distinct episodes, e.g. the same S01E01 present in two source
// languages. Must be surfaced to the user, never silently resolved.
// Paths carries the colliding files; Members lists every file of the
// excluded group, clean episodes included, so the caller can account
// for all of them.
type AmbiguousGroupingError struct {
	Title   string   `json:"title"`
	Marker  string   `json:"marker"`
	Paths   []string `json:"paths"`
	Members []string `json:"members"`
}

func (e *AmbiguousGroupingError) Error() string {
	return fmt.Sprintf("ambiguous grouping for %q: marker %q appears in multiple files: %s",
		e.Title, e.Marker, strings.Join(e.Paths, ", "))
}

// IsUnrecognizedFormat reports whether err is an UnrecognizedFormatError.
func IsUnrecognizedFormat(err error) bool {
	var target *UnrecognizedFormatError
	return errors.As(err, &target)
}

// IsAmbiguousGrouping reports whether err is an AmbiguousGroupingError.
func IsAmbiguousGrouping(err error) bool {
	var target *AmbiguousGroupingError
	return errors.As(err, &target)
}
