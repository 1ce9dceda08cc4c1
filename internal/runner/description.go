package runner

import "fmt"

// formattingRules is passed ahead of the context description so the
// model keeps subtitle lines short and dialogue dashes intact.
const formattingRules = `When translating text, follow these formatting rules:
1. Line length: Keep lines to 40-50 characters when possible, breaking at natural phrase boundaries or punctuation marks.
2. Dialogue formatting: When text contains dialogue between multiple speakers, format each speaker's lines separately, starting each with a dash (-).
3. Spacing: Ensure proper spacing between words and after punctuation marks.
4. Sentence breaks: If a sentence continues on the next line, maintain proper spacing between the end of one line and the beginning of the next.`

// BuildDescription renders the --description payload from the metadata
// the classifier and TMDB lookup derived. Any field may be empty; an
// empty return means no description flag is passed.
func BuildDescription(title, overview string, isSeries bool) string {
	contentType := "movie"
	if isSeries {
		contentType = "TV series"
	}

	switch {
	case title != "" && overview != "":
		return fmt.Sprintf("%s It is a %s called %s. Description: %s",
			formattingRules, contentType, title, overview)
	case overview != "":
		return overview
	case title != "":
		return fmt.Sprintf("It is a %s called %s.", contentType, title)
	default:
		return ""
	}
}
