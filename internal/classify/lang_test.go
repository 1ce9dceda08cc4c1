package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLangCode(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"en", "en"},
		{"eng", "en"},
		{"ita", "it"},
		{"fre", "fr"},
		{"ger", "de"},
		{"chi", "zh"},
		{"chs", "zh"},
		{"pl", "pl"},
		{"KO", "ko"},
		{"english", "en"},
		{"", ""},
		{"1080p", ""},
		{"forced", ""},
		{"clash", ""},
		{"x264", ""},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLangCode(tt.token))
		})
	}
}

func TestCodeForLanguage(t *testing.T) {
	assert.Equal(t, "pl", CodeForLanguage("Polish"))
	assert.Equal(t, "ko", CodeForLanguage("korean"))
	assert.Equal(t, "pl", CodeForLanguage("pl"))
	assert.Equal(t, "en", CodeForLanguage(""))
	// Unknown languages fall back to the first two letters.
	assert.Equal(t, "kl", CodeForLanguage("klingon"))
}
