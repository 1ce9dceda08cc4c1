package file

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStem(t *testing.T) {
	assert.Equal(t, "Movie.ita", Stem("/media/Movie.ita.srt"))
	assert.Equal(t, "episode01", Stem("episode01.mkv"))
	assert.Equal(t, "noext", Stem("noext"))
	assert.Equal(t, "", Stem("dir/.hidden"))
}
