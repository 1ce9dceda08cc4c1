package subtitle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:03,500
Hello there.

2
00:00:04,000 --> 00:00:06,000
How are you today?
My friend.

3
00:00:07,250 --> 00:00:09,000
Goodbye.
`

func TestParse_SRT(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleSRT))
	require.NoError(t, err)

	require.Len(t, doc.Lines, 3)
	assert.Equal(t, 1, doc.Lines[0].Index)
	assert.Equal(t, time.Second, doc.Lines[0].StartTime)
	assert.Equal(t, 3500*time.Millisecond, doc.Lines[0].EndTime)
	assert.Equal(t, "Hello there.", doc.Lines[0].Text)
	assert.Equal(t, "How are you today?\nMy friend.", doc.Lines[1].Text)
	assert.Equal(t, "SRT", doc.Format)
}

func TestParse_TrailingCueWithoutBlankLine(t *testing.T) {
	doc, err := Parse(strings.NewReader("1\n00:00:01,000 --> 00:00:02,000\nlast line"))
	require.NoError(t, err)
	require.Len(t, doc.Lines, 1)
	assert.Equal(t, "last line", doc.Lines[0].Text)
}

func TestParse_InvalidTime(t *testing.T) {
	_, err := Parse(strings.NewReader("1\nnot a timestamp\ntext\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse time")
}

func TestReadFile_RejectsNonSRT(t *testing.T) {
	_, err := ReadFile("/media/sub.ass")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only SRT")
}

func TestReadWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.srt")
	require.NoError(t, os.WriteFile(path, []byte(sampleSRT), 0o644))

	doc, err := ReadFile(path)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "out.srt")
	require.NoError(t, WriteFile(out, doc))

	reread, err := ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, doc.Lines, reread.Lines)
}

func TestDetectLanguage_English(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleSRT))
	require.NoError(t, err)

	base, _ := doc.Language.Base()
	assert.Equal(t, "en", base.String())
}
