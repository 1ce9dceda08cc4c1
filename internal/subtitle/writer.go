package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"
)

// WriteFile renders the cues back to SRT at path.
func WriteFile(path string, doc *File) error {
	if doc == nil {
		return fmt.Errorf("subtitle data is empty")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	return Write(f, doc)
}

// Write renders the cues as SRT to w.
func Write(w io.Writer, doc *File) error {
	bw := bufio.NewWriter(w)

	for _, line := range doc.Lines {
		fmt.Fprintf(bw, "%d\n", line.Index)
		fmt.Fprintf(bw, "%s --> %s\n", formatDuration(line.StartTime), formatDuration(line.EndTime))
		fmt.Fprintf(bw, "%s\n\n", line.Text)
	}

	return bw.Flush()
}

// formatDuration renders a duration in the SRT timestamp format.
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	milliseconds := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, milliseconds)
}
