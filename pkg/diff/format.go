package diff

import (
	"bytes"
	"fmt"
	"io"
)

const unifiedContextLines = 3

// FormatUnified writes a unified-style line diff for a single file to w.
// before or after may be nil for additions and deletions respectively.
// Identical content produces no output.
func FormatUnified(w io.Writer, path string, before, after []byte) error {
	if before == nil {
		before = []byte{}
	}
	if after == nil {
		after = []byte{}
	}

	if bytes.Equal(before, after) {
		return nil
	}

	if _, err := fmt.Fprintf(w, "diff --keel a/%s b/%s\n", path, path); err != nil {
		return err
	}
	fmt.Fprintf(w, "--- a/%s\n", path)
	fmt.Fprintf(w, "+++ b/%s\n", path)

	lines := LineDiff(before, after)
	for _, h := range buildHunks(lines, unifiedContextLines) {
		oldStart, oldCount, newStart, newCount := h.lineRange(lines)
		fmt.Fprintf(w, "@@ -%d,%d +%d,%d @@\n", oldStart, oldCount, newStart, newCount)

		for _, dl := range lines[h.start:h.end] {
			switch dl.Type {
			case Equal:
				fmt.Fprintf(w, " %s\n", dl.Content)
			case Insert:
				fmt.Fprintf(w, "+%s\n", dl.Content)
			case Delete:
				fmt.Fprintf(w, "-%s\n", dl.Content)
			}
		}
	}

	return nil
}

// hunk is a half-open range [start, end) into a LineDiff edit script.
type hunk struct {
	start int
	end   int
}

func buildHunks(lines []DiffLine, contextLines int) []hunk {
	if contextLines < 0 {
		contextLines = 0
	}

	var hunks []hunk
	for i, dl := range lines {
		if dl.Type == Equal {
			continue
		}

		start := i - contextLines
		if start < 0 {
			start = 0
		}
		end := i + contextLines + 1
		if end > len(lines) {
			end = len(lines)
		}

		if len(hunks) == 0 || start > hunks[len(hunks)-1].end {
			hunks = append(hunks, hunk{start: start, end: end})
			continue
		}
		if end > hunks[len(hunks)-1].end {
			hunks[len(hunks)-1].end = end
		}
	}

	return hunks
}

func (h hunk) lineRange(lines []DiffLine) (oldStart, oldCount, newStart, newCount int) {
	oldLine, newLine := 1, 1
	for i := 0; i < h.start; i++ {
		switch lines[i].Type {
		case Equal:
			oldLine++
			newLine++
		case Delete:
			oldLine++
		case Insert:
			newLine++
		}
	}

	oldStart, newStart = oldLine, newLine

	for i := h.start; i < h.end; i++ {
		switch lines[i].Type {
		case Equal:
			oldCount++
			newCount++
			oldLine++
			newLine++
		case Delete:
			oldCount++
			oldLine++
		case Insert:
			newCount++
			newLine++
		}
	}

	if oldCount == 0 {
		oldStart--
	}
	if newCount == 0 {
		newStart--
	}

	return oldStart, oldCount, newStart, newCount
}
