package table

import (
	"regexp"
	"strings"
)

// cellNoise matches characters OCR tends to invent at cell edges. Interior
// alphanumerics and the punctuation that legitimately occurs in specs
// (- . , ( ) [ ] / & # ' " :) survive cleaning.
var (
	cellNoise  = regexp.MustCompile(`[^0-9A-Za-z\-.,()\[\]/&#'":° ]+`)
	multiSpace = regexp.MustCompile(`\s+`)
)

// sliceRow cuts a line into len(boundaries) substrings using the merged
// boundaries as column-start offsets; the last column is open-ended.
func sliceRow(line string, boundaries []int) []string {
	cells := make([]string, len(boundaries))
	for i, start := range boundaries {
		if start >= len(line) {
			cells[i] = ""
			continue
		}
		end := len(line)
		if i+1 < len(boundaries) && boundaries[i+1] < end {
			end = boundaries[i+1]
		}
		cells[i] = cleanCell(line[start:end])
	}
	return cells
}

// cleanCell strips pipes and stray OCR noise from a cell, collapsing runs of
// whitespace to single spaces.
func cleanCell(s string) string {
	s = strings.ReplaceAll(s, "|", " ")
	s = cellNoise.ReplaceAllString(s, " ")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// splitWhitespaceRuns is the degenerate fallback when boundary detection
// collapses: split on pipes and runs of 2+ spaces, per line.
func splitWhitespaceRuns(line string) []string {
	line = strings.ReplaceAll(line, "|", "  ")
	var cells []string
	for _, part := range regexp.MustCompile(`\s{2,}`).Split(line, -1) {
		if c := cleanCell(part); c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}
