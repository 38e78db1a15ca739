// Package table reconstructs headers+rows grids from noisy OCR output of
// scanned construction schedules. Everything here is a pure function over its
// inputs: the same text block always yields the same structure.
//
// Scanned schedules routinely split one logical header across several
// physical OCR lines, use inconsistent spacing, and mix pipe-delimited and
// space-delimited fragments within the same table, so reconstruction runs
// two complementary column-boundary strategies and merges their candidates.
package table

import (
	"strings"
	"unicode"
)

const (
	minTableLineLen = 20
	maxTableLineLen = 200
	minTableTokens  = 4
	minTableLines   = 2
)

// isTableLikeLine reports whether a single OCR line looks like a table row:
// either it carries pipe delimiters, or it has the spacing/token/digit shape
// of a space-aligned schedule row.
func isTableLikeLine(line string) bool {
	if strings.Contains(line, "|") {
		return true
	}
	if len(line) < minTableLineLen || len(line) > maxTableLineLen {
		return false
	}
	if countSpaceRuns(line) < 2 {
		return false
	}
	if !strings.ContainsFunc(line, unicode.IsDigit) {
		return false
	}
	return len(strings.Fields(line)) >= minTableTokens
}

// countSpaceRuns counts runs of 2+ consecutive spaces.
func countSpaceRuns(line string) int {
	runs := 0
	runLen := 0
	for _, r := range line {
		if r == ' ' {
			runLen++
			continue
		}
		if runLen >= 2 {
			runs++
		}
		runLen = 0
	}
	if runLen >= 2 {
		runs++
	}
	return runs
}

// candidateLines returns the table-like lines of a block, preserving order.
func candidateLines(text string) []string {
	var out []string
	for _, ln := range strings.Split(text, "\n") {
		trimmed := strings.TrimRight(ln, " \t\r")
		if trimmed == "" {
			continue
		}
		if isTableLikeLine(trimmed) {
			out = append(out, trimmed)
		}
	}
	return out
}

// IsTable reports whether a block of OCR text is tabular: at least two of
// its lines must qualify individually.
func IsTable(text string) bool {
	return len(candidateLines(text)) >= minTableLines
}
