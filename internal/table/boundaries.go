package table

import "sort"

const (
	// gapBlankShare: a character column is a gap candidate when at least
	// this share of lines is blank there.
	gapBlankShare = 0.6
	// wordStartShare: a position is a boundary candidate when at least this
	// share of lines starts a token there.
	wordStartShare = 0.4
	// boundaryMergeDist: boundaries closer than this collapse into one.
	boundaryMergeDist = 3
)

// gapBoundaries implements the vertical-gap strategy: build a per-column
// histogram of blankness across all candidate lines, mark columns blank in
// >=60% of lines, and collapse each contiguous blank run to its midpoint.
func gapBoundaries(lines []string) []int {
	if len(lines) == 0 {
		return nil
	}
	width := 0
	for _, ln := range lines {
		if len(ln) > width {
			width = len(ln)
		}
	}

	blank := make([]bool, width)
	for col := 0; col < width; col++ {
		n := 0
		for _, ln := range lines {
			// Treat the ragged right edge as text, not gap, so short
			// lines do not vote a trailing boundary into existence.
			if col < len(ln) && ln[col] == ' ' {
				n++
			}
		}
		blank[col] = float64(n)/float64(len(lines)) >= gapBlankShare
	}

	var out []int
	runStart := -1
	for col := 0; col <= width; col++ {
		if col < width && blank[col] {
			if runStart < 0 {
				runStart = col
			}
			continue
		}
		if runStart >= 0 {
			out = append(out, (runStart+col-1)/2)
			runStart = -1
		}
	}
	return out
}

// wordStartBoundaries implements the word-start strategy: record the
// character index where every token starts and keep positions shared by
// >=40% of lines.
func wordStartBoundaries(lines []string) []int {
	if len(lines) == 0 {
		return nil
	}
	counts := map[int]int{}
	for _, ln := range lines {
		for _, start := range tokenStarts(ln) {
			counts[start]++
		}
	}

	var out []int
	for pos, n := range counts {
		if float64(n)/float64(len(lines)) >= wordStartShare {
			out = append(out, pos)
		}
	}
	sort.Ints(out)
	return out
}

func tokenStarts(line string) []int {
	var starts []int
	inToken := false
	for i := 0; i < len(line); i++ {
		if line[i] == ' ' || line[i] == '\t' {
			inToken = false
			continue
		}
		if !inToken {
			starts = append(starts, i)
			inToken = true
		}
	}
	return starts
}

// mergeBoundaries unions both candidate sets, sorts, and collapses any two
// boundaries closer than boundaryMergeDist character columns, keeping the
// earlier one. Position 0 is always a column start.
func mergeBoundaries(gaps, wordStarts []int) []int {
	seen := map[int]bool{0: true}
	all := []int{0}
	for _, b := range append(append([]int{}, gaps...), wordStarts...) {
		if b >= 0 && !seen[b] {
			seen[b] = true
			all = append(all, b)
		}
	}
	sort.Ints(all)

	merged := all[:1]
	for _, b := range all[1:] {
		if b-merged[len(merged)-1] < boundaryMergeDist {
			continue
		}
		merged = append(merged, b)
	}
	return merged
}
