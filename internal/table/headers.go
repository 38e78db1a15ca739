package table

import (
	"fmt"
	"strings"
	"unicode"
)

// headerTerms are column labels (and their scanned-drawing abbreviations)
// that recur across door, window, finish, and equipment schedules.
var headerTerms = []string{
	"door", "size", "width", "height", "type", "material", "finish",
	"frame", "rating", "detail", "head", "jamb", "sill", "hdwr",
	"comments", "thk", "matl", "widt", "hgt", "mark", "remarks",
	"mfr", "model", "qty",
}

const maxHeaderScan = 4

// scoreHeaderRow scores a row's likelihood of being the header: +2 per
// domain header term, -0.5 per digit character (data rows skew numeric),
// +0.5 per non-empty cell.
func scoreHeaderRow(row []string) float64 {
	var score float64
	for _, cell := range row {
		lower := strings.ToLower(cell)
		for _, term := range headerTerms {
			score += 2 * float64(strings.Count(lower, term))
		}
		for _, r := range cell {
			if unicode.IsDigit(r) {
				score -= 0.5
			}
		}
		if strings.TrimSpace(cell) != "" {
			score += 0.5
		}
	}
	return score
}

// selectHeader picks the best-scoring of the first four rows as the header
// and returns (headers, dataRows). Rows after the header that look like
// header continuations (header terms present, no digits) are dropped rather
// than treated as data.
func selectHeader(rows [][]string) ([]string, [][]string) {
	if len(rows) == 0 {
		return nil, nil
	}

	limit := len(rows)
	if limit > maxHeaderScan {
		limit = maxHeaderScan
	}
	headerIdx := 0
	best := scoreHeaderRow(rows[0])
	for i := 1; i < limit; i++ {
		if s := scoreHeaderRow(rows[i]); s > best {
			best = s
			headerIdx = i
		}
	}

	headers := fillHeaderGaps(rows, headerIdx)

	var data [][]string
	for i := headerIdx + 1; i < len(rows); i++ {
		if isHeaderContinuation(rows[i]) {
			continue
		}
		data = append(data, rows[i])
	}
	return headers, data
}

// isHeaderContinuation reports whether a row is the spill-over of a
// multi-line header: it carries header terms and no digits at all.
func isHeaderContinuation(row []string) bool {
	hasTerm := false
	for _, cell := range row {
		lower := strings.ToLower(cell)
		if strings.ContainsFunc(cell, unicode.IsDigit) {
			return false
		}
		for _, term := range headerTerms {
			if strings.Contains(lower, term) {
				hasTerm = true
				break
			}
		}
	}
	return hasTerm
}

// fillHeaderGaps repairs empty or truncated header cells. Scanned schedules
// split a single logical header across 2-4 physical lines, so a blank cell
// first tries to borrow non-numeric text from the same column of the next
// row; only then does it fall back to a synthetic COLUMN_n label.
func fillHeaderGaps(rows [][]string, headerIdx int) []string {
	src := rows[headerIdx]
	headers := make([]string, len(src))
	copy(headers, src)

	for i, h := range headers {
		if len(strings.TrimSpace(h)) >= 2 {
			continue
		}
		borrowed := ""
		if headerIdx+1 < len(rows) {
			next := rows[headerIdx+1]
			if i < len(next) && !looksNumeric(next[i]) {
				borrowed = strings.TrimSpace(next[i])
			}
		}
		if len(borrowed) >= 2 {
			headers[i] = borrowed
		} else {
			headers[i] = fmt.Sprintf("COLUMN_%d", i+1)
		}
	}
	return headers
}

// looksNumeric reports whether a cell is mostly digits, i.e. data rather
// than a header fragment.
func looksNumeric(cell string) bool {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return true
	}
	digits := 0
	for _, r := range cell {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return float64(digits)/float64(len(cell)) > 0.5
}
