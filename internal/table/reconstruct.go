package table

import (
	"strings"

	"github.com/amrelsisy2023/HiLyte-sub000/internal/entity"
)

// scheduleTerms maps header vocabulary to the schedule type it implies.
// Ordered: the first matching term wins.
var scheduleTerms = []struct{ term, kind string }{
	{"door", "door schedule"},
	{"window", "window schedule"},
	{"finish", "finish schedule"},
	{"hdwr", "hardware schedule"},
	{"hardware", "hardware schedule"},
	{"equipment", "equipment schedule"},
	{"fixture", "fixture schedule"},
	{"lintel", "lintel schedule"},
}

// Reconstruct decides whether a block of OCR text is tabular and, if so,
// recovers the header row and data rows that best approximate the original
// grid. Word boxes, when present, drive a spatial clustering path instead of
// the character-column heuristics. Soft failures are normal outcomes: a
// non-tabular block comes back as ResultText with no structure, never as an
// error.
func Reconstruct(text string, words []entity.WordBox) (entity.ResultType, *entity.StructuredTable) {
	lines := candidateLines(text)
	if len(lines) < minTableLines {
		return entity.ResultText, nil
	}

	var rows [][]string
	if len(words) > 0 {
		rows = rowsFromWords(words)
	}
	if len(rows) < minTableLines {
		rows = rowsFromText(lines)
	}
	if len(rows) == 0 {
		return entity.ResultText, nil
	}

	headers, data := selectHeader(rows)
	if len(headers) == 0 {
		return entity.ResultText, nil
	}

	t := &entity.StructuredTable{
		Headers:      headers,
		Rows:         data,
		ScheduleType: detectScheduleType(headers),
	}
	t.Normalize()
	return entity.ResultTable, t
}

// rowsFromText recovers rows from candidate lines alone. Pipe-delimited
// blocks split on pipes; space-aligned blocks go through the merged
// column-boundary strategies; degenerate boundary results fall back to
// whitespace-run splitting.
func rowsFromText(lines []string) [][]string {
	piped := 0
	for _, ln := range lines {
		if strings.Contains(ln, "|") {
			piped++
		}
	}
	if piped*2 >= len(lines) {
		return pipeRows(lines)
	}

	boundaries := mergeBoundaries(gapBoundaries(lines), wordStartBoundaries(lines))
	if len(boundaries) <= 1 {
		// Degenerate: best-effort whitespace-run cells, still a table.
		var rows [][]string
		for _, ln := range lines {
			if cells := splitWhitespaceRuns(ln); len(cells) > 0 {
				rows = append(rows, cells)
			}
		}
		return rows
	}

	rows := make([][]string, 0, len(lines))
	for _, ln := range lines {
		rows = append(rows, sliceRow(ln, boundaries))
	}
	return rows
}

func pipeRows(lines []string) [][]string {
	var rows [][]string
	for _, ln := range lines {
		var cells []string
		for _, part := range strings.Split(ln, "|") {
			if c := cleanCell(part); c != "" {
				cells = append(cells, c)
			}
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	return rows
}

func detectScheduleType(headers []string) string {
	joined := strings.ToLower(strings.Join(headers, " "))
	for _, st := range scheduleTerms {
		if strings.Contains(joined, st.term) {
			return st.kind
		}
	}
	return ""
}
