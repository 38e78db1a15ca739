package table

import (
	"sort"

	"github.com/amrelsisy2023/HiLyte-sub000/internal/entity"
)

const (
	// cellMergeGapPx: words closer than this horizontally (with vertically
	// aligned centers) belong to one cell ("DOOR" "MARK" -> "DOOR MARK").
	cellMergeGapPx = 25
	// cellCenterTolerancePx: vertical center tolerance for merging words
	// into a cell.
	cellCenterTolerancePx = 10
	// rowBandTolerancePx: cells whose vertical centers fall within this of
	// a row's running center share the row.
	rowBandTolerancePx = 20
)

// cell is a cluster of horizontally adjacent words.
type cell struct {
	text    string
	x       int
	right   int
	centerY int
}

// rowsFromWords reconstructs a grid from per-word bounding boxes. This path
// is preferred whenever boxes are available: spatial positions are immune to
// OCR's habit of inserting or dropping whitespace in the flat text.
func rowsFromWords(words []entity.WordBox) [][]string {
	cells := clusterCells(words)
	if len(cells) == 0 {
		return nil
	}
	bands := clusterRows(cells)
	return alignColumns(bands)
}

// clusterCells merges words whose horizontal gap is under cellMergeGapPx and
// whose vertical centers are within cellCenterTolerancePx into single cells.
func clusterCells(words []entity.WordBox) []cell {
	sorted := make([]entity.WordBox, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var cells []cell
	for _, w := range sorted {
		centerY := w.Y + w.Height/2
		merged := false
		for i := range cells {
			c := &cells[i]
			if abs(centerY-c.centerY) <= cellCenterTolerancePx &&
				w.X >= c.right && w.X-c.right <= cellMergeGapPx {
				c.text += " " + w.Text
				c.right = w.X + w.Width
				merged = true
				break
			}
		}
		if !merged {
			cells = append(cells, cell{
				text:    w.Text,
				x:       w.X,
				right:   w.X + w.Width,
				centerY: centerY,
			})
		}
	}
	return cells
}

// clusterRows groups cells into horizontal bands by vertical-center
// proximity and sorts each band left to right.
func clusterRows(cells []cell) [][]cell {
	sorted := make([]cell, len(cells))
	copy(sorted, cells)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].centerY < sorted[j].centerY })

	var bands [][]cell
	var bandCenter int
	for _, c := range sorted {
		if len(bands) > 0 && abs(c.centerY-bandCenter) <= rowBandTolerancePx {
			bands[len(bands)-1] = append(bands[len(bands)-1], c)
			continue
		}
		bands = append(bands, []cell{c})
		bandCenter = c.centerY
	}
	for _, band := range bands {
		sort.Slice(band, func(i, j int) bool { return band[i].x < band[j].x })
	}
	return bands
}

// alignColumns determines the column count from the widest band and assigns
// every cell to the nearest column start of that band, padding gaps with
// empty strings.
func alignColumns(bands [][]cell) [][]string {
	widest := 0
	for i, band := range bands {
		if len(band) > len(bands[widest]) {
			widest = i
		}
	}
	colStarts := make([]int, len(bands[widest]))
	for i, c := range bands[widest] {
		colStarts[i] = c.x
	}
	cols := len(colStarts)

	rows := make([][]string, len(bands))
	for bi, band := range bands {
		row := make([]string, cols)
		for _, c := range band {
			col := nearestColumn(colStarts, c.x)
			if row[col] == "" {
				row[col] = cleanCell(c.text)
			} else {
				row[col] += " " + cleanCell(c.text)
			}
		}
		rows[bi] = row
	}
	return rows
}

func nearestColumn(starts []int, x int) int {
	best := 0
	for i, s := range starts {
		if abs(x-s) < abs(x-starts[best]) {
			best = i
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
