package ocr

import (
	"strconv"
	"strings"

	"github.com/amrelsisy2023/HiLyte-sub000/internal/entity"
)

// tesseract TSV columns:
// level page_num block_num par_num line_num word_num left top width height conf text
const tsvColumns = 12

// parseTSV extracts word boxes (level-5 rows) and the mean word confidence
// normalized to 0..1. Rows with conf -1 are layout rows, not words.
func parseTSV(out string) ([]entity.WordBox, float64) {
	var words []entity.WordBox
	var sum float64

	for i, ln := range strings.Split(out, "\n") {
		if i == 0 || strings.TrimSpace(ln) == "" {
			continue // header
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < tsvColumns {
			continue
		}
		level, err := strconv.Atoi(cols[0])
		if err != nil || level != 5 {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf < 0 {
			continue
		}
		text := strings.TrimSpace(cols[11])
		if text == "" {
			continue
		}
		left, _ := strconv.Atoi(cols[6])
		top, _ := strconv.Atoi(cols[7])
		width, _ := strconv.Atoi(cols[8])
		height, _ := strconv.Atoi(cols[9])

		words = append(words, entity.WordBox{
			Text:       text,
			X:          left,
			Y:          top,
			Width:      width,
			Height:     height,
			Confidence: conf / 100.0,
		})
		sum += conf
	}

	if len(words) == 0 {
		return nil, 0
	}
	return words, sum / float64(len(words)) / 100.0
}

// assembleText rebuilds the flat text from TSV word order. Tesseract emits
// words in reading order, so a newline is inserted whenever the word's
// vertical band moves on. Words whose top falls within half the running line
// height stay on the same line.
func assembleText(words []entity.WordBox) string {
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	lineTop := words[0].Y
	lineHeight := words[0].Height

	for i, w := range words {
		if i > 0 {
			if w.Y > lineTop+lineHeight/2 {
				b.WriteByte('\n')
				lineTop = w.Y
				lineHeight = w.Height
			} else {
				b.WriteByte(' ')
				if w.Height > lineHeight {
					lineHeight = w.Height
				}
			}
		}
		b.WriteString(w.Text)
	}
	return b.String()
}
