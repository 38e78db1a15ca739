package export

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/amrelsisy2023/HiLyte-sub000/internal/ai"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/entity"
)

// ItemSource lists the persisted items of a drawing.
type ItemSource interface {
	ListExtractedItems(ctx context.Context, drawingID string) ([]entity.ExtractedItem, error)
}

// Service is a tiny façade over the item store that produces XLSX bytes for
// exports.
type Service struct {
	items  ItemSource
	logger *slog.Logger
}

func NewService(items ItemSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{items: items, logger: logger}
}

// ExportItemsXLSX returns an XLSX workbook (as bytes) for a drawing's
// extracted items: one sheet per CSI division, columns derived from the data
// fields the items actually carry.
func (s *Service) ExportItemsXLSX(ctx context.Context, drawingID string) ([]byte, error) {
	start := time.Now()

	items, err := s.items.ListExtractedItems(ctx, drawingID)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}

	byDivision := map[string][]entity.ExtractedItem{}
	nameByCode := map[string]string{}
	for _, it := range items {
		byDivision[it.CSIDivision.Code] = append(byDivision[it.CSIDivision.Code], it)
		nameByCode[it.CSIDivision.Code] = it.CSIDivision.Name
	}
	columns := ai.DeriveColumns(items)

	codes := make([]string, 0, len(byDivision))
	for code := range byDivision {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	f := excelize.NewFile()
	if len(codes) == 0 {
		// Keep the default sheet so the workbook opens, just mark it empty.
		_ = f.SetCellValue("Sheet1", "A1", "No extracted items")
	}
	for i, code := range codes {
		sheet := sheetName(code, nameByCode[code])
		if i == 0 {
			_ = f.SetSheetName("Sheet1", sheet)
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		if err := s.writeDivisionSheet(f, sheet, columns[code], byDivision[code]); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"drawing_id", drawingID,
		"items", len(items),
		"divisions", len(codes),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (s *Service) writeDivisionSheet(f *excelize.File, sheet string, cols []string, items []entity.ExtractedItem) error {
	if len(cols) == 0 {
		cols = []string{"Item Name", "Location"}
	}
	headers := append(append([]string{}, cols...), "Confidence", "Callout")
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, it := range items {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		for i, col := range cols {
			switch col {
			case "Item Name":
				write(i+1, it.ItemName)
			case "Location":
				write(i+1, formatLocation(it.Location))
			default:
				write(i+1, fieldValue(it.Data, col))
			}
		}
		write(len(cols)+1, fmt.Sprintf("%.2f", it.Confidence))
		write(len(cols)+2, it.CalloutID)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 32)
	_ = f.SetColWidth(sheet, "B", "B", 24)
	if len(headers) > 2 {
		last, _ := excelize.ColumnNumberToName(len(headers))
		_ = f.SetColWidth(sheet, "C", last, 18)
	}
	return nil
}

// sheetName builds a worksheet title like "03 - Concrete", clipped to
// excelize's 31-character sheet name limit.
func sheetName(code, name string) string {
	title := code
	if name != "" {
		title = code + " - " + name
	}
	if len(title) > 31 {
		title = title[:31]
	}
	return title
}

func formatLocation(loc entity.ItemLocation) string {
	ref := loc.SheetNumber
	if loc.SheetName != "" {
		ref = fmt.Sprintf("%s (%s)", loc.SheetNumber, loc.SheetName)
	}
	if loc.Zone != "" {
		ref += ", " + loc.Zone
	}
	return ref
}

// fieldValue reverses the column title back onto the item's data map. The
// map keys are free-form model output (camelCase, snake_case), so match by
// normalized title rather than exact key.
func fieldValue(data map[string]string, column string) string {
	for key, value := range data {
		if titleEqual(key, column) {
			return value
		}
	}
	return ""
}

func titleEqual(key, column string) bool {
	return normalizeTitle(key) == normalizeTitle(column)
}

func normalizeTitle(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			out = append(out, r)
		}
	}
	return string(out)
}
