package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/amrelsisy2023/HiLyte-sub000/internal/entity"
)

type stubItems struct {
	items []entity.ExtractedItem
	err   error
}

func (s *stubItems) ListExtractedItems(context.Context, string) ([]entity.ExtractedItem, error) {
	return s.items, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExportItemsXLSXGroupsByDivision(t *testing.T) {
	src := &stubItems{items: []entity.ExtractedItem{
		{
			ItemName:    "HM Door 101",
			CSIDivision: entity.Division{ID: 8, Code: "08", Name: "Openings"},
			Location:    entity.ItemLocation{SheetNumber: "A-101", SheetName: "Floor Plan"},
			Data:        map[string]string{"width": "3'-0\""},
			Confidence:  0.92,
			CalloutID:   "D-101",
		},
		{
			ItemName:    "RTU-1",
			CSIDivision: entity.Division{ID: 16, Code: "23", Name: "HVAC"},
			Location:    entity.ItemLocation{SheetNumber: "M-201"},
			Data:        map[string]string{"capacity": "5 tons"},
			Confidence:  0.8,
			CalloutID:   "RTU-1",
		},
	}}
	svc := NewService(src, testLogger())

	data, err := svc.ExportItemsXLSX(context.Background(), "dwg-1")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	require.Equal(t, []string{"08 - Openings", "23 - HVAC"}, f.GetSheetList())

	rows, err := f.GetRows("08 - Openings")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, []string{"Item Name", "Location", "Width", "Confidence", "Callout"}, rows[0])
	require.Equal(t, "HM Door 101", rows[1][0])
	require.Equal(t, "A-101 (Floor Plan)", rows[1][1])
	require.Equal(t, "3'-0\"", rows[1][2])
	require.Equal(t, "D-101", rows[1][4])
}

func TestExportItemsXLSXEmptyDrawing(t *testing.T) {
	svc := NewService(&stubItems{}, testLogger())

	data, err := svc.ExportItemsXLSX(context.Background(), "dwg-empty")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	val, err := f.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	require.Equal(t, "No extracted items", val)
}

func TestExportItemsXLSXStoreError(t *testing.T) {
	svc := NewService(&stubItems{err: errors.New("db down")}, testLogger())
	_, err := svc.ExportItemsXLSX(context.Background(), "dwg-1")
	require.Error(t, err)
}
