package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amrelsisy2023/HiLyte-sub000/constants"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/common"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/entity"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSeedDivisionsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SeedDivisions(ctx, constants.DefaultDivisions))
	require.NoError(t, s.SeedDivisions(ctx, constants.DefaultDivisions))

	divisions, err := s.ListDivisions(ctx)
	require.NoError(t, err)
	require.Len(t, divisions, len(constants.DefaultDivisions))
	require.Equal(t, "01", divisions[0].Code)
	require.Equal(t, "General Requirements", divisions[0].Name)
}

func TestSheetMetadataUpsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.PutSheetMetadata(ctx, "dwg-1", []entity.SheetMetadata{
		{PageNumber: 1, SheetNumber: "A-100", SheetName: "Cover"},
		{PageNumber: 2, SheetNumber: "A-101", SheetName: "Floor Plan"},
	}))
	// Re-labeling page 1 replaces, not duplicates.
	require.NoError(t, s.PutSheetMetadata(ctx, "dwg-1", []entity.SheetMetadata{
		{PageNumber: 1, SheetNumber: "G-001", SheetName: "General"},
	}))

	sheets, err := s.GetSheetMetadata(ctx, "dwg-1")
	require.NoError(t, err)
	require.Len(t, sheets, 2)
	require.Equal(t, "G-001", sheets[0].SheetNumber)
	require.Equal(t, "A-101", sheets[1].SheetNumber)

	other, err := s.GetSheetMetadata(ctx, "dwg-2")
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestSaveAndListExtractedItems(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	items := []entity.ExtractedItem{
		{
			ItemName:    "HM Door 101",
			Category:    "material",
			CSIDivision: entity.Division{ID: 8, Code: "08", Name: "Openings"},
			Location: entity.ItemLocation{
				Coordinates: entity.Region{X: 10, Y: 20, Width: 100, Height: 40},
				SheetNumber: "A-101",
				SheetName:   "Floor Plan",
				Zone:        "North",
			},
			Data:       map[string]string{"width": "3'-0\"", "rating": "90"},
			Confidence: 0.92,
			CalloutID:  "D-101",
		},
		{
			ItemName:    "RTU-1",
			Category:    "equipment",
			CSIDivision: entity.Division{ID: 16, Code: "23", Name: "HVAC"},
			Location: entity.ItemLocation{
				Coordinates: entity.Region{X: 0, Y: 0, Width: 50, Height: 50},
				SheetNumber: "M-201",
			},
			Data:       map[string]string{"capacity": "5 tons"},
			Confidence: 0.8,
			CalloutID:  "RTU-1",
		},
	}
	require.NoError(t, s.SaveExtractedItems(ctx, "dwg-1", items))

	got, err := s.ListExtractedItems(ctx, "dwg-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	byName := map[string]entity.ExtractedItem{}
	for _, it := range got {
		byName[it.ItemName] = it
	}
	door := byName["HM Door 101"]
	require.Equal(t, "08", door.CSIDivision.Code)
	require.Equal(t, "3'-0\"", door.Data["width"])
	require.Equal(t, "North", door.Location.Zone)
	require.Equal(t, entity.Region{X: 10, Y: 20, Width: 100, Height: 40}, door.Location.Coordinates)
	require.Equal(t, 0.92, door.Confidence)

	other, err := s.ListExtractedItems(ctx, "dwg-unknown")
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestSaveExtractedItemsEmptyIsNoop(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.SaveExtractedItems(ctx, "dwg-1", nil))

	got, err := s.ListExtractedItems(ctx, "dwg-1")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestPageFilesLookup(t *testing.T) {
	root := t.TempDir()
	p := NewPageFiles(root)

	_, err := p.GetPageImagePath("dwg-1", 1)
	require.Error(t, err)
	require.True(t, errors.Is(err, common.ErrNotFound))

	dir := filepath.Join(root, "dwg-1", "pages")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	want := filepath.Join(dir, "page.1.png")
	require.NoError(t, os.WriteFile(want, []byte("png"), 0o644))

	got, err := p.GetPageImagePath("dwg-1", 1)
	require.NoError(t, err)
	require.Equal(t, want, got)
}
