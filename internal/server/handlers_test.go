package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amrelsisy2023/HiLyte-sub000/constants"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/common"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/entity"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/extract"
)

type stubExtractor struct {
	res *extract.RegionResult
	err error
}

func (s *stubExtractor) ExtractRegion(context.Context, string, entity.Region, entity.SheetMetadata, []entity.Division) (*extract.RegionResult, error) {
	return s.res, s.err
}

type stubBulk struct {
	startErr  error
	status    entity.BulkStatus
	cancelled bool
}

func (s *stubBulk) Start(string, int, string) error { return s.startErr }
func (s *stubBulk) Status(string) entity.BulkStatus { return s.status }
func (s *stubBulk) Cancel(string) bool              { return s.cancelled }

type stubStore struct {
	divisions []entity.Division
	sheets    []entity.SheetMetadata
	items     []entity.ExtractedItem
	saved     []entity.ExtractedItem
	saveCalls int
}

func (s *stubStore) ListDivisions(context.Context) ([]entity.Division, error) {
	return s.divisions, nil
}

func (s *stubStore) GetSheetMetadata(context.Context, string) ([]entity.SheetMetadata, error) {
	return s.sheets, nil
}

func (s *stubStore) PutSheetMetadata(_ context.Context, _ string, sheets []entity.SheetMetadata) error {
	s.sheets = sheets
	return nil
}

func (s *stubStore) SaveExtractedItems(_ context.Context, _ string, items []entity.ExtractedItem) error {
	s.saveCalls++
	s.saved = append(s.saved, items...)
	return nil
}

func (s *stubStore) ListExtractedItems(context.Context, string) ([]entity.ExtractedItem, error) {
	return s.items, nil
}

type stubPages struct{ err error }

func (s *stubPages) GetPageImagePath(string, int) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "/uploads/dwg/pages/page.1.png", nil
}

type stubExporter struct{ data []byte }

func (s *stubExporter) ExportItemsXLSX(context.Context, string) ([]byte, error) {
	return s.data, nil
}

type testDeps struct {
	extractor *stubExtractor
	bulk      *stubBulk
	store     *stubStore
	pages     *stubPages
	exporter  *stubExporter
}

func newTestServer(d testDeps) http.Handler {
	if d.extractor == nil {
		d.extractor = &stubExtractor{res: &extract.RegionResult{}}
	}
	if d.bulk == nil {
		d.bulk = &stubBulk{}
	}
	if d.store == nil {
		d.store = &stubStore{divisions: constants.DefaultDivisions}
	}
	if d.pages == nil {
		d.pages = &stubPages{}
	}
	if d.exporter == nil {
		d.exporter = &stubExporter{data: []byte("xlsx-bytes")}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(":0", d.extractor, d.bulk, d.store, d.pages, d.exporter, logger).http.Handler
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleExtractRegion(t *testing.T) {
	store := &stubStore{divisions: constants.DefaultDivisions}
	extractor := &stubExtractor{res: &extract.RegionResult{
		ExtractionResult: entity.ExtractionResult{
			Text:       "DOOR 101",
			Confidence: 0.9,
			Type:       entity.ResultSpecification,
			AIEnhanced: true,
		},
		Items: []entity.ExtractedItem{{ItemName: "HM Door 101", CalloutID: "D-101"}},
	}}
	h := newTestServer(testDeps{store: store, extractor: extractor})

	rec := doJSON(t, h, http.MethodPost, "/api/extract/region", map[string]any{
		"drawingId": "dwg-1",
		"page":      1,
		"region":    map[string]int{"x": 0, "y": 0, "width": 100, "height": 50},
		"persist":   true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp extractRegionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "DOOR 101", resp.Text)
	require.True(t, resp.AIEnhanced)
	require.Len(t, resp.Items, 1)

	require.Equal(t, 1, store.saveCalls)
	require.Len(t, store.saved, 1)
}

func TestHandleExtractRegionValidation(t *testing.T) {
	h := newTestServer(testDeps{})

	rec := doJSON(t, h, http.MethodPost, "/api/extract/region", map[string]any{"page": 0})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleExtractRegionMissingPage(t *testing.T) {
	pages := &stubPages{err: common.NewAppError("PAGE_RASTER_MISSING", "no raster", common.ErrNotFound)}
	h := newTestServer(testDeps{pages: pages})

	rec := doJSON(t, h, http.MethodPost, "/api/extract/region", map[string]any{
		"drawingId": "dwg-1", "page": 99,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleBulkStartConflict(t *testing.T) {
	bulk := &stubBulk{startErr: common.NewAppError("BULK_BUSY", "already running", common.ErrBulkBusy)}
	h := newTestServer(testDeps{bulk: bulk})

	rec := doJSON(t, h, http.MethodPost, "/api/drawings/dwg-1/extract", map[string]any{
		"totalPages": 12, "filename": "plans.pdf",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleBulkStatusAndCancel(t *testing.T) {
	bulk := &stubBulk{
		status:    entity.BulkStatus{IsProcessing: true, Phase: entity.BulkExtracting, CurrentPage: 5, TotalPages: 12},
		cancelled: true,
	}
	h := newTestServer(testDeps{bulk: bulk})

	rec := doJSON(t, h, http.MethodGet, "/api/drawings/dwg-1/extract/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status entity.BulkStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.Equal(t, entity.BulkExtracting, status.Phase)
	require.Equal(t, 5, status.CurrentPage)

	rec = doJSON(t, h, http.MethodPost, "/api/drawings/dwg-1/extract/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"cancelled": true}`, rec.Body.String())
}

func TestHandleListDivisions(t *testing.T) {
	h := newTestServer(testDeps{})

	rec := doJSON(t, h, http.MethodGet, "/api/divisions", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var divisions []entity.Division
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &divisions))
	require.Len(t, divisions, len(constants.DefaultDivisions))
}

func TestHandlePutAndGetSheets(t *testing.T) {
	store := &stubStore{divisions: constants.DefaultDivisions}
	h := newTestServer(testDeps{store: store})

	rec := doJSON(t, h, http.MethodPut, "/api/drawings/dwg-1/sheets", []entity.SheetMetadata{
		{PageNumber: 1, SheetNumber: "A-101", SheetName: "Floor Plan"},
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/drawings/dwg-1/sheets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sheets []entity.SheetMetadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sheets))
	require.Len(t, sheets, 1)
	require.Equal(t, "A-101", sheets[0].SheetNumber)

	rec = doJSON(t, h, http.MethodPut, "/api/drawings/dwg-1/sheets", []entity.SheetMetadata{
		{PageNumber: 0, SheetNumber: "X"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleExport(t *testing.T) {
	h := newTestServer(testDeps{})

	rec := doJSON(t, h, http.MethodGet, "/api/drawings/dwg-1/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "xlsx-bytes", rec.Body.String())
	require.Contains(t, rec.Header().Get("Content-Disposition"), "dwg-1-items.xlsx")
}
