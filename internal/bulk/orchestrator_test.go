package bulk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/amrelsisy2023/HiLyte-sub000/constants"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/common"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/entity"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/extract"
)

type fakeExtractor struct {
	mu       sync.Mutex
	started  int           // calls that have entered, including ones held at the gate
	pages    []int         // sheet page numbers in extraction order
	failPage int
	gate     chan struct{} // when set, every page blocks until closed
}

func (f *fakeExtractor) ExtractRegion(ctx context.Context, _ string, _ entity.Region, sheet entity.SheetMetadata, _ []entity.Division) (*extract.RegionResult, error) {
	f.mu.Lock()
	f.started++
	f.mu.Unlock()
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	f.pages = append(f.pages, sheet.PageNumber)
	f.mu.Unlock()

	if sheet.PageNumber == f.failPage {
		return nil, common.NewAppError("OCR_FAILED", "simulated page failure", common.ErrOCREngine)
	}
	return &extract.RegionResult{
		Items: []entity.ExtractedItem{{
			ItemName:    fmt.Sprintf("Item p%d", sheet.PageNumber),
			CSIDivision: entity.Division{ID: 1, Code: "01"},
			Confidence:  0.8,
		}},
	}, nil
}

type fakePages struct {
	missing map[int]bool
}

func (f *fakePages) GetPageImagePath(drawingID string, page int) (string, error) {
	if f.missing[page] {
		return "", common.NewAppError("PAGE_RASTER_MISSING", "no raster", common.ErrNotFound)
	}
	return fmt.Sprintf("/uploads/%s/pages/page.%d.png", drawingID, page), nil
}

type fakeSheets struct {
	sheets []entity.SheetMetadata
	err    error
}

func (f *fakeSheets) GetSheetMetadata(context.Context, string) ([]entity.SheetMetadata, error) {
	return f.sheets, f.err
}

type fakeDivisions struct{ err error }

func (f *fakeDivisions) ListDivisions(context.Context) ([]entity.Division, error) {
	if f.err != nil {
		return nil, f.err
	}
	return constants.DefaultDivisions, nil
}

type fakeSink struct {
	mu    sync.Mutex
	calls int
	items []entity.ExtractedItem
	err   error
}

func (f *fakeSink) SaveExtractedItems(_ context.Context, _ string, items []entity.ExtractedItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.items = append(f.items, items...)
	return f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitForDone(t *testing.T, o *Orchestrator, drawingID string) entity.BulkStatus {
	t.Helper()
	require.Eventually(t, func() bool {
		return !o.Status(drawingID).IsProcessing
	}, 5*time.Second, 5*time.Millisecond)
	return o.Status(drawingID)
}

func TestBulkRunAggregatesAcrossBatches(t *testing.T) {
	ex := &fakeExtractor{failPage: 7}
	sink := &fakeSink{}
	o := NewOrchestrator(ex, &fakePages{}, &fakeSheets{}, &fakeDivisions{}, sink, testLogger(), WithBatchSize(5))

	require.NoError(t, o.Start("dwg-1", 12, "plans.pdf"))
	status := waitForDone(t, o, "dwg-1")

	require.Equal(t, entity.BulkComplete, status.Phase)
	require.Equal(t, 12, status.CurrentPage)
	// Page 7 failed; its failure costs one item, never the run.
	require.Equal(t, 11, status.ExtractedItemCount)

	require.Equal(t, 1, sink.calls)
	require.Len(t, sink.items, 11)
	require.Len(t, ex.pages, 12)
}

func TestBulkSkipsMissingRasters(t *testing.T) {
	ex := &fakeExtractor{}
	sink := &fakeSink{}
	pages := &fakePages{missing: map[int]bool{1: true}}
	o := NewOrchestrator(ex, pages, &fakeSheets{}, &fakeDivisions{}, sink, testLogger())

	require.NoError(t, o.Start("dwg-2", 3, "plans.pdf"))
	status := waitForDone(t, o, "dwg-2")

	require.Equal(t, entity.BulkComplete, status.Phase)
	require.Equal(t, 2, status.ExtractedItemCount)
	require.NotContains(t, ex.pages, 1)
}

func TestBulkUsesSheetMetadata(t *testing.T) {
	ex := &fakeExtractor{}
	sheets := &fakeSheets{sheets: []entity.SheetMetadata{
		{PageNumber: 1, SheetNumber: "A-101", SheetName: "Floor Plan"},
	}}
	sink := &fakeSink{}
	o := NewOrchestrator(ex, &fakePages{}, sheets, &fakeDivisions{}, sink, testLogger())

	require.NoError(t, o.Start("dwg-3", 1, "plans.pdf"))
	waitForDone(t, o, "dwg-3")

	require.Equal(t, []int{1}, ex.pages)
}

func TestBulkRejectsConcurrentRunForSameDrawing(t *testing.T) {
	gate := make(chan struct{})
	ex := &fakeExtractor{gate: gate}
	o := NewOrchestrator(ex, &fakePages{}, &fakeSheets{}, &fakeDivisions{}, &fakeSink{}, testLogger())

	require.NoError(t, o.Start("dwg-4", 2, "plans.pdf"))

	err := o.Start("dwg-4", 2, "plans.pdf")
	require.Error(t, err)
	require.True(t, errors.Is(err, common.ErrBulkBusy))

	// A different drawing is unaffected.
	require.NoError(t, o.Start("dwg-other", 1, "other.pdf"))

	close(gate)
	waitForDone(t, o, "dwg-4")
	waitForDone(t, o, "dwg-other")
}

func TestBulkCancel(t *testing.T) {
	gate := make(chan struct{})
	ex := &fakeExtractor{gate: gate}
	sink := &fakeSink{}
	o := NewOrchestrator(ex, &fakePages{}, &fakeSheets{}, &fakeDivisions{}, sink, testLogger(), WithBatchSize(1))

	require.NoError(t, o.Start("dwg-5", 10, "plans.pdf"))
	require.True(t, o.Cancel("dwg-5"))

	status := o.Status("dwg-5")
	require.False(t, status.IsProcessing)
	require.Equal(t, entity.BulkIdle, status.Phase)

	close(gate)
	// The in-flight page drains, but nothing is ever persisted.
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 0, sink.calls)
}

func TestBulkCancelThenRestart(t *testing.T) {
	gate := make(chan struct{})
	ex := &fakeExtractor{gate: gate}
	sink := &fakeSink{}
	o := NewOrchestrator(ex, &fakePages{}, &fakeSheets{}, &fakeDivisions{}, sink, testLogger(), WithBatchSize(5))

	require.NoError(t, o.Start("dwg-9", 10, "plans.pdf"))
	// Let the first batch get in flight before cancelling.
	require.Eventually(t, func() bool {
		ex.mu.Lock()
		defer ex.mu.Unlock()
		return ex.started == 5
	}, 5*time.Second, 5*time.Millisecond)

	require.True(t, o.Cancel("dwg-9"))
	require.NoError(t, o.Start("dwg-9", 10, "plans.pdf"))
	close(gate)

	status := waitForDone(t, o, "dwg-9")
	require.Equal(t, entity.BulkComplete, status.Phase)
	require.Equal(t, 10, status.CurrentPage)
	require.Equal(t, 10, status.ExtractedItemCount)

	// The cancelled run drains its in-flight batch and discards the items;
	// only the restarted run persists, exactly once.
	sink.mu.Lock()
	calls, saved := sink.calls, len(sink.items)
	sink.mu.Unlock()
	require.Equal(t, 1, calls)
	require.Equal(t, 10, saved)

	// 5 pages from the cancelled run's first batch plus the restart's 10.
	ex.mu.Lock()
	attempted := ex.started
	ex.mu.Unlock()
	require.Equal(t, 15, attempted)
}

func TestBulkCancelWhenIdle(t *testing.T) {
	o := NewOrchestrator(&fakeExtractor{}, &fakePages{}, &fakeSheets{}, &fakeDivisions{}, &fakeSink{}, testLogger())
	require.False(t, o.Cancel("unknown-drawing"))
}

func TestBulkStatusUnknownDrawingIsIdle(t *testing.T) {
	o := NewOrchestrator(&fakeExtractor{}, &fakePages{}, &fakeSheets{}, &fakeDivisions{}, &fakeSink{}, testLogger())
	require.Equal(t, entity.BulkIdle, o.Status("never-started").Phase)
}

func TestBulkInvalidPageCount(t *testing.T) {
	o := NewOrchestrator(&fakeExtractor{}, &fakePages{}, &fakeSheets{}, &fakeDivisions{}, &fakeSink{}, testLogger())
	err := o.Start("dwg-6", 0, "plans.pdf")
	require.Error(t, err)
	require.True(t, errors.Is(err, common.ErrInvalidInput))
}

func TestBulkDivisionLoadFailure(t *testing.T) {
	o := NewOrchestrator(&fakeExtractor{}, &fakePages{}, &fakeSheets{}, &fakeDivisions{err: errors.New("db down")}, &fakeSink{}, testLogger())

	require.NoError(t, o.Start("dwg-7", 2, "plans.pdf"))
	status := waitForDone(t, o, "dwg-7")
	require.Equal(t, entity.BulkError, status.Phase)
	require.NotEmpty(t, status.Error)
}

func TestBulkPersistFailure(t *testing.T) {
	sink := &fakeSink{err: errors.New("disk full")}
	o := NewOrchestrator(&fakeExtractor{}, &fakePages{}, &fakeSheets{}, &fakeDivisions{}, sink, testLogger())

	require.NoError(t, o.Start("dwg-8", 1, "plans.pdf"))
	status := waitForDone(t, o, "dwg-8")
	require.Equal(t, entity.BulkError, status.Phase)
}
