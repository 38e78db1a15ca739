// Package bulk drives extraction across every page of a multi-page drawing
// in parallel batches, tracking per-drawing progress for UI polling.
package bulk

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/amrelsisy2023/HiLyte-sub000/internal/common"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/entity"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/extract"
)

// PageExtractor extracts the full content of one page image.
type PageExtractor interface {
	ExtractRegion(ctx context.Context, imagePath string, region entity.Region, sheet entity.SheetMetadata, divisions []entity.Division) (*extract.RegionResult, error)
}

// PageRasterLookup resolves the raster file for a page of a drawing.
type PageRasterLookup interface {
	GetPageImagePath(drawingID string, page int) (string, error)
}

// SheetMetadataLookup labels pages with human-readable sheet references.
type SheetMetadataLookup interface {
	GetSheetMetadata(ctx context.Context, drawingID string) ([]entity.SheetMetadata, error)
}

// DivisionLister snapshots the division taxonomy.
type DivisionLister interface {
	ListDivisions(ctx context.Context) ([]entity.Division, error)
}

// ItemSink persists extracted items. Called exactly once per bulk run with
// the full aggregate, never per page, to bound write amplification.
type ItemSink interface {
	SaveExtractedItems(ctx context.Context, drawingID string, items []entity.ExtractedItem) error
}

// fullPage is clamped to the actual raster bounds by the preprocessor.
var fullPage = entity.Region{X: 0, Y: 0, Width: 1 << 24, Height: 1 << 24}

type run struct {
	status    entity.BulkStatus
	cancelled bool
}

// Orchestrator runs at most one bulk extraction per drawing at a time.
// Status is keyed by drawing id, so different drawings can extract
// concurrently; it is the sole writer of its status map.
type Orchestrator struct {
	extractor PageExtractor
	pages     PageRasterLookup
	sheets    SheetMetadataLookup
	divisions DivisionLister
	sink      ItemSink

	batchSize   int
	pageTimeout time.Duration
	logger      *slog.Logger

	mu   sync.Mutex
	runs map[string]*run
}

type Option func(*Orchestrator)

func WithBatchSize(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

func WithPageTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.pageTimeout = d
		}
	}
}

func NewOrchestrator(extractor PageExtractor, pages PageRasterLookup, sheets SheetMetadataLookup, divisions DivisionLister, sink ItemSink, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		extractor:   extractor,
		pages:       pages,
		sheets:      sheets,
		divisions:   divisions,
		sink:        sink,
		batchSize:   5,
		pageTimeout: 3 * time.Minute,
		logger:      logger,
		runs:        map[string]*run{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start begins a bulk run for a drawing and returns immediately; progress is
// polled via Status. A second Start for a drawing whose run is still
// processing is rejected.
func (o *Orchestrator) Start(drawingID string, totalPages int, filename string) error {
	if totalPages <= 0 {
		return common.NewAppError("BULK_BAD_PAGES", "totalPages must be positive", common.ErrInvalidInput)
	}

	o.mu.Lock()
	if r, ok := o.runs[drawingID]; ok && r.status.IsProcessing {
		o.mu.Unlock()
		return common.NewAppError("BULK_BUSY", "bulk extraction already running for drawing "+drawingID, common.ErrBulkBusy)
	}
	r := &run{status: entity.BulkStatus{
		IsProcessing: true,
		DrawingID:    drawingID,
		Filename:     filename,
		TotalPages:   totalPages,
		Phase:        entity.BulkAnalyzing,
	}}
	o.runs[drawingID] = r
	o.mu.Unlock()

	go o.process(r, drawingID, totalPages)
	return nil
}

// Status returns a snapshot for a drawing; an unknown drawing reads as idle.
func (o *Orchestrator) Status(drawingID string) entity.BulkStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	if r, ok := o.runs[drawingID]; ok {
		return r.status
	}
	return entity.BulkStatus{Phase: entity.BulkIdle}
}

// Cancel requests cancellation of a drawing's active run. Returns false when
// no run is active for that drawing. Cancellation is cooperative: the status
// resets to idle immediately and no further batch is dispatched, but page
// requests already in flight run to completion and their results are
// discarded.
func (o *Orchestrator) Cancel(drawingID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	r, ok := o.runs[drawingID]
	if !ok || !r.status.IsProcessing {
		return false
	}
	r.cancelled = true
	r.status = entity.BulkStatus{DrawingID: drawingID, Phase: entity.BulkIdle}
	o.logger.Info("bulk.cancelled", "drawing_id", drawingID)
	return true
}

func (o *Orchestrator) process(r *run, drawingID string, totalPages int) {
	ctx := context.Background()
	start := time.Now()
	o.logger.Info("bulk.start", "drawing_id", drawingID, "total_pages", totalPages)

	divisions, err := o.divisions.ListDivisions(ctx)
	if err != nil {
		o.fail(r, drawingID, "load divisions: "+err.Error())
		return
	}

	sheetByPage := map[int]entity.SheetMetadata{}
	if sheets, err := o.sheets.GetSheetMetadata(ctx, drawingID); err != nil {
		// Sheet labels are cosmetic; pages fall back to "Page {n}".
		o.logger.Warn("bulk.sheet_metadata_unavailable", "drawing_id", drawingID, "error", err)
	} else {
		for _, s := range sheets {
			sheetByPage[s.PageNumber] = s
		}
	}

	o.setPhase(r, drawingID, entity.BulkExtracting)

	var all []entity.ExtractedItem
	for batchStart := 1; batchStart <= totalPages; batchStart += o.batchSize {
		if o.stopped(r, drawingID) {
			o.logger.Info("bulk.stopped_after_cancel", "drawing_id", drawingID)
			return
		}

		batchEnd := batchStart + o.batchSize - 1
		if batchEnd > totalPages {
			batchEnd = totalPages
		}

		items := o.processBatch(ctx, drawingID, batchStart, batchEnd, sheetByPage, divisions)
		all = append(all, items...)

		o.updateProgress(r, drawingID, batchEnd, len(all))
	}

	if o.stopped(r, drawingID) {
		return
	}

	if err := o.sink.SaveExtractedItems(ctx, drawingID, all); err != nil {
		o.logger.Error("bulk.persist_failed", "drawing_id", drawingID, "items", len(all), "error", err)
		o.fail(r, drawingID, "persist extracted items: "+err.Error())
		return
	}

	o.complete(r, drawingID, len(all))
	o.logger.Info("bulk.complete",
		"drawing_id", drawingID,
		"items", len(all),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}

// processBatch dispatches the batch's pages concurrently and waits for all
// of them; one page's failure never aborts the batch, it just contributes
// zero items.
func (o *Orchestrator) processBatch(ctx context.Context, drawingID string, first, last int, sheetByPage map[int]entity.SheetMetadata, divisions []entity.Division) []entity.ExtractedItem {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		batched []entity.ExtractedItem
	)
	for page := first; page <= last; page++ {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()
			items := o.processPage(ctx, drawingID, page, sheetByPage[page], divisions)
			if len(items) == 0 {
				return
			}
			mu.Lock()
			batched = append(batched, items...)
			mu.Unlock()
		}(page)
	}
	wg.Wait()
	return batched
}

func (o *Orchestrator) processPage(ctx context.Context, drawingID string, page int, sheet entity.SheetMetadata, divisions []entity.Division) []entity.ExtractedItem {
	imagePath, err := o.pages.GetPageImagePath(drawingID, page)
	if err != nil {
		// Cover pages and failed rasterizations have no image; skip, don't fail.
		o.logger.Debug("bulk.page_skipped", "drawing_id", drawingID, "page", page, "reason", err)
		return nil
	}

	if sheet.PageNumber == 0 {
		sheet = entity.SheetMetadata{PageNumber: page}
	}

	ctx, cancel := context.WithTimeout(ctx, o.pageTimeout)
	defer cancel()

	res, err := o.extractor.ExtractRegion(ctx, imagePath, fullPage, sheet, divisions)
	if err != nil {
		o.logger.Error("bulk.page_failed", "drawing_id", drawingID, "page", page, "error", err)
		return nil
	}
	return res.Items
}

// stopped reports whether this run was cancelled or replaced by a newer Start
// for the same drawing. The identity check matters after a cancel-then-restart:
// the cancelled goroutine must not dispatch further batches, write status, or
// persist items once a successor run owns the drawing's slot.
func (o *Orchestrator) stopped(r *run, drawingID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.runs[drawingID] != r || r.cancelled
}

// current reports, with o.mu held, whether r still owns the drawing's slot.
func (o *Orchestrator) current(r *run, drawingID string) bool {
	return o.runs[drawingID] == r && !r.cancelled
}

func (o *Orchestrator) setPhase(r *run, drawingID string, phase entity.BulkPhase) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current(r, drawingID) {
		r.status.Phase = phase
	}
}

func (o *Orchestrator) updateProgress(r *run, drawingID string, currentPage, itemCount int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current(r, drawingID) {
		r.status.CurrentPage = currentPage
		r.status.ExtractedItemCount = itemCount
	}
}

func (o *Orchestrator) complete(r *run, drawingID string, itemCount int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current(r, drawingID) {
		r.status.IsProcessing = false
		r.status.Phase = entity.BulkComplete
		r.status.ExtractedItemCount = itemCount
	}
}

func (o *Orchestrator) fail(r *run, drawingID string, msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current(r, drawingID) {
		r.status.IsProcessing = false
		r.status.Phase = entity.BulkError
		r.status.Error = msg
	}
}
