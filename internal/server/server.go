// Package server exposes the extraction core over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/amrelsisy2023/HiLyte-sub000/internal/common"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/entity"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/extract"
)

// RegionExtractor is the interactive single-region pipeline.
type RegionExtractor interface {
	ExtractRegion(ctx context.Context, imagePath string, region entity.Region, sheet entity.SheetMetadata, divisions []entity.Division) (*extract.RegionResult, error)
}

// BulkRunner is the per-drawing bulk orchestrator.
type BulkRunner interface {
	Start(drawingID string, totalPages int, filename string) error
	Status(drawingID string) entity.BulkStatus
	Cancel(drawingID string) bool
}

// Store is the slice of the record store the handlers need.
type Store interface {
	ListDivisions(ctx context.Context) ([]entity.Division, error)
	GetSheetMetadata(ctx context.Context, drawingID string) ([]entity.SheetMetadata, error)
	PutSheetMetadata(ctx context.Context, drawingID string, sheets []entity.SheetMetadata) error
	SaveExtractedItems(ctx context.Context, drawingID string, items []entity.ExtractedItem) error
	ListExtractedItems(ctx context.Context, drawingID string) ([]entity.ExtractedItem, error)
}

// PageRasterLookup resolves page images for interactive extraction requests.
type PageRasterLookup interface {
	GetPageImagePath(drawingID string, page int) (string, error)
}

// Exporter produces the XLSX download for a drawing.
type Exporter interface {
	ExportItemsXLSX(ctx context.Context, drawingID string) ([]byte, error)
}

// Server wires the HTTP surface over the extraction collaborators.
type Server struct {
	extractor RegionExtractor
	bulk      BulkRunner
	store     Store
	pages     PageRasterLookup
	exporter  Exporter
	logger    *slog.Logger

	http *http.Server
}

func New(addr string, extractor RegionExtractor, bulk BulkRunner, store Store, pages PageRasterLookup, exporter Exporter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		extractor: extractor,
		bulk:      bulk,
		store:     store,
		pages:     pages,
		exporter:  exporter,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Route("/api", func(r chi.Router) {
		r.Post("/extract/region", s.handleExtractRegion)
		r.Get("/divisions", s.handleListDivisions)
		r.Route("/drawings/{drawingID}", func(r chi.Router) {
			r.Post("/extract", s.handleBulkStart)
			r.Get("/extract/status", s.handleBulkStatus)
			r.Post("/extract/cancel", s.handleBulkCancel)
			r.Get("/items", s.handleListItems)
			r.Get("/export", s.handleExport)
			r.Get("/sheets", s.handleGetSheets)
			r.Put("/sheets", s.handlePutSheets)
		})
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe blocks until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("server.listen", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// statusFor maps sentinel errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrBulkBusy):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
