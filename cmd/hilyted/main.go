package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/amrelsisy2023/HiLyte-sub000/constants"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/ai"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/bulk"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/common"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/export"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/extract"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/imaging"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/ocr"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/repository"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(cfg.Store.Path, logger)
	if err != nil {
		logger.Error("open store", "path", cfg.Store.Path, "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("close store", "error", cerr)
		}
	}()

	if err := store.SeedDivisions(ctx, constants.DefaultDivisions); err != nil {
		logger.Error("seed divisions", "error", err)
		os.Exit(1)
	}

	pages := repository.NewPageFiles(cfg.Store.UploadsDir)
	pre := imaging.NewPreprocessor(cfg.OCR.TempDir, logger)
	engine := ocr.NewEngine(ocr.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		PSM:           cfg.OCR.PSM,
		OEM:           cfg.OCR.OEM,
	}, logger)
	vision := ai.NewService(ai.Config{
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		MaxTokens:   cfg.AI.MaxTokens,
		Timeout:     cfg.AI.Timeout,
		ImageMaxDim: cfg.AI.ImageMaxDim,
	}, logger)
	if !vision.IsEnabled() {
		logger.Warn("ai extraction disabled, no ANTHROPIC_API_KEY; OCR-only mode")
	}

	extractor := extract.NewService(pre, engine, vision, logger)
	orchestrator := bulk.NewOrchestrator(extractor, pages, store, store, store, logger,
		bulk.WithBatchSize(cfg.Bulk.BatchSize),
		bulk.WithPageTimeout(cfg.Bulk.PageTimeout),
	)
	exporter := export.NewService(store, logger)

	srv := server.New(cfg.Server.Addr, extractor, orchestrator, store, pages, exporter, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
			os.Exit(1)
		}
	case err := <-errCh:
		if err != nil {
			logger.Error("serve", "error", err)
			os.Exit(1)
		}
	}
	logger.Info("stopped")
}
