// extract-region runs the single-region pipeline over one image file and
// prints the result as JSON. Useful for tuning OCR flags against a sample
// crop without standing up the full server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/amrelsisy2023/HiLyte-sub000/constants"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/ai"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/common"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/entity"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/extract"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/imaging"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/ocr"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 && len(os.Args) != 3 {
		logger.Error("usage", "cmd", "extract-region <image> [x,y,w,h]")
		os.Exit(2)
	}
	imagePath := os.Args[1]

	region := entity.Region{X: 0, Y: 0, Width: 1 << 24, Height: 1 << 24}
	if len(os.Args) == 3 {
		var err error
		region, err = parseRegion(os.Args[2])
		if err != nil {
			logger.Error("invalid region (want x,y,w,h)", "arg", os.Args[2], "error", err)
			os.Exit(2)
		}
	}

	cfg := common.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

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

	svc := extract.NewService(pre, engine, vision, logger)

	start := time.Now()
	res, err := svc.ExtractRegion(ctx, imagePath, region,
		entity.SheetMetadata{PageNumber: 1}, constants.DefaultDivisions)
	if err != nil {
		logger.Error("extraction failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
}

func parseRegion(arg string) (entity.Region, error) {
	parts := strings.Split(arg, ",")
	if len(parts) != 4 {
		return entity.Region{}, fmt.Errorf("expected 4 comma-separated values, got %d", len(parts))
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return entity.Region{}, err
		}
		vals[i] = v
	}
	return entity.Region{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}
