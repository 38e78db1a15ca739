// Package extract drives the single-region pipeline: preprocess, recognize,
// reconstruct, and optionally enhance with the AI vision service.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/amrelsisy2023/HiLyte-sub000/internal/ai"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/common"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/entity"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/ocr"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/table"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/taxonomy"
)

// Preprocessor crops and enhances a page raster region.
type Preprocessor interface {
	Preprocess(sourcePath string, region entity.Region) (string, func(), error)
}

// Recognizer runs OCR over a preprocessed region image.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (ocr.Result, error)
}

// VisionExtractor performs AI structured extraction when configured.
type VisionExtractor interface {
	IsEnabled() bool
	Extract(ctx context.Context, req ai.Request) (*ai.Response, error)
}

// RegionResult is what a single-region extraction hands back to the caller:
// the displayable result plus any structured items the AI pass produced.
type RegionResult struct {
	entity.ExtractionResult
	Items   []entity.ExtractedItem
	Columns map[string][]string
}

// Service is the single-region extraction boundary. Strategy order is
// deliberately unified: AI first whenever it is enabled, falling back to the
// OCR reconstruction only on an AI *parse* failure; AI network failures
// propagate because silently masking them would hide a retryable condition.
type Service struct {
	pre    Preprocessor
	ocr    Recognizer
	vision VisionExtractor
	logger *slog.Logger
}

func NewService(pre Preprocessor, rec Recognizer, vision VisionExtractor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{pre: pre, ocr: rec, vision: vision, logger: logger}
}

// ExtractRegion extracts one region of one page. Temp files created for the
// region are removed on every exit path. OCR-engine failures degrade to a
// low-confidence textual result; only an unreadable source image or an AI
// network failure surfaces as an error.
func (s *Service) ExtractRegion(ctx context.Context, imagePath string, region entity.Region, sheet entity.SheetMetadata, divisions []entity.Division) (*RegionResult, error) {
	tmpPath, cleanup, err := s.pre.Preprocess(imagePath, region)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	ocrRes, ocrErr := s.ocr.Recognize(ctx, tmpPath)
	if ocrErr != nil {
		s.logger.Warn("extract.ocr_failed", "image", imagePath, "error", ocrErr)
	}

	if s.vision != nil && s.vision.IsEnabled() {
		res, aiErr := s.aiPass(ctx, tmpPath, region, sheet, divisions, ocrRes)
		switch {
		case aiErr == nil:
			return res, nil
		case errors.Is(aiErr, common.ErrAIParse):
			// Model-output problem, not infrastructure: the OCR path below
			// still produces a usable result for this call.
			s.logger.Warn("extract.ai_parse_fallback", "image", imagePath, "error", aiErr)
		default:
			return nil, aiErr
		}
	}

	if ocrErr != nil {
		// Recognition engine crashed; surface something rather than failing
		// the whole request.
		return &RegionResult{ExtractionResult: entity.ExtractionResult{
			Text:       fmt.Sprintf("Text recognition failed for this region: %v", ocrErr),
			Confidence: 0,
			Type:       entity.ResultText,
		}}, nil
	}

	return &RegionResult{ExtractionResult: s.ocrResult(ocrRes)}, nil
}

// aiPass sends the preprocessed region to the vision model and folds the
// response together with the OCR reconstruction.
func (s *Service) aiPass(ctx context.Context, tmpPath string, region entity.Region, sheet entity.SheetMetadata, divisions []entity.Division, ocrRes ocr.Result) (*RegionResult, error) {
	png, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, common.NewAppError("AI_READ_IMAGE", fmt.Sprintf("read %s: %v", tmpPath, err), common.ErrAIExtraction)
	}

	hint := ocrRes.Text
	if hint == ocr.NoTextMessage {
		hint = ""
	}
	resp, err := s.vision.Extract(ctx, ai.Request{
		ImagePNG:  png,
		OCRText:   hint,
		Divisions: divisions,
		Sheet:     sheet,
		Region:    region,
	})
	if err != nil {
		return nil, err
	}

	base := s.ocrResult(ocrRes)
	base.AIEnhanced = true
	if conf := averageConfidence(resp.Items); conf > base.Confidence {
		base.Confidence = conf
	}
	switch {
	case base.Structured != nil && len(resp.Items) > 0:
		base.Type = entity.ResultMixed
	case len(resp.Items) > 0:
		base.Type = entity.ResultSpecification
	}

	return &RegionResult{
		ExtractionResult: base,
		Items:            resp.Items,
		Columns:          resp.Columns,
	}, nil
}

// ocrResult turns a recognition pass into a displayable result, running the
// table reconstructor and attaching advisory suggestions.
func (s *Service) ocrResult(res ocr.Result) entity.ExtractionResult {
	out := entity.ExtractionResult{
		Text:       res.Text,
		Confidence: res.Confidence,
		Type:       entity.ResultText,
	}
	if res.Text == ocr.NoTextMessage {
		return out
	}

	kind, structured := table.Reconstruct(res.Text, res.Words)
	out.Type = kind
	out.Structured = structured

	sug := &entity.Suggestions{}
	if code := taxonomy.SuggestCode(res.Text); code != "" {
		sug.Division = code
	}
	if structured != nil {
		sug.DataType = "table"
		if structured.ScheduleType != "" {
			sug.DataType = structured.ScheduleType
		}
	} else {
		sug.DataType = "text"
	}
	if res.Confidence > 0 && res.Confidence < 0.5 {
		sug.Improvement = "Low recognition confidence; try a tighter selection or a higher-resolution scan"
	}
	if sug.Division != "" || sug.Improvement != "" || sug.DataType != "" {
		out.Suggestions = sug
	}
	return out
}

func averageConfidence(items []entity.ExtractedItem) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum float64
	for _, it := range items {
		sum += it.Confidence
	}
	return sum / float64(len(items))
}
