// Package ai sends region images to a vision-capable Anthropic model and
// turns the response into typed extraction items.
package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"github.com/amrelsisy2023/HiLyte-sub000/internal/common"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/entity"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/imaging"
)

// messageCreator is the slice of the Anthropic SDK we depend on; tests stub it.
type messageCreator interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type Config struct {
	APIKey      string
	Model       string // default claude-sonnet-4-20250514
	MaxTokens   int    // default 4000
	Timeout     time.Duration
	ImageMaxDim int // longest image side sent to the model, px; default 2000
}

// Service performs AI structured extraction. A service constructed without an
// API key reports itself disabled; callers must check IsEnabled before
// calling Extract rather than probing with a failed request.
type Service struct {
	cfg      Config
	messages messageCreator
	logger   *slog.Logger
}

func NewService(cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-20250514"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if cfg.ImageMaxDim <= 0 {
		cfg.ImageMaxDim = 2000
	}

	s := &Service{cfg: cfg, logger: logger}
	if cfg.APIKey != "" {
		client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
		s.messages = &client.Messages
	}
	return s
}

// IsEnabled reports whether the service holds a credential and may be called.
func (s *Service) IsEnabled() bool {
	return s.messages != nil
}

// Request is one region image plus its extraction context.
type Request struct {
	ImagePNG  []byte
	OCRText   string // optional hint from a prior OCR pass
	Divisions []entity.Division
	Sheet     entity.SheetMetadata
	Region    entity.Region
}

// Response carries the typed items, the model's run summary, and the derived
// per-division column lists.
type Response struct {
	Items   []entity.ExtractedItem
	Summary entity.ExtractionSummary
	Columns map[string][]string // division code -> column titles
}

// Extract sends the region image and prompt in a single request and parses
// the model's JSON. Network/model failures surface as ErrAIExtraction with
// no partial results; malformed JSON surfaces as ErrAIParse so callers can
// fall back to the OCR path for that case only.
func (s *Service) Extract(ctx context.Context, req Request) (*Response, error) {
	if !s.IsEnabled() {
		return nil, common.NewAppError("AI_DISABLED", "no API key configured", common.ErrAIDisabled)
	}

	rid := uuid.New().String()
	start := time.Now()
	s.logger.Info("ai.extract.start",
		"req_id", rid,
		"model", s.cfg.Model,
		"image_bytes", len(req.ImagePNG),
		"ocr_text_len", len(req.OCRText),
		"divisions", len(req.Divisions),
	)

	imgPNG := req.ImagePNG
	if fitted, err := imaging.FitPNG(imgPNG, s.cfg.ImageMaxDim); err != nil {
		// Send the original rather than fail; the model's own limits apply.
		s.logger.Warn("ai.extract.image_fit_failed", "req_id", rid, "error", err)
	} else {
		imgPNG = fitted
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	msg, err := s.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.cfg.Model),
		MaxTokens: int64(s.cfg.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: BuildSystemPrompt(req.Divisions)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64("image/png", base64.StdEncoding.EncodeToString(imgPNG)),
				anthropic.NewTextBlock(BuildUserPrompt(req.Sheet, req.OCRText)),
			),
		},
	})
	if err != nil {
		s.logger.Error("ai.extract.request_failed", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, common.NewAppError("AI_REQUEST", fmt.Sprintf("model request: %v", err), common.ErrAIExtraction)
	}

	var raw string
	for _, block := range msg.Content {
		if block.Type == "text" {
			raw += block.Text
		}
	}

	items, summary, err := parseResponse(raw, req)
	if err != nil {
		s.logger.Error("ai.extract.parse_failed", "req_id", rid, "error", err,
			"raw_len", len(raw), "elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	s.logger.Info("ai.extract.ok",
		"req_id", rid,
		"items", len(items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &Response{
		Items:   items,
		Summary: summary,
		Columns: DeriveColumns(items),
	}, nil
}
