package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amrelsisy2023/HiLyte-sub000/internal/common"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/entity"
)

// charWhitelist restricts recognition to characters that actually occur in
// architectural drawings, including degree and diameter marks. Everything
// else is noise tesseract would otherwise hallucinate from line work.
const charWhitelist = `0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz.,;:()[]{}'"-_/\|&#%@+=°Ø∅ `

// NoTextMessage is the explanatory text of a zero-confidence empty result.
const NoTextMessage = "No text detected in the selected region"

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string

	PSM int // 6 = single uniform block; regions are pre-cropped to one area
	OEM int // 1 = LSTM; leave 0 to use engine default
}

// Result is one recognition pass over a preprocessed region.
type Result struct {
	Text       string
	Confidence float64 // 0..1
	Words      []entity.WordBox
	Duration   time.Duration
	Warnings   []string
}

// Engine wraps an exec'd tesseract. One engine is constructed in main and
// shared; each Recognize call is an independent process, so concurrent
// callers do not serialize on shared state.
type Engine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.PSM == 0 {
		cfg.PSM = 6
	}
	return &Engine{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Recognize runs text recognition over a preprocessed region image. It runs a
// TSV pass first (word boxes + per-word confidence) and assembles the flat
// text from it; if the TSV pass fails it degrades to a plain text pass with
// no word boxes. Empty recognized text is not an error: it is reported as a
// zero-confidence result with explanatory text.
func (e *Engine) Recognize(ctx context.Context, imagePath string) (Result, error) {
	start := time.Now()

	words, conf, tsvErr := e.tesseractTSV(ctx, imagePath)
	if tsvErr == nil {
		res := Result{
			Text:       assembleText(words),
			Confidence: conf,
			Words:      words,
			Duration:   time.Since(start),
		}
		if strings.TrimSpace(res.Text) == "" {
			res = Result{Text: NoTextMessage, Confidence: 0, Duration: time.Since(start)}
		}
		e.logger.Debug("ocr.recognize.ok", "path", imagePath, "words", len(words), "confidence", conf)
		return res, nil
	}

	e.logger.Warn("ocr.tsv_pass_failed", "path", imagePath, "error", tsvErr)

	text, err := e.tesseractText(ctx, imagePath)
	if err != nil {
		return Result{}, common.NewAppError("OCR_FAILED", fmt.Sprintf("tesseract on %s: %v", imagePath, err), common.ErrOCREngine)
	}
	res := Result{
		Text:     strings.TrimSpace(text),
		Duration: time.Since(start),
		Warnings: []string{fmt.Sprintf("word positions unavailable: %v", tsvErr)},
	}
	if res.Text == "" {
		return Result{Text: NoTextMessage, Confidence: 0, Duration: time.Since(start)}, nil
	}
	// No per-word confidences on this path; assume middling quality.
	res.Confidence = 0.5
	return res, nil
}

func (e *Engine) baseArgs(imagePath string) []string {
	args := []string{imagePath, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", fmt.Sprintf("%d", e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	args = append(args, "-c", "tessedit_char_whitelist="+charWhitelist)
	return args
}

func (e *Engine) tesseractText(ctx context.Context, imagePath string) (string, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, e.baseArgs(imagePath)...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

func (e *Engine) tesseractTSV(ctx context.Context, imagePath string) ([]entity.WordBox, float64, error) {
	args := append(e.baseArgs(imagePath), "tsv")
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("tesseract tsv: %w (%s)", err, truncate(string(errb), 512))
	}
	words, conf := parseTSV(string(out))
	return words, conf, nil
}
