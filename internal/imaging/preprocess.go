// Package imaging prepares cropped drawing regions for OCR. Selections on
// construction drawings are often small and low-contrast; the pipeline here
// (crop, upscale, grayscale, contrast stretch, unsharp mask) exists purely to
// raise recognition accuracy on text a few pixels tall.
package imaging

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"

	_ "image/jpeg"

	xdraw "golang.org/x/image/draw"

	"github.com/amrelsisy2023/HiLyte-sub000/internal/common"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/entity"
)

const (
	// upscaleFactor is applied to small selections so glyphs land in
	// tesseract's comfortable 20-40px height range.
	upscaleFactor = 4
	maxDimension  = 4096

	contrastGain  = 1.4
	sharpenAmount = 0.6
)

// Preprocessor crops and enhances page rasters ahead of OCR.
type Preprocessor struct {
	tempDir string
	logger  *slog.Logger
}

func NewPreprocessor(tempDir string, logger *slog.Logger) *Preprocessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preprocessor{tempDir: tempDir, logger: logger}
}

// Preprocess crops sourcePath to region (clamped to the image bounds),
// enhances the crop, and writes it as a lossless PNG at a temporary path.
// The caller owns the temp file and must call cleanup on every exit path;
// on error no temp file is left behind.
func (p *Preprocessor) Preprocess(sourcePath string, region entity.Region) (string, func(), error) {
	f, err := os.Open(sourcePath)
	if err != nil {
		return "", nil, common.NewAppError("PREPROCESS_OPEN", fmt.Sprintf("open %s", sourcePath), common.ErrImagePreprocessing)
	}
	src, _, err := image.Decode(f)
	cerr := f.Close()
	if err != nil {
		return "", nil, common.NewAppError("PREPROCESS_DECODE", fmt.Sprintf("decode %s: %v", sourcePath, err), common.ErrImagePreprocessing)
	}
	if cerr != nil {
		p.logger.Warn("preprocess.close_source", "path", sourcePath, "error", cerr)
	}

	bounds := src.Bounds()
	clamped := region.Clamp(bounds.Dx(), bounds.Dy())
	if clamped.Empty() {
		return "", nil, common.NewAppError("PREPROCESS_EMPTY_REGION",
			fmt.Sprintf("region %+v resolves to zero area within %dx%d", region, bounds.Dx(), bounds.Dy()),
			common.ErrImagePreprocessing)
	}

	cropped := crop(src, clamped)
	scaled := upscale(cropped)
	gray := grayscale(scaled)
	adjustContrast(gray, contrastGain)
	sharpened := unsharpMask(gray, sharpenAmount)

	tmp, err := os.CreateTemp(p.tempDir, "region-*.png")
	if err != nil {
		return "", nil, common.NewAppError("PREPROCESS_TEMP", "create temp file", common.ErrImagePreprocessing)
	}
	tmpPath := tmp.Name()
	if err := png.Encode(tmp, sharpened); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", nil, common.NewAppError("PREPROCESS_ENCODE", fmt.Sprintf("encode png: %v", err), common.ErrImagePreprocessing)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", nil, common.NewAppError("PREPROCESS_ENCODE", fmt.Sprintf("close temp: %v", err), common.ErrImagePreprocessing)
	}

	p.logger.Debug("preprocess.ok",
		"source", sourcePath,
		"region", fmt.Sprintf("%d,%d %dx%d", clamped.X, clamped.Y, clamped.Width, clamped.Height),
		"output", tmpPath,
	)

	cleanup := func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			p.logger.Warn("preprocess.cleanup", "path", tmpPath, "error", err)
		}
	}
	return tmpPath, cleanup, nil
}

func crop(src image.Image, r entity.Region) *image.RGBA {
	b := src.Bounds()
	rect := image.Rect(b.Min.X+r.X, b.Min.Y+r.Y, b.Min.X+r.X+r.Width, b.Min.Y+r.Y+r.Height)
	dst := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	xdraw.Copy(dst, image.Point{}, src, rect, xdraw.Src, nil)
	return dst
}

// upscale enlarges the crop by upscaleFactor using Catmull-Rom resampling,
// backing off so neither dimension exceeds maxDimension.
func upscale(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	factor := upscaleFactor
	for factor > 1 && (b.Dx()*factor > maxDimension || b.Dy()*factor > maxDimension) {
		factor--
	}
	if factor <= 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

func grayscale(src *image.RGBA) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(b)
	xdraw.Copy(dst, image.Point{}, src, b, xdraw.Src, nil)
	return dst
}

// adjustContrast applies a linear stretch around mid-gray in place.
func adjustContrast(img *image.Gray, gain float64) {
	for i, v := range img.Pix {
		img.Pix[i] = clampByte((float64(v)-128)*gain + 128)
	}
}

// unsharpMask sharpens by adding back the difference between the image and a
// 3x3 box blur: out = orig + amount*(orig-blur).
func unsharpMask(img *image.Gray, amount float64) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(b)
	copy(out.Pix, img.Pix)

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			var sum int
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					sum += int(img.Pix[(y+dy)*img.Stride+(x+dx)])
				}
			}
			blur := float64(sum) / 9
			orig := float64(img.Pix[y*img.Stride+x])
			out.Pix[y*out.Stride+x] = clampByte(orig + amount*(orig-blur))
		}
	}
	return out
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
