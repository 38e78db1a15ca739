package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/amrelsisy2023/HiLyte-sub000/internal/common"
)

// FitPNG downscales a PNG so its longest side is at most maxDim pixels,
// preserving aspect ratio. The preprocessor upscales aggressively for OCR,
// which can leave region images larger than a vision model accepts; this
// caps them on the way out. Images already within bounds pass through
// unchanged, as does everything when maxDim is zero or negative.
func FitPNG(data []byte, maxDim int) ([]byte, error) {
	if maxDim <= 0 {
		return data, nil
	}

	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, common.NewAppError("FIT_DECODE", fmt.Sprintf("decode png: %v", err), common.ErrImagePreprocessing)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxDim {
		return data, nil
	}

	scale := float64(maxDim) / float64(longest)
	dw := int(float64(w)*scale + 0.5)
	dh := int(float64(h)*scale + 0.5)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, common.NewAppError("FIT_ENCODE", fmt.Sprintf("encode png: %v", err), common.ErrImagePreprocessing)
	}
	return buf.Bytes(), nil
}
