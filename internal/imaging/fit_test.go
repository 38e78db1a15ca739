package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amrelsisy2023/HiLyte-sub000/internal/common"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestFitPNGDownscalesOversized(t *testing.T) {
	data := encodePNG(t, 3000, 1000)

	fitted, err := FitPNG(data, 1500)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(fitted))
	require.NoError(t, err)
	require.Equal(t, 1500, img.Bounds().Dx())
	require.Equal(t, 500, img.Bounds().Dy())
}

func TestFitPNGPassesThroughWithinBounds(t *testing.T) {
	data := encodePNG(t, 800, 600)

	fitted, err := FitPNG(data, 2000)
	require.NoError(t, err)
	require.Equal(t, data, fitted)
}

func TestFitPNGDisabledByZeroMax(t *testing.T) {
	data := encodePNG(t, 3000, 1000)

	fitted, err := FitPNG(data, 0)
	require.NoError(t, err)
	require.Equal(t, data, fitted)
}

func TestFitPNGRejectsGarbage(t *testing.T) {
	_, err := FitPNG([]byte("not a png"), 2000)
	require.Error(t, err)
	require.True(t, errors.Is(err, common.ErrImagePreprocessing))
}
