package ocr

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amrelsisy2023/HiLyte-sub000/internal/common"
)

// stubRunner answers tesseract invocations from canned output, keyed on
// whether the TSV config arg is present.
type stubRunner struct {
	tsvOut  string
	tsvErr  error
	textOut string
	textErr error

	calls []string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, strings.Join(append([]string{name}, args...), " "))
	if args[len(args)-1] == "tsv" {
		return []byte(s.tsvOut), nil, s.tsvErr
	}
	return []byte(s.textOut), nil, s.textErr
}

func newTestEngine(r Runner) *Engine {
	e := NewEngine(Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	e.runner = r
	return e
}

const tsvHeader = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext"

func tsvLine(level, left, top, width, height int, conf float64, text string) string {
	return strings.Join([]string{
		strconv.Itoa(level), "1", "1", "1", "1", "1",
		strconv.Itoa(left), strconv.Itoa(top), strconv.Itoa(width), strconv.Itoa(height),
		strconv.FormatFloat(conf, 'f', -1, 64), text,
	}, "\t")
}

func TestRecognizeTSVPass(t *testing.T) {
	out := strings.Join([]string{
		tsvHeader,
		"4\t1\t1\t1\t1\t0\t0\t0\t200\t12\t-1\t",
		tsvLine(5, 0, 0, 40, 10, 90, "MARK"),
		tsvLine(5, 60, 0, 50, 10, 80, "WIDTH"),
		tsvLine(5, 0, 30, 30, 10, 90, "101"),
	}, "\n")

	e := newTestEngine(&stubRunner{tsvOut: out})
	res, err := e.Recognize(context.Background(), "region.png")
	require.NoError(t, err)

	require.Len(t, res.Words, 3)
	require.Equal(t, "MARK", res.Words[0].Text)
	require.Equal(t, 0.9, res.Words[0].Confidence)
	require.Equal(t, "MARK WIDTH\n101", res.Text)
	require.InDelta(t, (90.0+80+90)/3/100, res.Confidence, 1e-9)
}

func TestRecognizeDegradesToTextPass(t *testing.T) {
	r := &stubRunner{
		tsvErr:  errors.New("tsv unsupported"),
		textOut: "DOOR SCHEDULE\n101 36 84\n",
	}
	e := newTestEngine(r)

	res, err := e.Recognize(context.Background(), "region.png")
	require.NoError(t, err)
	require.Equal(t, "DOOR SCHEDULE\n101 36 84", res.Text)
	require.Equal(t, 0.5, res.Confidence)
	require.Empty(t, res.Words)
	require.NotEmpty(t, res.Warnings)
}

func TestRecognizeBothPassesFail(t *testing.T) {
	r := &stubRunner{
		tsvErr:  errors.New("boom"),
		textErr: errors.New("boom"),
	}
	e := newTestEngine(r)

	_, err := e.Recognize(context.Background(), "region.png")
	require.Error(t, err)
	require.True(t, errors.Is(err, common.ErrOCREngine))
}

func TestRecognizeEmptyTextIsNotAnError(t *testing.T) {
	e := newTestEngine(&stubRunner{tsvOut: tsvHeader + "\n"})

	res, err := e.Recognize(context.Background(), "region.png")
	require.NoError(t, err)
	require.Equal(t, NoTextMessage, res.Text)
	require.Equal(t, 0.0, res.Confidence)
}

func TestBaseArgsIncludeWhitelist(t *testing.T) {
	r := &stubRunner{tsvOut: tsvHeader + "\n"}
	e := newTestEngine(r)

	_, err := e.Recognize(context.Background(), "region.png")
	require.NoError(t, err)
	require.Len(t, r.calls, 1)
	require.Contains(t, r.calls[0], "tessedit_char_whitelist=")
	require.Contains(t, r.calls[0], "--psm 6")
}
