package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: uint8(x * 40), A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil))
	return buf.Bytes()
}

func TestSniffImage(t *testing.T) {
	ct, err := SniffImage(encodePNG(t, 2, 2))
	require.NoError(t, err)
	require.Equal(t, ContentTypePNG, ct)

	ct, err = SniffImage(encodeJPEG(t, 2, 2))
	require.NoError(t, err)
	require.Equal(t, ContentTypeJPEG, ct)

	_, err = SniffImage([]byte("GIF89a......"))
	require.ErrorIs(t, err, ErrUnsupportedImage)
	_, err = SniffImage([]byte("%PDF-1.4"))
	require.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestNormalizeImageKeepsFormatAndCapsWidth(t *testing.T) {
	out, ct, err := NormalizeImage(encodeJPEG(t, 40, 20), 10, 80)
	require.NoError(t, err)
	require.Equal(t, ContentTypeJPEG, ct)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 10, cfg.Width)
	require.Equal(t, 5, cfg.Height)

	out, ct, err = NormalizeImage(encodePNG(t, 3, 2), 0, 0)
	require.NoError(t, err)
	require.Equal(t, ContentTypePNG, ct)
	cfg, err = png.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Width)
}

func TestApplyOrientation(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	marker := color.RGBA{R: 255, A: 255}
	src.Set(0, 0, marker)

	rotated := applyOrientation(src, 6)
	require.Equal(t, 2, rotated.Bounds().Dx())
	require.Equal(t, 3, rotated.Bounds().Dy())
	// top-left moves to top-right on a clockwise turn
	require.Equal(t, marker, color.RGBAModel.Convert(rotated.At(1, 0)))

	require.Equal(t, src, applyOrientation(src, 1))
}

func TestReadAllLimit(t *testing.T) {
	b, err := ReadAllLimit(strings.NewReader("12345"), 5)
	require.NoError(t, err)
	require.Len(t, b, 5)

	_, err = ReadAllLimit(strings.NewReader("123456"), 5)
	require.ErrorIs(t, err, ErrFileTooLarge)
}
