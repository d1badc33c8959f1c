// Package utils holds upload helpers shared by the handlers and services.
package utils

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"net/http"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
)

const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
)

var ErrUnsupportedImage = errors.New("unsupported image format (need jpeg/png)")

// SniffImage identifies JPEG and PNG payloads by content, never by filename.
func SniffImage(b []byte) (string, error) {
	switch ct := http.DetectContentType(b); ct {
	case ContentTypeJPEG, ContentTypePNG:
		return ct, nil
	default:
		return "", ErrUnsupportedImage
	}
}

// NormalizeImage re-encodes an identity image in its own format with EXIF
// orientation applied and width capped at maxWidth (0 keeps the size).
// Re-encoding drops every metadata block, GPS included.
func NormalizeImage(input []byte, maxWidth int, quality int) ([]byte, string, error) {
	if len(input) == 0 {
		return nil, "", errors.New("empty image")
	}
	if quality <= 0 || quality > 100 {
		quality = 85
	}

	ct, err := SniffImage(input)
	if err != nil {
		return nil, "", err
	}

	var img image.Image
	if ct == ContentTypeJPEG {
		img, err = jpeg.Decode(bytes.NewReader(input))
		if err == nil {
			img = applyOrientation(img, readEXIFOrientation(bytes.NewReader(input)))
		}
	} else {
		img, err = png.Decode(bytes.NewReader(input))
	}
	if err != nil {
		return nil, "", ErrUnsupportedImage
	}

	if maxWidth > 0 {
		img = resizeMaxWidth(img, maxWidth)
	}

	var out bytes.Buffer
	if ct == ContentTypeJPEG {
		err = jpeg.Encode(&out, img, &jpeg.Options{Quality: quality})
	} else {
		err = png.Encode(&out, img)
	}
	if err != nil {
		return nil, "", err
	}
	return out.Bytes(), ct, nil
}

func readEXIFOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	ori, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return ori
}

// applyOrientation maps EXIF orientation 2..8 onto pixel coordinates:
// 2 flip H, 3 rotate 180, 4 flip V, 5 transpose, 6 rotate 90 CW,
// 7 transverse, 8 rotate 90 CCW.
func applyOrientation(src image.Image, ori int) image.Image {
	if ori < 2 || ori > 8 {
		return src
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dw, dh := w, h
	if ori >= 5 {
		dw, dh = h, w
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch ori {
			case 2:
				dx, dy = w-1-x, y
			case 3:
				dx, dy = w-1-x, h-1-y
			case 4:
				dx, dy = x, h-1-y
			case 5:
				dx, dy = y, x
			case 6:
				dx, dy = h-1-y, x
			case 7:
				dx, dy = h-1-y, w-1-x
			case 8:
				dx, dy = y, w-1-x
			}
			dst.Set(dx, dy, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

func resizeMaxWidth(src image.Image, maxW int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || w <= maxW {
		return src
	}

	newH := int(math.Round(float64(h) * float64(maxW) / float64(w)))
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
