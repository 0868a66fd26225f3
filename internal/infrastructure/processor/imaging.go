package processor

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WhatsApp delivers some images and stickers as WebP
)

type ImageProcessor struct {
}

func New() *ImageProcessor {
	return &ImageProcessor{}
}

// NormalizeJPEG decodes data, fits it inside maxWidth x maxHeight without
// upscaling and re-encodes it as JPEG with the given quality.
func (p *ImageProcessor) NormalizeJPEG(ctx context.Context, data []byte, maxWidth, maxHeight, quality int) ([]byte, error) {
	img, err := decodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("ImageProcessor - NormalizeJPEG - decodeImage: %w", err)
	}

	if err = ctx.Err(); err != nil {
		return nil, fmt.Errorf("ImageProcessor - NormalizeJPEG: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > maxWidth || b.Dy() > maxHeight {
		img = imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
	}

	res, err := encodeJPEG(img, quality)
	if err != nil {
		return nil, fmt.Errorf("ImageProcessor - NormalizeJPEG - encodeJPEG: %w", err)
	}

	return res, nil
}

func decodeImage(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("ImageProcessor - decodeImage - imaging.Decode: %w", err)
	}

	return img, nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer

	err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
	if err != nil {
		return nil, fmt.Errorf("ImageProcessor - encodeJPEG - imaging.Encode: %w", err)
	}

	return buf.Bytes(), nil
}
