package imageprocessor

import (
	"context"

	"github.com/sebelasdpib2/photo-bot/internal/infrastructure"
	"github.com/sebelasdpib2/photo-bot/pkg/logger"
)

type ImageProcessorUseCase struct {
	p      infrastructure.ImageProcessor
	logger logger.Interface

	maxWidth  int
	maxHeight int
	quality   int
}

func New(p infrastructure.ImageProcessor, l logger.Interface, maxWidth, maxHeight, quality int) *ImageProcessorUseCase {
	return &ImageProcessorUseCase{
		p:         p,
		logger:    l,
		maxWidth:  maxWidth,
		maxHeight: maxHeight,
		quality:   quality,
	}
}

// Normalize returns data as a bounded JPEG. It never fails: when the input
// cannot be decoded or encoded, the original bytes are returned unchanged.
func (uc *ImageProcessorUseCase) Normalize(ctx context.Context, data []byte) []byte {
	out, err := uc.p.NormalizeJPEG(ctx, data, uc.maxWidth, uc.maxHeight, uc.quality)
	if err != nil || len(out) == 0 {
		uc.logger.Warn("ImageProcessorUseCase - Normalize - using original bytes (%d): %v", len(data), err)

		return data
	}

	return out
}
