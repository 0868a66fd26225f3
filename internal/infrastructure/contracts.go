package infrastructure

import (
	"context"

	"github.com/sebelasdpib2/photo-bot/internal/entity"
)

type (
	ImageProcessor interface {
		NormalizeJPEG(ctx context.Context, data []byte, maxWidth, maxHeight, quality int) ([]byte, error)
	}

	// Messenger is the outbound side of the messaging transport.
	Messenger interface {
		DownloadMedia(ctx context.Context, ref entity.MediaReference) ([]byte, error)
		SendText(ctx context.Context, conversationID, text string) error
	}

	EventsSender interface {
		SendPhotoUploaded(ctx context.Context, photo *entity.Photo, target entity.UploadTarget) error
		Close() error
	}
)
