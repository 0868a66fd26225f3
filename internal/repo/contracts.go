package repo

import (
	"context"
	"io"

	"github.com/sebelasdpib2/photo-bot/internal/entity"
)

type (
	// ImageSink stores public images. Delete of an unknown id is not an error.
	ImageSink interface {
		Upload(ctx context.Context, data io.Reader, size int64, folder string) (entity.RemoteImage, error)
		Delete(ctx context.Context, remoteID string) error
	}

	// PhotoMetadataRepo writes gallery rows. Create fills photo.ID and photo.CreatedAt.
	PhotoMetadataRepo interface {
		Create(ctx context.Context, photo *entity.Photo) error
	}
)
