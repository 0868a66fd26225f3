package persistent

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/sebelasdpib2/photo-bot/internal/entity"
	"github.com/sebelasdpib2/photo-bot/pkg/cloudinaryclient"
)

const _destroyNotFound = "not found"

// cloudinaryUploader is the part of the Cloudinary upload API the sink calls.
type cloudinaryUploader interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

type CloudinaryImageSink struct {
	api cloudinaryUploader
}

func NewCloudinaryImageSink(c *cloudinaryclient.CloudinaryClient) *CloudinaryImageSink {
	return &CloudinaryImageSink{api: &c.Upload}
}

func (r *CloudinaryImageSink) Upload(ctx context.Context, data io.Reader, size int64, folder string) (entity.RemoteImage, error) {
	resp, err := r.api.Upload(ctx, data, uploader.UploadParams{Folder: folder})
	if err != nil {
		return entity.RemoteImage{}, fmt.Errorf("CloudinaryImageSink - Upload - r.api.Upload: %w", err)
	}
	// API-level ошибки приходят в теле ответа
	if resp.Error.Message != "" {
		return entity.RemoteImage{}, fmt.Errorf("CloudinaryImageSink - Upload: %w", errors.New(resp.Error.Message))
	}
	if resp.SecureURL == "" || resp.PublicID == "" {
		return entity.RemoteImage{}, fmt.Errorf("CloudinaryImageSink - Upload: %w", errors.New("empty upload response"))
	}

	byteSize := int64(resp.Bytes)
	if byteSize <= 0 {
		byteSize = size
	}

	return entity.RemoteImage{
		RemoteID: resp.PublicID,
		URL:      resp.SecureURL,
		ByteSize: byteSize,
	}, nil
}

// Delete destroys the asset. An already missing asset is not an error.
func (r *CloudinaryImageSink) Delete(ctx context.Context, remoteID string) error {
	resp, err := r.api.Destroy(ctx, uploader.DestroyParams{PublicID: remoteID})
	if err != nil {
		return fmt.Errorf("CloudinaryImageSink - Delete - r.api.Destroy: %w", err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("CloudinaryImageSink - Delete: %w", errors.New(resp.Error.Message))
	}
	if resp.Result != "ok" && resp.Result != _destroyNotFound {
		return fmt.Errorf("CloudinaryImageSink - Delete: unexpected result %q", resp.Result)
	}

	return nil
}
