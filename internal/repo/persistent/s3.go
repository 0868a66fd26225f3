package persistent

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sebelasdpib2/photo-bot/internal/entity"
	"github.com/sebelasdpib2/photo-bot/pkg/s3client"
)

const _jpegContentType = "image/jpeg"

// S3ImageSink stores images in an S3-compatible bucket served from publicBaseURL.
type S3ImageSink struct {
	*s3client.S3Client
	bucket        string
	publicBaseURL string
}

func NewS3ImageSink(s3c *s3client.S3Client, bucket, publicBaseURL string) *S3ImageSink {
	return &S3ImageSink{
		S3Client:      s3c,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (r *S3ImageSink) Upload(ctx context.Context, data io.Reader, size int64, folder string) (entity.RemoteImage, error) {
	key := objectKey(folder, uuid.NewString()+".jpg")

	_, err := r.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          data,
		ContentType:   aws.String(_jpegContentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return entity.RemoteImage{}, fmt.Errorf("S3ImageSink - Upload - r.Client.PutObject: %w", err)
	}

	return entity.RemoteImage{
		RemoteID: key,
		URL:      r.publicBaseURL + "/" + key,
		ByteSize: size,
	}, nil
}

// Delete removes the object. S3 reports success for missing keys, so repeated calls are safe.
func (r *S3ImageSink) Delete(ctx context.Context, remoteID string) error {
	_, err := r.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(remoteID),
	})
	if err != nil {
		return fmt.Errorf("S3ImageSink - Delete - r.Client.DeleteObject: %w", err)
	}

	return nil
}

func objectKey(folder, name string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}

	return path.Join(folder, name)
}
