package persistent

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/sebelasdpib2/photo-bot/internal/entity"
	"github.com/sebelasdpib2/photo-bot/pkg/postgres"
)

const (
	// Table
	photosTable = "photos"

	// Columns
	idColumn        = "id"
	imageURLColumn  = "image_url"
	titleColumn     = "title"
	captionColumn   = "caption"
	statusColumn    = "status"
	fileSizeColumn  = "file_size"
	createdAtColumn = "created_at"
)

type PhotoMetadataRepo struct {
	builder  squirrel.StatementBuilderType
	executor postgres.Executor
}

func NewPhotoMetadataRepo(pg *postgres.Postgres) *PhotoMetadataRepo {
	return &PhotoMetadataRepo{
		builder:  pg.Builder,
		executor: pg.Executor(),
	}
}

// Create inserts photo and fills its ID and CreatedAt from the database.
func (r *PhotoMetadataRepo) Create(ctx context.Context, photo *entity.Photo) error {
	sql, args, err := r.insertSQL(photo)
	if err != nil {
		return fmt.Errorf("PhotoMetadataRepo - Create - r.insertSQL: %w", err)
	}

	err = r.executor.QueryRow(ctx, sql, args...).Scan(&photo.ID, &photo.CreatedAt)
	if err != nil {
		return fmt.Errorf("PhotoMetadataRepo - Create - executor.QueryRow.Scan: %w", err)
	}

	return nil
}

func (r *PhotoMetadataRepo) insertSQL(photo *entity.Photo) (string, []any, error) {
	return r.builder.
		Insert(photosTable).
		Columns(
			imageURLColumn,
			titleColumn,
			captionColumn,
			statusColumn,
			fileSizeColumn,
		).
		Values(
			photo.ImageURL,
			photo.Title,
			photo.Caption,
			string(photo.Status),
			photo.FileSize,
		).
		Suffix(fmt.Sprintf("RETURNING %s, %s", idColumn, createdAtColumn)).
		ToSql()
}
