package persistent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sebelasdpib2/photo-bot/internal/entity"
)

type fakeRow struct {
	id        int64
	createdAt time.Time
	err       error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int64) = r.id
	*dest[1].(*time.Time) = r.createdAt

	return nil
}

type fakeExecutor struct {
	row     fakeRow
	gotSQL  string
	gotArgs []any
}

func (e *fakeExecutor) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("not used")
}

func (e *fakeExecutor) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	e.gotSQL = sql
	e.gotArgs = args

	return e.row
}

func (e *fakeExecutor) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not used")
}

func newTestRepo(exec *fakeExecutor) *PhotoMetadataRepo {
	return &PhotoMetadataRepo{
		builder:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		executor: exec,
	}
}

func TestPhotoMetadataRepo_Create(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	exec := &fakeExecutor{row: fakeRow{id: 42, createdAt: created}}
	repo := newTestRepo(exec)

	photo := &entity.Photo{
		ImageURL: "https://res.cloudinary.com/demo/image/upload/kelas/abc.jpg",
		Title:    "Foto dari Rina",
		Status:   entity.Public,
		FileSize: 1024,
	}

	if err := repo.Create(context.Background(), photo); err != nil {
		t.Fatalf("Create: %v", err)
	}

	want := "INSERT INTO photos (image_url,title,caption,status,file_size) VALUES ($1,$2,$3,$4,$5) RETURNING id, created_at"
	if exec.gotSQL != want {
		t.Fatalf("sql = %q\nwant  %q", exec.gotSQL, want)
	}
	if len(exec.gotArgs) != 5 || exec.gotArgs[3] != "public" {
		t.Fatalf("args = %v", exec.gotArgs)
	}
	if photo.ID != 42 || !photo.CreatedAt.Equal(created) {
		t.Fatalf("photo not filled: %+v", photo)
	}
}

func TestPhotoMetadataRepo_CreateError(t *testing.T) {
	cause := errors.New("new row violates row-level security policy")
	repo := newTestRepo(&fakeExecutor{row: fakeRow{err: cause}})

	err := repo.Create(context.Background(), &entity.Photo{ImageURL: "u", Status: entity.Public})
	if !errors.Is(err, cause) {
		t.Fatalf("err = %v, want wrapped cause", err)
	}
}
