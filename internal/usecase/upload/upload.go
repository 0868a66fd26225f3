package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sebelasdpib2/photo-bot/internal/entity"
	"github.com/sebelasdpib2/photo-bot/internal/infrastructure"
	"github.com/sebelasdpib2/photo-bot/internal/repo"
	"github.com/sebelasdpib2/photo-bot/internal/usecase"
	"github.com/sebelasdpib2/photo-bot/pkg/logger"
)

const (
	ReasonDownloadFailed = "download failed"

	_defaultTimeout  = 60 * time.Second
	_rollbackTimeout = 15 * time.Second
)

type Settings struct {
	Folder          string
	TempDir         string
	GalleryURL      string
	Caption         string
	DownloadTimeout time.Duration
	UploadTimeout   time.Duration
	InsertTimeout   time.Duration
}

type UploadUseCase struct {
	messenger    infrastructure.Messenger
	processor    usecase.ImageProcessorUseCase
	imageSink    repo.ImageSink
	metadataRepo repo.PhotoMetadataRepo
	events       infrastructure.EventsSender

	settings Settings
	logger   logger.Interface
}

// New builds the orchestrator. events may be nil when notifications are disabled.
func New(
	messenger infrastructure.Messenger,
	processor usecase.ImageProcessorUseCase,
	imageSink repo.ImageSink,
	metadataRepo repo.PhotoMetadataRepo,
	events infrastructure.EventsSender,
	settings Settings,
	l logger.Interface,
) *UploadUseCase {
	if settings.DownloadTimeout <= 0 {
		settings.DownloadTimeout = _defaultTimeout
	}
	if settings.UploadTimeout <= 0 {
		settings.UploadTimeout = _defaultTimeout
	}
	if settings.InsertTimeout <= 0 {
		settings.InsertTimeout = _defaultTimeout
	}
	if settings.TempDir == "" {
		settings.TempDir = os.TempDir()
	}

	return &UploadUseCase{
		messenger:    messenger,
		processor:    processor,
		imageSink:    imageSink,
		metadataRepo: metadataRepo,
		events:       events,
		settings:     settings,
		logger:       l,
	}
}

// RunBatch processes targets one at a time, in order. It returns exactly one
// result per target and never returns an error: failures are reported per result.
func (uc *UploadUseCase) RunBatch(ctx context.Context, targets []entity.UploadTarget) []entity.UploadResult {
	results := make([]entity.UploadResult, 0, len(targets))

	for i, target := range targets {
		res := uc.runOne(ctx, target, i+1, len(targets))
		if !res.Succeeded() {
			uc.logger.Warn("UploadUseCase - RunBatch - target #%d (%s) failed: %s", i+1, target.MessageID, res.ErrorReason)
		}
		results = append(results, res)
	}

	return results
}

func (uc *UploadUseCase) runOne(ctx context.Context, target entity.UploadTarget, index, total int) entity.UploadResult {
	res := entity.UploadResult{
		Target:        target,
		Outcome:       entity.Failure,
		SequenceIndex: index,
		SequenceTotal: total,
	}

	// 1. скачиваем медиа
	dlCtx, dlCancel := context.WithTimeout(ctx, uc.settings.DownloadTimeout)
	data, err := uc.messenger.DownloadMedia(dlCtx, target.Media)
	dlCancel()
	if err != nil || len(data) == 0 {
		if err != nil {
			uc.logger.Error(err, "UploadUseCase - runOne - uc.messenger.DownloadMedia")
		}
		res.ErrorReason = ReasonDownloadFailed

		return res
	}

	// 2. нормализуем в JPEG
	data = uc.processor.Normalize(ctx, data)

	// 3. временный файл, удаляется при любом исходе
	path, err := uc.writeTemp(data)
	if err != nil {
		uc.logger.Error(err, "UploadUseCase - runOne - uc.writeTemp")
		res.ErrorReason = fmt.Sprintf("upload gagal (%s)", rootCause(err))

		return res
	}
	defer uc.removeTemp(path)

	// 4. загружаем в хранилище изображений
	remote, err := uc.uploadFile(ctx, path, int64(len(data)))
	if err != nil {
		uc.logger.Error(err, "UploadUseCase - runOne - uc.uploadFile")
		res.ErrorReason = fmt.Sprintf("upload gagal (%s)", rootCause(err))

		return res
	}

	size := remote.ByteSize
	if size <= 0 {
		size = int64(len(data))
	}

	photo := &entity.Photo{
		ImageURL: remote.URL,
		Title:    Title(target, index, total),
		Caption:  uc.settings.Caption,
		Status:   entity.Public,
		FileSize: size,
	}

	// 5. записываем метаданные
	insCtx, insCancel := context.WithTimeout(ctx, uc.settings.InsertTimeout)
	err = uc.metadataRepo.Create(insCtx, photo)
	insCancel()
	// если не удалось сохранить метаданные
	if err != nil {
		uc.logger.Error(err, "UploadUseCase - runOne - uc.metadataRepo.Create")
		// удаляем загруженное изображение
		uc.rollback(ctx, remote.RemoteID)
		res.ErrorReason = fmt.Sprintf("Supabase insert failed: %s", rootCause(err))

		return res
	}

	// 6. уведомление для сайта, ошибки не влияют на результат
	if uc.events != nil {
		err = uc.events.SendPhotoUploaded(ctx, photo, target)
		if err != nil {
			uc.logger.Warn("UploadUseCase - runOne - uc.events.SendPhotoUploaded: %v", err)
		}
	}

	res.Outcome = entity.Success
	res.RemoteID = remote.RemoteID
	res.RemoteImageURL = remote.URL
	res.RecordID = photo.ID

	return res
}

func (uc *UploadUseCase) uploadFile(ctx context.Context, path string, size int64) (entity.RemoteImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return entity.RemoteImage{}, fmt.Errorf("UploadUseCase - uploadFile - os.Open: %w", err)
	}
	defer f.Close()

	upCtx, upCancel := context.WithTimeout(ctx, uc.settings.UploadTimeout)
	defer upCancel()

	remote, err := uc.imageSink.Upload(upCtx, f, size, uc.settings.Folder)
	if err != nil {
		return entity.RemoteImage{}, fmt.Errorf("UploadUseCase - uploadFile - uc.imageSink.Upload: %w", err)
	}

	return remote, nil
}

func (uc *UploadUseCase) rollback(ctx context.Context, remoteID string) {
	// the batch context may already be done, the compensating delete still has to run
	rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), _rollbackTimeout)
	defer cancel()

	err := uc.imageSink.Delete(rbCtx, remoteID)
	if err != nil {
		uc.logger.Error(err, "UploadUseCase - rollback - uc.imageSink.Delete")
	}
}

func (uc *UploadUseCase) writeTemp(data []byte) (string, error) {
	path := filepath.Join(uc.settings.TempDir, fmt.Sprintf("%d-%s.jpg", time.Now().UnixMilli(), uuid.NewString()))

	err := os.WriteFile(path, data, 0o600)
	if err != nil {
		return "", fmt.Errorf("UploadUseCase - writeTemp - os.WriteFile: %w", err)
	}

	return path, nil
}

func (uc *UploadUseCase) removeTemp(path string) {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		uc.logger.Warn("UploadUseCase - removeTemp - failed to delete %s: %v", path, err)
	}
}

// Title is the gallery title for target: "Foto dari <sender>", with the batch position for albums.
func Title(target entity.UploadTarget, index, total int) string {
	name := target.SenderName
	if name == "" {
		name = phoneOf(target.ParticipantID)
	}
	if name == "" {
		name = "WhatsApp"
	}

	if total > 1 {
		return fmt.Sprintf("Foto dari %s (%d/%d)", name, index, total)
	}

	return fmt.Sprintf("Foto dari %s", name)
}

// phoneOf strips the server and device parts of a WhatsApp JID.
func phoneOf(jid string) string {
	user, _, _ := strings.Cut(jid, "@")
	user, _, _ = strings.Cut(user, ":")

	return user
}

// rootCause returns the innermost error message, without the wrapping call chain.
func rootCause(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
