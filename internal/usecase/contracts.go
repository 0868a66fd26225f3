package usecase

import (
	"context"

	"github.com/sebelasdpib2/photo-bot/internal/entity"
)

type (
	// RecentMessages is the bounded, time-windowed store of inbound image messages.
	// All methods are safe for concurrent use.
	RecentMessages interface {
		Track(record entity.InboundImageRecord)
		FindByID(messageID, conversationID string) (entity.InboundImageRecord, bool)
		FindByAlbumGroup(conversationID, albumGroupID string) []entity.InboundImageRecord
		FindByProximity(conversationID, participantID string, aroundTimestamp, windowSeconds int64) []entity.InboundImageRecord
		Len() int
	}

	AlbumResolverUseCase interface {
		Resolve(cmd entity.Message) (entity.Resolution, error)
	}

	UploadUseCase interface {
		RunBatch(ctx context.Context, targets []entity.UploadTarget) []entity.UploadResult
		Summarize(results []entity.UploadResult) string
	}

	ImageProcessorUseCase interface {
		Normalize(ctx context.Context, data []byte) []byte
	}
)
