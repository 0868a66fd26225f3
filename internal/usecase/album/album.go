package album

import (
	"fmt"
	"slices"

	"github.com/sebelasdpib2/photo-bot/internal/entity"
	"github.com/sebelasdpib2/photo-bot/internal/usecase"
	"github.com/sebelasdpib2/photo-bot/pkg/types/errs"
)

type AlbumResolverUseCase struct {
	cache      usecase.RecentMessages
	strategies []Strategy
	window     int64
}

func New(cache usecase.RecentMessages, windowSeconds int64, strategies ...Strategy) *AlbumResolverUseCase {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}

	return &AlbumResolverUseCase{
		cache:      cache,
		strategies: strategies,
		window:     windowSeconds,
	}
}

// Resolve turns an upload command into the ordered list of images to upload.
func (uc *AlbumResolverUseCase) Resolve(msg entity.Message) (entity.Resolution, error) {
	if msg.Quoted == nil || msg.Quoted.ID == "" {
		return entity.Resolution{}, fmt.Errorf("AlbumResolverUseCase - Resolve: %w", errs.ErrMissingQuotedMessage)
	}

	switch msg.Quoted.Kind {
	case entity.KindImage, entity.KindAlbum:
	case entity.KindVideo:
		return entity.Resolution{}, fmt.Errorf("AlbumResolverUseCase - Resolve: %w", errs.ErrVideoNotSupported)
	default:
		return entity.Resolution{}, fmt.Errorf("AlbumResolverUseCase - Resolve: %w", errs.ErrUnsupportedMedia)
	}

	cmd := Command{
		ConversationID:   msg.ConversationID,
		ParticipantID:    msg.ParticipantID,
		TimestampSeconds: msg.Timestamp.Unix(),
		Quoted:           *msg.Quoted,
	}

	for _, s := range uc.strategies {
		found := s.Resolve(cmd, uc.cache, uc.window)
		if len(found) == 0 {
			continue
		}

		found = normalize(found)

		res := entity.Resolution{
			Targets:  found,
			Mode:     entity.Single,
			Strategy: s.Name,
		}
		if len(found) > 1 {
			res.Mode = entity.Batch
		}

		return res, nil
	}

	if msg.Quoted.Kind == entity.KindAlbum {
		return entity.Resolution{}, fmt.Errorf("AlbumResolverUseCase - Resolve: %w", errs.ErrAlbumTargetsNotFound)
	}

	return entity.Resolution{}, fmt.Errorf("AlbumResolverUseCase - Resolve: %w", errs.ErrUnsupportedMedia)
}

// normalize de-duplicates by message id and orders by (timestamp, message id).
func normalize(targets []entity.UploadTarget) []entity.UploadTarget {
	seen := make(map[string]struct{}, len(targets))
	out := make([]entity.UploadTarget, 0, len(targets))

	for _, t := range targets {
		if _, ok := seen[t.MessageID]; ok {
			continue
		}
		seen[t.MessageID] = struct{}{}
		out = append(out, t)
	}

	slices.SortStableFunc(out, func(a, b entity.UploadTarget) int {
		switch {
		case a.TimestampSeconds < b.TimestampSeconds:
			return -1
		case a.TimestampSeconds > b.TimestampSeconds:
			return 1
		case a.MessageID < b.MessageID:
			return -1
		case a.MessageID > b.MessageID:
			return 1
		default:
			return 0
		}
	})

	return out
}
