package album

import (
	"github.com/sebelasdpib2/photo-bot/internal/entity"
	"github.com/sebelasdpib2/photo-bot/internal/usecase"
)

// Command is the upload command as seen by the strategies.
type Command struct {
	ConversationID   string
	ParticipantID    string
	TimestampSeconds int64
	Quoted           entity.QuotedMessage
}

// Strategy returns the targets it can resolve for cmd, or nil.
type Strategy struct {
	Name    string
	Resolve func(cmd Command, cache usecase.RecentMessages, window int64) []entity.UploadTarget
}

// DefaultStrategies is the fixed priority order used by the resolver.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "cached-album-group", Resolve: CachedAlbumGroup},
		{Name: "quoted-album-group", Resolve: QuotedAlbumGroup},
		{Name: "cached-proximity", Resolve: CachedProximity},
		{Name: "command-proximity", Resolve: CommandProximity},
		{Name: "quoted-single", Resolve: QuotedSingle},
	}
}

// CachedAlbumGroup collects the album of a tracked quoted message.
func CachedAlbumGroup(cmd Command, cache usecase.RecentMessages, _ int64) []entity.UploadTarget {
	r, ok := cache.FindByID(cmd.Quoted.ID, cmd.ConversationID)
	if !ok || r.AlbumGroupID == "" {
		return nil
	}

	return targets(cache.FindByAlbumGroup(cmd.ConversationID, r.AlbumGroupID))
}

// QuotedAlbumGroup uses the group id carried by the quoted envelope itself.
// An untracked quoted image is added to its tracked siblings.
func QuotedAlbumGroup(cmd Command, cache usecase.RecentMessages, window int64) []entity.UploadTarget {
	if cmd.Quoted.AlbumGroupID == "" {
		return nil
	}

	found := targets(cache.FindByAlbumGroup(cmd.ConversationID, cmd.Quoted.AlbumGroupID))
	if len(found) == 0 {
		return nil
	}

	for _, t := range found {
		if t.MessageID == cmd.Quoted.ID {
			return found
		}
	}

	return append(found, QuotedSingle(cmd, cache, window)...)
}

// CachedProximity collects images of the same sender sent around a tracked quoted message.
func CachedProximity(cmd Command, cache usecase.RecentMessages, window int64) []entity.UploadTarget {
	r, ok := cache.FindByID(cmd.Quoted.ID, cmd.ConversationID)
	if !ok {
		return nil
	}

	return targets(cache.FindByProximity(cmd.ConversationID, r.ParticipantID, r.TimestampSeconds, window))
}

// CommandProximity handles an untracked album marker by looking around the command time.
func CommandProximity(cmd Command, cache usecase.RecentMessages, window int64) []entity.UploadTarget {
	if cmd.Quoted.Kind != entity.KindAlbum {
		return nil
	}

	participant := cmd.Quoted.ParticipantID
	if participant == "" {
		participant = cmd.ParticipantID
	}

	return targets(cache.FindByProximity(cmd.ConversationID, participant, cmd.TimestampSeconds, window))
}

// QuotedSingle uploads exactly the quoted image.
func QuotedSingle(cmd Command, _ usecase.RecentMessages, _ int64) []entity.UploadTarget {
	if cmd.Quoted.Kind != entity.KindImage || cmd.Quoted.Media == nil {
		return nil
	}

	participant := cmd.Quoted.ParticipantID
	if participant == "" {
		participant = cmd.ParticipantID
	}

	return []entity.UploadTarget{{
		MessageID:        cmd.Quoted.ID,
		ParticipantID:    participant,
		TimestampSeconds: cmd.TimestampSeconds,
		Media:            *cmd.Quoted.Media,
		SourceKind:       entity.QuotedSingle,
	}}
}

func targets(records []entity.InboundImageRecord) []entity.UploadTarget {
	if len(records) == 0 {
		return nil
	}

	out := make([]entity.UploadTarget, 0, len(records))
	for _, r := range records {
		out = append(out, entity.TargetFromRecord(r))
	}

	return out
}
