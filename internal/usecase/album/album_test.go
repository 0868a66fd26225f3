package album

import (
	"errors"
	"testing"
	"time"

	"github.com/sebelasdpib2/photo-bot/internal/entity"
	"github.com/sebelasdpib2/photo-bot/internal/usecase/recent"
	"github.com/sebelasdpib2/photo-bot/pkg/types/errs"
)

const (
	chat   = "120363000000000000@g.us"
	alice  = "6281111111111@s.whatsapp.net"
	bob    = "6282222222222@s.whatsapp.net"
	base   = int64(1_700_000_000)
	window = int64(45)
)

func newCache(records ...entity.InboundImageRecord) *recent.Cache {
	c := recent.New(100, 24*time.Hour, recent.Clock(func() time.Time { return time.Unix(base+60, 0) }))
	for _, r := range records {
		c.Track(r)
	}

	return c
}

func image(id, participant string, ts int64, group string) entity.InboundImageRecord {
	return entity.InboundImageRecord{
		MessageID:        id,
		ConversationID:   chat,
		ParticipantID:    participant,
		TimestampSeconds: ts,
		AlbumGroupID:     group,
		Media:            entity.MediaReference{MimeType: "image/jpeg"},
	}
}

func command(ts int64, quoted *entity.QuotedMessage) entity.Message {
	return entity.Message{
		ID:             "cmd",
		ConversationID: chat,
		ParticipantID:  bob,
		Timestamp:      time.Unix(ts, 0),
		Kind:           entity.KindText,
		Text:           "!upload",
		Quoted:         quoted,
	}
}

func ids(targets []entity.UploadTarget) []string {
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		out = append(out, t.MessageID)
	}

	return out
}

func assertIDs(t *testing.T, got []entity.UploadTarget, want ...string) {
	t.Helper()

	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("targets = %v, want %v", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("targets = %v, want %v", g, want)
		}
	}
}

func TestResolve_CachedAlbumGroupWins(t *testing.T) {
	cache := newCache(
		image("g3", alice, base+4, "G"),
		image("g1", alice, base, "G"),
		image("g2", alice, base+2, "G"),
		image("u1", alice, base+1, ""),
		image("u2", alice, base+3, "H"),
	)
	uc := New(cache, window)

	res, err := uc.Resolve(command(base+30, &entity.QuotedMessage{ID: "g2", ParticipantID: alice, Kind: entity.KindImage}))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	assertIDs(t, res.Targets, "g1", "g2", "g3")
	if res.Mode != entity.Batch {
		t.Fatalf("mode = %s, want batch", res.Mode)
	}
	if res.Strategy != "cached-album-group" {
		t.Fatalf("strategy = %s", res.Strategy)
	}
	for _, target := range res.Targets {
		if target.SourceKind != entity.CacheRecovered {
			t.Fatalf("source kind = %s, want cache-recovered", target.SourceKind)
		}
	}
}

func TestResolve_QuotedEnvelopeGroup(t *testing.T) {
	cache := newCache(
		image("a1", alice, base, "parent"),
		image("a2", alice, base+1, "parent"),
	)
	uc := New(cache, window)

	res, err := uc.Resolve(command(base+10, &entity.QuotedMessage{ID: "parent", ParticipantID: alice, Kind: entity.KindAlbum, AlbumGroupID: "parent"}))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	assertIDs(t, res.Targets, "a1", "a2")
	if res.Strategy != "quoted-album-group" {
		t.Fatalf("strategy = %s", res.Strategy)
	}
}

func TestResolve_QuotedEnvelopeGroupKeepsUntrackedImage(t *testing.T) {
	cache := newCache(
		image("g1", alice, base, "G"),
		image("g3", alice, base+2, "G"),
	)
	uc := New(cache, window)

	media := &entity.MediaReference{MimeType: "image/jpeg"}
	quoted := &entity.QuotedMessage{ID: "g2", ParticipantID: alice, Kind: entity.KindImage, AlbumGroupID: "G", Media: media}
	res, err := uc.Resolve(command(base+10, quoted))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	assertIDs(t, res.Targets, "g1", "g3", "g2")
	if res.Strategy != "quoted-album-group" {
		t.Fatalf("strategy = %s", res.Strategy)
	}
	if res.Mode != entity.Batch {
		t.Fatalf("mode = %s, want batch", res.Mode)
	}
	if last := res.Targets[2]; last.SourceKind != entity.QuotedSingle || last.ParticipantID != alice {
		t.Fatalf("quoted target = %+v", last)
	}
}

func TestResolve_CachedProximity(t *testing.T) {
	cache := newCache(
		image("p1", alice, base, ""),
		image("p2", alice, base+20, ""),
		image("far", alice, base+100, ""),
		image("bob", bob, base+5, ""),
	)
	uc := New(cache, window)

	res, err := uc.Resolve(command(base+200, &entity.QuotedMessage{ID: "p1", ParticipantID: alice, Kind: entity.KindImage}))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	assertIDs(t, res.Targets, "p1", "p2")
	if res.Strategy != "cached-proximity" {
		t.Fatalf("strategy = %s", res.Strategy)
	}
}

func TestResolve_AlbumMarkerFallsBackToCommandTime(t *testing.T) {
	cache := newCache(
		image("c4", alice, base+36, ""),
		image("c1", alice, base+30, ""),
		image("c2", alice, base+32, ""),
		image("c3", alice, base+34, ""),
		image("old", alice, base-60, ""),
		image("other", bob, base+31, ""),
	)
	uc := New(cache, window)

	res, err := uc.Resolve(command(base+40, &entity.QuotedMessage{ID: "marker", ParticipantID: alice, Kind: entity.KindAlbum}))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	assertIDs(t, res.Targets, "c1", "c2", "c3", "c4")
	if res.Strategy != "command-proximity" {
		t.Fatalf("strategy = %s", res.Strategy)
	}
}

func TestResolve_AlbumMarkerWithoutTargets(t *testing.T) {
	uc := New(newCache(image("other", bob, base+31, "")), window)

	_, err := uc.Resolve(command(base+40, &entity.QuotedMessage{ID: "marker", ParticipantID: alice, Kind: entity.KindAlbum}))
	if !errors.Is(err, errs.ErrAlbumTargetsNotFound) {
		t.Fatalf("err = %v, want ErrAlbumTargetsNotFound", err)
	}
}

func TestResolve_UntrackedSingleImage(t *testing.T) {
	uc := New(newCache(image("unrelated", alice, base, "")), window)

	media := &entity.MediaReference{MimeType: "image/jpeg"}
	res, err := uc.Resolve(command(base+10, &entity.QuotedMessage{ID: "fresh", ParticipantID: alice, Kind: entity.KindImage, Media: media}))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	assertIDs(t, res.Targets, "fresh")
	if res.Mode != entity.Single {
		t.Fatalf("mode = %s, want single", res.Mode)
	}
	if res.Targets[0].SourceKind != entity.QuotedSingle {
		t.Fatalf("source kind = %s, want quoted-single", res.Targets[0].SourceKind)
	}
	if res.Targets[0].ParticipantID != alice {
		t.Fatalf("participant = %s, want quoted sender", res.Targets[0].ParticipantID)
	}
}

func TestResolve_AlbumSentInQuickSuccession(t *testing.T) {
	cache := newCache(
		image("s1", alice, base, "alb1"),
		image("s2", alice, base+2, "alb1"),
		image("s3", alice, base+4, "alb1"),
	)
	uc := New(cache, window)

	res, err := uc.Resolve(command(base+10, &entity.QuotedMessage{ID: "s2", ParticipantID: alice, Kind: entity.KindImage}))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	assertIDs(t, res.Targets, "s1", "s2", "s3")
	if res.Mode != entity.Batch {
		t.Fatalf("mode = %s, want batch", res.Mode)
	}
}

func TestResolve_Failures(t *testing.T) {
	uc := New(newCache(), window)

	tests := []struct {
		name   string
		quoted *entity.QuotedMessage
		want   error
	}{
		{"no quoted message", nil, errs.ErrMissingQuotedMessage},
		{"video", &entity.QuotedMessage{ID: "v", Kind: entity.KindVideo}, errs.ErrVideoNotSupported},
		{"sticker", &entity.QuotedMessage{ID: "s", Kind: entity.KindUnsupported}, errs.ErrUnsupportedMedia},
		{"text", &entity.QuotedMessage{ID: "t", Kind: entity.KindText}, errs.ErrUnsupportedMedia},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Resolve(command(base, tt.quoted))
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStrategies_Independently(t *testing.T) {
	cache := newCache(image("m1", alice, base, ""))
	cmd := Command{ConversationID: chat, ParticipantID: bob, TimestampSeconds: base + 5, Quoted: entity.QuotedMessage{ID: "m1", Kind: entity.KindImage}}

	if got := CachedAlbumGroup(cmd, cache, window); got != nil {
		t.Fatalf("CachedAlbumGroup = %v, want nil for ungrouped record", ids(got))
	}
	if got := QuotedAlbumGroup(cmd, cache, window); got != nil {
		t.Fatalf("QuotedAlbumGroup = %v, want nil without group id", ids(got))
	}
	if got := CommandProximity(cmd, cache, window); got != nil {
		t.Fatalf("CommandProximity = %v, want nil for plain image", ids(got))
	}
	if got := QuotedSingle(cmd, cache, window); got != nil {
		t.Fatalf("QuotedSingle = %v, want nil without media", ids(got))
	}
	assertIDs(t, CachedProximity(cmd, cache, window), "m1")
}
