package recent

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/sebelasdpib2/photo-bot/internal/entity"
)

const base = int64(1_700_000_000)

func rec(id, conv, participant string, ts int64, group string) entity.InboundImageRecord {
	return entity.InboundImageRecord{
		MessageID:        id,
		ConversationID:   conv,
		ParticipantID:    participant,
		TimestampSeconds: ts,
		AlbumGroupID:     group,
	}
}

func fixedClock(ts *int64) Option {
	return Clock(func() time.Time { return time.Unix(*ts, 0) })
}

func TestTrack_EvictionBounds(t *testing.T) {
	const (
		maxEntries = 20
		ttl        = 300 * time.Second
	)

	rng := rand.New(rand.NewSource(42))
	now := base
	c := New(maxEntries, ttl, fixedClock(&now))

	for i := 0; i < 1000; i++ {
		now += int64(rng.Intn(30))
		// messages may arrive late, up to ten minutes behind the clock
		ts := now - int64(rng.Intn(600))
		c.Track(rec(fmt.Sprintf("m%d", rng.Intn(400)), "chat", "p", ts, ""))

		if c.Len() > maxEntries {
			t.Fatalf("step %d: len = %d, want <= %d", i, c.Len(), maxEntries)
		}
		for _, r := range c.records {
			if now-r.TimestampSeconds > int64(ttl/time.Second) {
				t.Fatalf("step %d: record %s is %ds old", i, r.MessageID, now-r.TimestampSeconds)
			}
		}
	}
}

func TestTrack_DropsOldestOverCap(t *testing.T) {
	now := base + 100
	c := New(2, time.Hour, fixedClock(&now))

	c.Track(rec("b", "chat", "p", base+2, ""))
	c.Track(rec("a", "chat", "p", base+1, ""))
	c.Track(rec("c", "chat", "p", base+3, ""))

	if _, ok := c.FindByID("a", ""); ok {
		t.Fatal("oldest record should have been evicted")
	}
	for _, id := range []string{"b", "c"} {
		if _, ok := c.FindByID(id, ""); !ok {
			t.Fatalf("record %s should remain", id)
		}
	}
}

func TestTrack_Dedup(t *testing.T) {
	now := base
	c := New(10, time.Hour, fixedClock(&now))

	c.Track(rec("m1", "chat", "p", base, ""))
	c.Track(rec("m1", "chat", "p", base, "alb1"))

	if c.Len() != 1 {
		t.Fatalf("len = %d, want 1", c.Len())
	}

	r, ok := c.FindByID("m1", "chat")
	if !ok {
		t.Fatal("record not found")
	}
	if r.AlbumGroupID != "alb1" {
		t.Fatalf("album group = %q, want latest value alb1", r.AlbumGroupID)
	}
}

func TestFindByID_ConversationFilter(t *testing.T) {
	now := base
	c := New(10, time.Hour, fixedClock(&now))
	c.Track(rec("m1", "chat-a", "p", base, ""))

	if _, ok := c.FindByID("m1", "chat-b"); ok {
		t.Fatal("should not match another conversation")
	}
	if _, ok := c.FindByID("m1", ""); !ok {
		t.Fatal("empty conversation should match any")
	}
}

func TestFindByAlbumGroup_OrderAndScope(t *testing.T) {
	now := base + 10
	c := New(10, time.Hour, fixedClock(&now))

	c.Track(rec("z", "chat", "p", base+4, "G"))
	c.Track(rec("y", "chat", "p", base+2, "G"))
	c.Track(rec("x", "chat", "p", base+2, "G"))
	c.Track(rec("other", "chat", "p", base+3, "H"))
	c.Track(rec("elsewhere", "chat-2", "p", base+1, "G"))

	got := c.FindByAlbumGroup("chat", "G")
	want := []string{"x", "y", "z"}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].MessageID != id {
			t.Fatalf("position %d = %s, want %s", i, got[i].MessageID, id)
		}
	}

	if got := c.FindByAlbumGroup("chat", ""); got != nil {
		t.Fatalf("empty group id should match nothing, got %d", len(got))
	}
}

func TestFindByProximity(t *testing.T) {
	now := base + 100
	c := New(10, time.Hour, fixedClock(&now))

	c.Track(rec("before", "chat", "p", base-46, ""))
	c.Track(rec("edge", "chat", "p", base-45, ""))
	c.Track(rec("mid", "chat", "p", base, ""))
	c.Track(rec("after", "chat", "p", base+45, ""))
	c.Track(rec("too-late", "chat", "p", base+46, ""))
	c.Track(rec("someone-else", "chat", "q", base, ""))

	got := c.FindByProximity("chat", "p", base, 45)
	want := []string{"edge", "mid", "after"}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].MessageID != id {
			t.Fatalf("position %d = %s, want %s", i, got[i].MessageID, id)
		}
	}
}
