package infra

import (
	"context"
	"testing"

	"chimeral-forms/middleware/ratelimit/domain"
)

func TestMemoryStatsStore_CountsPerTable(t *testing.T) {
	s := NewMemoryStatsStore()
	ctx := context.Background()

	_ = s.Record(ctx, domain.StatsEvent{Endpoint: "subscribe", Table: "email", Key: "a@example.com", Allowed: true})
	_ = s.Record(ctx, domain.StatsEvent{Endpoint: "subscribe", Table: "email", Key: "a@example.com", Allowed: false})
	_ = s.Record(ctx, domain.StatsEvent{Endpoint: "subscribe", Table: "ip", Key: "1.2.3.4", Allowed: true})

	if got := s.Total(); got.Allowed != 2 || got.Denied != 1 {
		t.Fatalf("unexpected total %+v", got)
	}
	if got := s.ByTable()["subscribe email"]; got.Allowed != 1 || got.Denied != 1 {
		t.Fatalf("unexpected email counters %+v", got)
	}
	if len(s.ByKey()) != 0 {
		t.Fatalf("expected keys not tracked by default")
	}
}

func TestMemoryStatsStore_TracksKeysWhenEnabled(t *testing.T) {
	s := NewMemoryStatsStore(WithTrackKeys(true))
	_ = s.Record(context.Background(), domain.StatsEvent{Endpoint: "contact", Table: "ip", Key: "unknown", Allowed: false})

	if got := s.ByKey()["unknown"]; got.Denied != 1 {
		t.Fatalf("expected denied=1 for key, got %+v", got)
	}
}
