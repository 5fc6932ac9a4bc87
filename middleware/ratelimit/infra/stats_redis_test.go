package infra

import (
	"context"
	"testing"
	"time"

	"chimeral-forms/middleware/ratelimit/domain"
)

func TestRedisStatsStore_KeyLayout(t *testing.T) {
	s := NewRedisStatsStore(nil, WithStatsPrefix("forms:stats:"), WithStatsTrackKeys(true))
	at := time.Date(2025, 3, 4, 5, 6, 59, 0, time.UTC)

	k := s.keysFor(domain.StatsEvent{Endpoint: "subscribe", Table: "email"}, at)

	if k.total != "forms:stats:total" {
		t.Fatalf("unexpected total key %q", k.total)
	}
	if k.table != "forms:stats:subscribe:email" {
		t.Fatalf("unexpected table key %q", k.table)
	}
	if k.minute != "forms:stats:subscribe:email:202503040506" {
		t.Fatalf("unexpected minute key %q", k.minute)
	}
	if k.denied != "forms:stats:subscribe:email:denied" {
		t.Fatalf("unexpected denied key %q", k.denied)
	}
}

func TestRedisStatsStore_PathEndpointsAndDefaults(t *testing.T) {
	s := NewRedisStatsStore(nil, WithStatsBucket("none"))

	k := s.keysFor(domain.StatsEvent{Endpoint: "/api/books/"}, time.Now())

	if k.table != "forms:stats:api/books:default" {
		t.Fatalf("unexpected table key %q", k.table)
	}
	if k.minute != "" || k.denied != "" {
		t.Fatalf("expected no minute/denied keys, got %+v", k)
	}
}

func TestRedisStatsStore_NilClientIsNoop(t *testing.T) {
	if err := NewRedisStatsStore(nil).Record(context.Background(), domain.StatsEvent{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
