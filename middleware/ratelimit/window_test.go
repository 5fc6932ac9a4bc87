package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"chimeral-forms/middleware/ratelimit/domain"
	"chimeral-forms/middleware/ratelimit/infra"

	"go.uber.org/zap"
)

type brokenLog struct{}

func (brokenLog) Attempts(context.Context, domain.Key) ([]time.Time, error) {
	return nil, errors.New("redis down")
}
func (brokenLog) SetAttempts(context.Context, domain.Key, []time.Time) error { return nil }

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestWindowGuard_RejectsAfterMaxAndRecordsStats(t *testing.T) {
	stats := infra.NewMemoryStatsStore()
	g := NewWindowGuard("subscribe", "email", infra.NewAttemptTable(time.Minute), domain.Window{Length: time.Minute, Max: 3})
	g.Stats = stats
	g.Now = fixedClock(1000)

	for i := 0; i < 3; i++ {
		if dec := g.Check(context.Background(), "a@example.com"); !dec.Allowed {
			t.Fatalf("expected call %d admitted", i+1)
		}
	}
	dec := g.Check(context.Background(), "a@example.com")
	if dec.Allowed {
		t.Fatalf("expected 4th call rejected")
	}
	if dec.RetryAfter != time.Minute {
		t.Fatalf("expected RetryAfter=1m for same-instant calls, got %s", dec.RetryAfter)
	}

	got := stats.ByTable()["subscribe email"]
	if got.Allowed != 3 || got.Denied != 1 {
		t.Fatalf("unexpected stats %+v", got)
	}
}

func TestWindowGuard_FailsOpen(t *testing.T) {
	g := NewWindowGuard("subscribe", "ip", brokenLog{}, domain.Window{Length: time.Minute, Max: 0})
	g.Logger = zap.NewNop()

	if dec := g.Check(context.Background(), "1.2.3.4"); !dec.Allowed {
		t.Fatalf("expected fail-open when the log errors")
	}
}
