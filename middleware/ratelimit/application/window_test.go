package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"chimeral-forms/middleware/ratelimit/domain"
)

type mapLog struct {
	m map[domain.Key][]time.Time
}

func newMapLog() *mapLog { return &mapLog{m: make(map[domain.Key][]time.Time)} }

func (l *mapLog) Attempts(_ context.Context, key domain.Key) ([]time.Time, error) {
	return l.m[key], nil
}

func (l *mapLog) SetAttempts(_ context.Context, key domain.Key, attempts []time.Time) error {
	l.m[key] = attempts
	return nil
}

type failingLog struct{}

func (failingLog) Attempts(context.Context, domain.Key) ([]time.Time, error) {
	return nil, errors.New("boom")
}
func (failingLog) SetAttempts(context.Context, domain.Key, []time.Time) error { return nil }

func ms(v int64) time.Time { return time.UnixMilli(v) }

func check(t *testing.T, log domain.AttemptLog, key string, w domain.Window, now int64) bool {
	t.Helper()
	limited, err := CheckAndRecord(context.Background(), log, domain.Key(key), w, ms(now))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return limited
}

func TestCheckAndRecord_FourthCallInWindowIsRejected(t *testing.T) {
	log := newMapLog()
	w := domain.Window{Length: 60 * time.Second, Max: 3}

	for _, now := range []int64{0, 100, 200} {
		if check(t, log, "a@example.com", w, now) {
			t.Fatalf("expected call at %d to be admitted", now)
		}
	}
	if !check(t, log, "a@example.com", w, 300) {
		t.Fatalf("expected 4th call to be rejected")
	}
	if got := len(log.m["a@example.com"]); got != 4 {
		t.Fatalf("expected rejected call to be recorded (len=4), got %d", got)
	}
}

func TestCheckAndRecord_PrunesExpiredEntry(t *testing.T) {
	log := newMapLog()
	w := domain.Window{Length: 60 * time.Second, Max: 3}

	if check(t, log, "a@example.com", w, 0) {
		t.Fatalf("expected first call admitted")
	}
	if check(t, log, "a@example.com", w, 60001) {
		t.Fatalf("expected call after window admitted")
	}
	got := log.m["a@example.com"]
	if len(got) != 1 || !got[0].Equal(ms(60001)) {
		t.Fatalf("expected sequence [60001], got %v", got)
	}
}

func TestCheckAndRecord_EntryExactlyWindowOldIsExpired(t *testing.T) {
	log := newMapLog()
	w := domain.Window{Length: 60 * time.Second, Max: 1}

	_ = check(t, log, "k", w, 0)
	if check(t, log, "k", w, 60000) {
		t.Fatalf("expected entry exactly window old to be pruned")
	}
}

func TestCheckAndRecord_IPTableScenario(t *testing.T) {
	log := newMapLog()
	w := domain.Window{Length: 5 * time.Minute, Max: 10}

	for now := int64(0); now < 10; now++ {
		if check(t, log, "1.2.3.4", w, now) {
			t.Fatalf("expected call %d admitted", now)
		}
	}
	if !check(t, log, "1.2.3.4", w, 9) {
		t.Fatalf("expected 11th call rejected")
	}
}

func TestCheckAndRecord_MaxZeroRejectsFirstCall(t *testing.T) {
	log := newMapLog()
	w := domain.Window{Length: time.Minute, Max: 0}

	if !check(t, log, "k", w, 12345) {
		t.Fatalf("expected first call rejected when Max=0")
	}
}

func TestCheckAndRecord_ZeroWindowForgetsHistory(t *testing.T) {
	log := newMapLog()
	w := domain.Window{Length: 0, Max: 1}

	for _, now := range []int64{0, 0, 1, 1} {
		if check(t, log, "k", w, now) {
			t.Fatalf("expected admitted at %d with zero window", now)
		}
	}
}

func TestCheckAndRecord_FarFutureAlwaysAdmits(t *testing.T) {
	w := domain.Window{Length: time.Minute, Max: 2}
	for _, calls := range []int{1, 2, 3, 10} {
		log := newMapLog()
		for i := 0; i < calls; i++ {
			_ = check(t, log, "k", w, int64(i))
		}
		if check(t, log, "k", w, 10*60000+int64(calls)) {
			t.Fatalf("expected admission after history expired (calls=%d)", calls)
		}
	}
}

func TestCheckAndRecord_KeysAreIsolated(t *testing.T) {
	log := newMapLog()
	w := domain.Window{Length: time.Minute, Max: 1}

	_ = check(t, log, "a@example.com", w, 0)
	if !check(t, log, "a@example.com", w, 1) {
		t.Fatalf("expected a@ to be limited")
	}
	if check(t, log, "b@example.com", w, 2) {
		t.Fatalf("expected b@ unaffected by a@")
	}
}

func TestCheckAndRecord_MaxCallsAdmittedForAnyMax(t *testing.T) {
	for max := 1; max <= 12; max++ {
		log := newMapLog()
		w := domain.Window{Length: time.Minute, Max: max}
		for i := 0; i < max; i++ {
			if check(t, log, "k", w, 500) {
				t.Fatalf("max=%d: call %d rejected", max, i+1)
			}
		}
		if !check(t, log, "k", w, 500) {
			t.Fatalf("max=%d: call %d admitted", max, max+1)
		}
	}
}

func TestCheckAndRecord_PropagatesLogError(t *testing.T) {
	_, err := CheckAndRecord(context.Background(), failingLog{}, "k", domain.Window{Length: time.Second, Max: 1}, ms(0))
	if err == nil {
		t.Fatalf("expected error from log")
	}
}

func TestWindowService_AllowsWhenNoLog(t *testing.T) {
	dec, err := WindowService{}.Decide(context.Background(), "k", ms(0))
	if err != nil || !dec.Allowed {
		t.Fatalf("expected allowed without error, got %+v %v", dec, err)
	}
}

func TestWindowService_RetryAfterUntilNextAdmission(t *testing.T) {
	svc := WindowService{Log: newMapLog(), Window: domain.Window{Length: 60 * time.Second, Max: 3}}
	ctx := context.Background()

	for _, now := range []int64{0, 100, 200} {
		if dec, _ := svc.Decide(ctx, "k", ms(now)); !dec.Allowed {
			t.Fatalf("expected admitted at %d", now)
		}
	}
	dec, err := svc.Decide(ctx, "k", ms(300))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Allowed {
		t.Fatalf("expected rejection")
	}
	if dec.RetryAfter != 59800*time.Millisecond {
		t.Fatalf("expected RetryAfter=59.8s, got %s", dec.RetryAfter)
	}

	if dec, _ := svc.Decide(ctx, "k", ms(300+59800)); !dec.Allowed {
		t.Fatalf("expected admission once RetryAfter elapsed")
	}
}

func TestWindowService_FailsOpenOnLogError(t *testing.T) {
	svc := WindowService{Log: failingLog{}, Window: domain.Window{Length: time.Second, Max: 0}}
	dec, err := svc.Decide(context.Background(), "k", ms(0))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !dec.Allowed {
		t.Fatalf("expected fail-open decision")
	}
}
