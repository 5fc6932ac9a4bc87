package infra

import (
	"context"
	"sync"
	"time"

	"chimeral-forms/middleware/ratelimit/domain"

	"golang.org/x/time/rate"
)

// BucketStore guarda um token bucket (x/time/rate) por IP de cliente.
//
// Cada visitante do site ganha API_RATE_BURST envios em rajada e depois
// API_RATE_RPS por segundo, somando todos os formulários. Um visitante que
// some por idleTTL perde o bucket (o janitor limpa) e volta com a rajada cheia.
type BucketStore struct {
	mu           sync.Mutex
	entries      map[string]*bucketEntry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type bucketEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type BucketOption func(*BucketStore)

func WithIdleTTL(d time.Duration) BucketOption {
	return func(s *BucketStore) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) BucketOption {
	return func(s *BucketStore) { s.cleanupEvery = d }
}

func NewBucketStore(rps float64, burst int, opts ...BucketOption) *BucketStore {
	s := &BucketStore{
		entries:      make(map[string]*bucketEntry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BucketStore) RPS() float64 { return float64(s.rps) }
func (s *BucketStore) Burst() int   { return s.burst }

// Get implementa domain.LimiterStore.
func (s *BucketStore) Get(key domain.Key) domain.Limiter {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[string(key)]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(s.rps, s.burst)
	s.entries[string(key)] = &bucketEntry{lim: lim, lastSeen: now}
	return lim
}

func (s *BucketStore) Cleanup(now time.Time) {
	cutoff := now.Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor limpa chaves inativas periodicamente. Pare cancelando o ctx.
func (s *BucketStore) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				s.Cleanup(now)
			}
		}
	}()
}
