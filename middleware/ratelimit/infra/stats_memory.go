package infra

import (
	"context"
	"sync"

	"chimeral-forms/middleware/ratelimit/domain"
)

type Counters struct {
	Allowed int64
	Denied  int64
}

func (c *Counters) add(allowed bool) {
	if allowed {
		c.Allowed++
		return
	}
	c.Denied++
}

// MemoryStatsStore conta decisões em memória, por endpoint/tabela.
// Útil para testes e para o endpoint de diagnóstico; não expira nada.
type MemoryStatsStore struct {
	mu      sync.Mutex
	total   Counters
	byTable map[string]Counters
	byKey   map[string]Counters

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byTable: make(map[string]Counters),
		byKey:   make(map[string]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func tableField(ev domain.StatsEvent) string {
	return ev.Endpoint + " " + ev.Table
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev.Allowed)

	c := s.byTable[tableField(ev)]
	c.add(ev.Allowed)
	s.byTable[tableField(ev)] = c

	if s.trackKeys {
		k := s.byKey[string(ev.Key)]
		k.add(ev.Allowed)
		s.byKey[string(ev.Key)] = k
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// ByTable é indexado por "<endpoint> <table>", ex.: "subscribe email".
func (s *MemoryStatsStore) ByTable() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byTable))
	for k, v := range s.byTable {
		out[k] = v
	}
	return out
}

func (s *MemoryStatsStore) ByKey() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byKey))
	for k, v := range s.byKey {
		out[k] = v
	}
	return out
}
