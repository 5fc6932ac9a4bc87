package infra

import (
	"context"
	"sync"
	"time"

	"chimeral-forms/middleware/ratelimit/domain"
)

// AttemptTable é a tabela de tentativas em memória (uma por tipo de chave).
//
// O mutex protege o map, não a sequência Attempts -> SetAttempts: duas checagens
// concorrentes da mesma chave podem perder uma tentativa. Estado local ao
// processo; reiniciar zera os contadores.
type AttemptTable struct {
	mu      sync.Mutex
	entries map[domain.Key][]time.Time

	window     time.Duration
	sweepEvery time.Duration
}

type AttemptTableOption func(*AttemptTable)

// WithSweepEvery define o intervalo do janitor. 0 desliga a limpeza e a
// tabela cresce sem limite de chaves.
func WithSweepEvery(d time.Duration) AttemptTableOption {
	return func(t *AttemptTable) { t.sweepEvery = d }
}

// NewAttemptTable cria uma tabela vazia. window só é usado pelo Sweep para
// saber quando uma chave não tem mais tentativas relevantes.
func NewAttemptTable(window time.Duration, opts ...AttemptTableOption) *AttemptTable {
	t := &AttemptTable{
		entries:    make(map[domain.Key][]time.Time),
		window:     window,
		sweepEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Attempts devolve uma cópia da sequência (vazia se a chave não existe).
func (t *AttemptTable) Attempts(_ context.Context, key domain.Key) ([]time.Time, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur := t.entries[key]
	out := make([]time.Time, len(cur))
	copy(out, cur)
	return out, nil
}

func (t *AttemptTable) SetAttempts(_ context.Context, key domain.Key, attempts []time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries[key] = attempts
	return nil
}

func (t *AttemptTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Sweep remove chaves cuja tentativa mais recente já saiu da janela.
// Retorna quantas chaves foram removidas.
func (t *AttemptTable) Sweep(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for k, attempts := range t.entries {
		if len(attempts) == 0 || now.Sub(attempts[len(attempts)-1]) >= t.window {
			delete(t.entries, k)
			removed++
		}
	}
	return removed
}

// StartJanitor roda Sweep periodicamente até o ctx ser cancelado.
func (t *AttemptTable) StartJanitor(ctx context.Context) {
	if t.sweepEvery <= 0 {
		return
	}

	tick := time.NewTicker(t.sweepEvery)
	go func() {
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-tick.C:
				t.Sweep(now)
			}
		}
	}()
}

var _ domain.AttemptLog = (*AttemptTable)(nil)
