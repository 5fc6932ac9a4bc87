package infra

import (
	"context"
	"sync"

	"chimeral-forms/middleware/ratelimit/domain"
)

// SlotSemaphore é um semáforo sobre channel bufferizado. O release devolvido
// por Acquire pode ser chamado mais de uma vez; só a primeira libera a vaga.
type SlotSemaphore struct {
	sem chan struct{}
}

func NewSlotSemaphore(max int) *SlotSemaphore {
	if max < 1 {
		max = 1
	}
	return &SlotSemaphore{sem: make(chan struct{}, max)}
}

func (s *SlotSemaphore) Acquire(ctx context.Context) (func(), bool) {
	// vaga livre: não depende do ctx, mesmo já cancelado
	select {
	case s.sem <- struct{}{}:
		return s.releaser(), true
	default:
	}

	select {
	case s.sem <- struct{}{}:
		return s.releaser(), true
	case <-ctx.Done():
		return nil, false
	}
}

func (s *SlotSemaphore) releaser() func() {
	var once sync.Once
	return func() { once.Do(func() { <-s.sem }) }
}

// InUse é o número de vagas ocupadas agora.
func (s *SlotSemaphore) InUse() int { return len(s.sem) }

func (s *SlotSemaphore) Cap() int { return cap(s.sem) }

var _ domain.SlotPool = (*SlotSemaphore)(nil)
