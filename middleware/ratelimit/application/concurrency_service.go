package application

import (
	"context"
	"time"

	"chimeral-forms/middleware/ratelimit/domain"
)

// SlotService limita quantas requests de formulário estão em andamento ao
// mesmo tempo (cada uma pode segurar uma chamada ao provedor de email).
type SlotService struct {
	Slots domain.SlotPool
	// Wait <= 0 espera até o ctx da request encerrar.
	Wait time.Duration
}

// Acquire devolve (release, ok). Se ok=false, nenhuma vaga foi adquirida e
// release não deve ser chamado.
func (s SlotService) Acquire(ctx context.Context) (func(), bool) {
	if s.Slots == nil {
		return func() {}, true
	}
	if s.Wait <= 0 {
		return s.Slots.Acquire(ctx)
	}

	acqCtx, cancel := context.WithTimeout(ctx, s.Wait)
	defer cancel()
	return s.Slots.Acquire(acqCtx)
}
