package application

import (
	"time"

	"chimeral-forms/middleware/ratelimit/domain"
)

// BucketService é o freio de rajada por IP na frente de todos os formulários:
// um bot martelando /api/subscribe é barrado aqui antes de gastar uma janela
// por email ou uma chamada ao MailerLite.
//
// Sem HTTP: devolve só a Decision. RetryAfter é fixo porque o bucket
// não expõe quando o próximo token chega.
type BucketService struct {
	Store      domain.LimiterStore
	RetryAfter time.Duration
}

func (s BucketService) Decide(key domain.Key) domain.Decision {
	if s.Store == nil {
		return domain.Decision{Allowed: true}
	}
	if s.RetryAfter <= 0 {
		s.RetryAfter = 1 * time.Second
	}

	lim := s.Store.Get(key)
	if lim == nil || lim.Allow() {
		return domain.Decision{Allowed: true}
	}
	return domain.Decision{Allowed: false, RetryAfter: s.RetryAfter}
}
