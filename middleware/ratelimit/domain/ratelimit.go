package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import "time"

// Key identifica quem está sendo limitado: email normalizado, IP do cliente
// ou "unknown" quando não há IP.
type Key string

// Limiter representa algo que pode decidir se uma ação é permitida agora.
//
// Usado pelo guard token-bucket na frente de /api (x/time/rate).
type Limiter interface {
	Allow() bool
}

// LimiterStore obtém um limiter por chave (ex: IP, API key).
type LimiterStore interface {
	Get(Key) Limiter
}

type Decision struct {
	Allowed bool
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}
