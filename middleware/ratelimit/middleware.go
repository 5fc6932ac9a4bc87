package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"chimeral-forms/middleware/ratelimit/application"
	"chimeral-forms/middleware/ratelimit/domain"
	"chimeral-forms/respond"
)

// Options configura o guard token-bucket aplicado a todas as rotas /api.
type Options struct {
	Store               domain.LimiterStore
	Stats               domain.StatsStore
	KeyFn               KeyFunc
	TrustProxy          bool
	RetryAfter          time.Duration
	AddRateLimitHeaders bool

	// Endpoint é o nome fixo gravado nas estatísticas; padrão "api".
	// Nunca o path da request: paths arbitrários viram chaves novas no store.
	Endpoint string
}

type rateInfo interface {
	RPS() float64
	Burst() int
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.RetryAfter == 0 {
		opts.RetryAfter = 1 * time.Second
	}
	if opts.Endpoint == "" {
		opts.Endpoint = "api"
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.TrustProxy)
	}

	svc := application.BucketService{
		Store:      opts.Store,
		RetryAfter: opts.RetryAfter,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			if opts.AddRateLimitHeaders {
				if ri, ok := opts.Store.(rateInfo); ok {
					w.Header().Set("X-RateLimit-RPS", strconv.FormatFloat(ri.RPS(), 'f', -1, 64))
					w.Header().Set("X-RateLimit-Burst", strconv.Itoa(ri.Burst()))
				}
			}

			dec := svc.Decide(domain.Key(key))
			if opts.Stats != nil {
				_ = opts.Stats.Record(r.Context(), domain.StatsEvent{
					Endpoint: opts.Endpoint,
					Table:    "api",
					Key:      domain.Key(key),
					Allowed:  dec.Allowed,
					At:       time.Now(),
				})
			}
			if !dec.Allowed {
				respond.TooManyRequests(w, dec.RetryAfter, respond.ErrorBody{Error: "Too many requests. Please slow down."})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
