package ratelimit

import (
	"net/http"
	"time"

	"chimeral-forms/middleware/ratelimit/application"
	"chimeral-forms/middleware/ratelimit/infra"
	"chimeral-forms/respond"
)

type ConcurrencyOptions struct {
	Max  int
	Wait time.Duration
}

// ConcurrencyMiddleware limita requests simultâneas; sem vaga responde 503.
// Max <= 0 desliga o limite.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	svc := application.SlotService{
		Slots: infra.NewSlotSemaphore(opts.Max),
		Wait:  opts.Wait,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := svc.Acquire(r.Context())
			if !ok {
				respond.Error(w, http.StatusServiceUnavailable, "Service busy. Please try again in a moment.")
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
