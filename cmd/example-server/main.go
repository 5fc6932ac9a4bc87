package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chimeral-forms/middleware/accesslog"
	"chimeral-forms/middleware/ratelimit"
	"chimeral-forms/middleware/ratelimit/domain"
	"chimeral-forms/middleware/ratelimit/infra"
	"chimeral-forms/respond"

	"go.uber.org/zap"
)

func main() {
	// Exemplo: os guards direto no seu webserver, sem o resto do forms-api.
	lg, _ := zap.NewDevelopment()
	defer func() { _ = lg.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store := infra.NewBucketStore(5, 10)
	store.StartJanitor(ctx)

	attempts := infra.NewAttemptTable(time.Minute)
	attempts.StartJanitor(ctx)
	guard := ratelimit.NewWindowGuard("hello", "ip", attempts, domain.Window{Length: time.Minute, Max: 3})
	guard.Logger = lg

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if dec := guard.Check(r.Context(), ratelimit.ClientIP(r)); !dec.Allowed {
			respond.TooManyRequests(w, dec.RetryAfter, respond.ErrorBody{Error: "three per minute"})
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	h := http.Handler(mux)
	h = ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{Max: 50})(h)
	h = ratelimit.Middleware(ratelimit.Options{
		Store:               store,
		TrustProxy:          true,
		AddRateLimitHeaders: true,
	})(h)
	h = accesslog.Middleware(lg)(h)

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	lg.Info("example server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Fatal("server error", zap.Error(err))
	}
}
