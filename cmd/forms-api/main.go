package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chimeral-forms/catalog"
	"chimeral-forms/contact"
	"chimeral-forms/inbox"
	"chimeral-forms/logger"
	"chimeral-forms/mailerlite"
	"chimeral-forms/middleware/ratelimit"
	"chimeral-forms/middleware/ratelimit/domain"
	"chimeral-forms/middleware/ratelimit/infra"
	"chimeral-forms/paths"
	"chimeral-forms/subscribe"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const writeTimeout = 30 * time.Second

func main() {
	if err := loadDotEnv(); err != nil {
		log.Fatalf("config error: %v", err)
	}
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	lg, err := logger.New(cfg.environment, cfg.logLevel, cfg.logFormat)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if err := run(cfg, lg); err != nil {
		lg.Error("forms-api stopped", zap.Error(err))
		_ = lg.Sync()
		os.Exit(1)
	}
}

func run(cfg config, lg *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var rdb *redis.Client
	if cfg.rateBackend == backendRedis {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.redisAddr,
			Password: cfg.redisPassword,
			DB:       cfg.redisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancelPing()
		if err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
	}

	var memStats *infra.MemoryStatsStore
	var stats domain.StatsStore
	if cfg.rateStatsEnabled {
		if rdb != nil {
			stats = infra.NewRedisStatsStore(
				rdb,
				infra.WithStatsPrefix(cfg.rateStatsPrefix),
				infra.WithStatsTTL(cfg.rateStatsTTL),
				infra.WithStatsBucket(cfg.rateStatsBucket),
				infra.WithStatsTrackKeys(cfg.rateStatsKeys),
			)
		} else {
			memStats = infra.NewMemoryStatsStore(infra.WithTrackKeys(cfg.rateStatsKeys))
			stats = memStats
		}
	}

	guards := guardFactory{stats: stats, logger: lg}
	if rdb != nil {
		guards.newLog = func(name string, w domain.Window) domain.AttemptLog {
			return infra.NewRedisAttemptLog(rdb, w.Length, infra.WithAttemptPrefix("forms:attempts:"+name))
		}
	} else {
		guards.newLog = func(_ string, w domain.Window) domain.AttemptLog {
			t := infra.NewAttemptTable(w.Length, infra.WithSweepEvery(cfg.sweepEvery))
			t.StartJanitor(ctx)
			return t
		}
	}

	store, err := inbox.NewStore(cfg.inboxDBPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	mlOpts := []mailerlite.Option{mailerlite.WithHTTPClient(&http.Client{Timeout: cfg.mailerliteTimeout})}
	if cfg.mailerliteAPIURL != "" {
		mlOpts = append(mlOpts, mailerlite.WithBaseURL(cfg.mailerliteAPIURL))
	}
	ml := mailerlite.NewClient(cfg.mailerliteAPIKey, mlOpts...)
	if !ml.Configured() {
		lg.Warn("MAILERLITE_API_KEY is not set; subscribe and notify will answer 500")
	}

	w := cfg.windows
	rt := routes{
		logger: lg,
		subscribe: subscribe.NewHandler(
			subscribe.Endpoint{
				Name:          "subscribe",
				GroupID:       cfg.groupBlog,
				Source:        "General Mailing List Form",
				DefaultBookID: "mailing-list",
			},
			ml,
			guards.guard("subscribe", "email", w.subscribeEmail),
			guards.guard("subscribe", "ip", w.subscribeIP),
			lg,
		),
		notify: subscribe.NewHandler(
			subscribe.Endpoint{
				Name:    "notify",
				GroupID: cfg.groupWhipTheDogs,
				Source:  "Whip the Dogs Launch",
			},
			ml,
			guards.guard("notify", "email", w.notifyEmail),
			guards.guard("notify", "ip", w.notifyIP),
			lg,
		),
		inbox: contact.NewHandler(
			inbox.Validator{Profanity: inbox.DefaultProfanityChecker()},
			store,
			guards.guard("presskit", "ip", w.pressIP),
			guards.guard("contact", "ip", w.contactIP),
			lg,
		),
		books:          catalog.NewHandler(paths.Prefixer(cfg.basePath)),
		allowedOrigins: cfg.allowedOrigins,
		concurrency: ratelimit.ConcurrencyOptions{
			Max:  cfg.concurrencyMax,
			Wait: cfg.concurrencyTimeout,
		},
	}

	if cfg.apiRateEnabled {
		buckets := infra.NewBucketStore(cfg.apiRateRPS, cfg.apiRateBurst)
		buckets.StartJanitor(ctx)
		rt.apiRate = &ratelimit.Options{
			Store:               buckets,
			Stats:               stats,
			TrustProxy:          cfg.trustProxy,
			AddRateLimitHeaders: cfg.addHeaders,
		}
	}

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           newRouter(rt),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       90 * time.Second,
	}

	lg.Info("forms-api listening",
		zap.String("addr", cfg.listenAddr),
		zap.String("environment", cfg.environment),
		zap.String("rate_backend", cfg.rateBackend),
		zap.Bool("rate_stats", cfg.rateStatsEnabled),
		zap.Bool("api_rate", cfg.apiRateEnabled),
		zap.Float64("api_rps", cfg.apiRateRPS),
		zap.Int("api_burst", cfg.apiRateBurst),
		zap.Int("concurrency_max", cfg.concurrencyMax),
		zap.String("base_path", cfg.basePath),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if memStats != nil {
		total := memStats.Total()
		lg.Info("rate limit totals",
			zap.Int64("allowed", total.Allowed),
			zap.Int64("denied", total.Denied),
			zap.Any("by_table", memStats.ByTable()),
		)
	}
	return err
}
