package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"chimeral-forms/middleware/origin"
	"chimeral-forms/middleware/ratelimit/domain"

	"github.com/joho/godotenv"
)

const (
	backendMemory = "memory"
	backendRedis  = "redis"
)

// windows são as tabelas de janela deslizante de cada formulário.
type windows struct {
	subscribeEmail domain.Window
	subscribeIP    domain.Window
	notifyEmail    domain.Window
	notifyIP       domain.Window
	pressIP        domain.Window
	contactIP      domain.Window
}

type config struct {
	listenAddr  string
	environment string
	logLevel    string
	logFormat   string

	mailerliteAPIKey  string
	mailerliteAPIURL  string
	groupBlog         string
	groupWhipTheDogs  string
	mailerliteTimeout time.Duration

	allowedOrigins []string
	basePath       string
	inboxDBPath    string

	rateBackend      string
	redisAddr        string
	redisPassword    string
	redisDB          int
	rateStatsEnabled bool
	rateStatsPrefix  string
	rateStatsTTL     time.Duration
	rateStatsBucket  string
	rateStatsKeys    bool
	sweepEvery       time.Duration
	windows          windows

	apiRateEnabled     bool
	apiRateRPS         float64
	apiRateBurst       int
	trustProxy         bool
	addHeaders         bool
	concurrencyMax     int
	concurrencyTimeout time.Duration
}

// loadDotEnv carrega .env se existir; variáveis já definidas no ambiente
// têm precedência.
func loadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.environment = getenvDefault("ENVIRONMENT", "development")
	cfg.logLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.logFormat = getenvDefault("LOG_FORMAT", "console")

	cfg.mailerliteAPIKey = os.Getenv("MAILERLITE_API_KEY")
	cfg.mailerliteAPIURL = getenvDefault("MAILERLITE_API_URL", "")
	cfg.groupBlog = os.Getenv("MAILERLITE_GROUP_ID_BLOG")
	cfg.groupWhipTheDogs = os.Getenv("MAILERLITE_GROUP_ID_WHIPTHEDOGS")
	cfg.mailerliteTimeout = getenvDurationDefault("MAILERLITE_TIMEOUT", 10*time.Second)

	cfg.allowedOrigins = getenvListDefault("ALLOWED_ORIGINS", origin.DefaultAllowed)
	cfg.basePath = os.Getenv("BASE_PATH")
	cfg.inboxDBPath = getenvDefault("INBOX_DB_PATH", "inbox.db")

	cfg.rateBackend = strings.ToLower(getenvDefault("RATE_BACKEND", backendMemory))
	cfg.redisAddr = os.Getenv("REDIS_ADDR")
	cfg.redisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.redisDB = getenvIntDefault("REDIS_DB", 0)
	cfg.rateStatsEnabled = getenvBoolDefault("RATE_STATS_ENABLED", false)
	cfg.rateStatsPrefix = getenvDefault("RATE_STATS_PREFIX", "forms:stats")
	cfg.rateStatsTTL = getenvDurationDefault("RATE_STATS_TTL", 24*time.Hour)
	cfg.rateStatsBucket = getenvDefault("RATE_STATS_BUCKET", "minute")
	cfg.rateStatsKeys = getenvBoolDefault("RATE_STATS_TRACK_KEYS", false)
	cfg.sweepEvery = getenvDurationDefault("SWEEP_EVERY", 2*time.Minute)

	cfg.windows = windows{
		subscribeEmail: getenvWindow("RATE_SUBSCRIBE_EMAIL", domain.Window{Length: time.Minute, Max: 3}),
		subscribeIP:    getenvWindow("RATE_SUBSCRIBE_IP", domain.Window{Length: 5 * time.Minute, Max: 10}),
		notifyEmail:    getenvWindow("RATE_NOTIFY_EMAIL", domain.Window{Length: time.Minute, Max: 3}),
		notifyIP:       getenvWindow("RATE_NOTIFY_IP", domain.Window{Length: 5 * time.Minute, Max: 10}),
		pressIP:        getenvWindow("RATE_PRESS_IP", domain.Window{Length: time.Minute, Max: 5}),
		contactIP:      getenvWindow("RATE_CONTACT_IP", domain.Window{Length: time.Minute, Max: 20}),
	}

	cfg.apiRateEnabled = getenvBoolDefault("API_RATE_ENABLED", true)
	cfg.apiRateRPS = getenvFloatDefault("API_RATE_RPS", 5)
	// IMPORTANTE: o "burst" permite uma rajada inicial de requisições.
	// Com RPS muito baixo (ex: 0.02), o padrão 20 pode dar a impressão de que
	// o limiter não está funcionando, porque as primeiras ~20 passam.
	if burst, ok := getenvInt("API_RATE_BURST"); ok {
		cfg.apiRateBurst = burst
	} else {
		cfg.apiRateBurst = 20
		if getenvIsSet("API_RATE_RPS") && cfg.apiRateRPS > 0 && cfg.apiRateRPS < 1 {
			cfg.apiRateBurst = 1
		}
	}
	cfg.trustProxy = getenvBoolDefault("TRUST_PROXY", true)
	cfg.addHeaders = getenvBoolDefault("ADD_RATELIMIT_HEADERS", false)
	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 100)
	cfg.concurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)

	switch cfg.rateBackend {
	case backendMemory, backendRedis:
	default:
		return config{}, fmt.Errorf("RATE_BACKEND must be %q or %q, got %q", backendMemory, backendRedis, cfg.rateBackend)
	}
	if cfg.rateBackend == backendRedis && strings.TrimSpace(cfg.redisAddr) == "" {
		return config{}, errors.New("REDIS_ADDR is required when RATE_BACKEND=redis")
	}
	if cfg.apiRateRPS <= 0 {
		return config{}, errors.New("API_RATE_RPS must be > 0")
	}
	if cfg.apiRateBurst <= 0 {
		return config{}, errors.New("API_RATE_BURST must be > 0")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	for name, w := range cfg.windows.byName() {
		if w.Length <= 0 {
			return config{}, fmt.Errorf("%s window must be > 0", name)
		}
	}
	return cfg, nil
}

func (w windows) byName() map[string]domain.Window {
	return map[string]domain.Window{
		"subscribe email": w.subscribeEmail,
		"subscribe ip":    w.subscribeIP,
		"notify email":    w.notifyEmail,
		"notify ip":       w.notifyIP,
		"presskit ip":     w.pressIP,
		"contact ip":      w.contactIP,
	}
}

// getenvWindow lê <prefix>_WINDOW (duração) e <prefix>_MAX.
func getenvWindow(prefix string, def domain.Window) domain.Window {
	return domain.Window{
		Length: getenvDurationDefault(prefix+"_WINDOW", def.Length),
		Max:    getenvIntDefault(prefix+"_MAX", def.Max),
	}
}

func getenvListDefault(k string, def []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvInt(k string) (int, bool) {
	v, ok := os.LookupEnv(k)
	if !ok || v == "" {
		return 0, false
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return i, true
}

func getenvIsSet(k string) bool {
	v, ok := os.LookupEnv(k)
	return ok && v != ""
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
