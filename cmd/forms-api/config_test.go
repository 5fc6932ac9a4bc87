package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"chimeral-forms/middleware/origin"
	"chimeral-forms/middleware/ratelimit/domain"

	"github.com/stretchr/testify/require"
)

func TestReadConfig_Defaults(t *testing.T) {
	require := require.New(t)

	cfg, err := readConfig()
	require.NoError(err)
	require.Equal(":8080", cfg.listenAddr)
	require.Equal(backendMemory, cfg.rateBackend)
	require.Equal(origin.DefaultAllowed, cfg.allowedOrigins)
	require.Equal(domain.Window{Length: time.Minute, Max: 3}, cfg.windows.subscribeEmail)
	require.Equal(domain.Window{Length: 5 * time.Minute, Max: 10}, cfg.windows.subscribeIP)
	require.Equal(domain.Window{Length: time.Minute, Max: 5}, cfg.windows.pressIP)
	require.Equal(domain.Window{Length: time.Minute, Max: 20}, cfg.windows.contactIP)
	require.Equal(20, cfg.apiRateBurst)
}

func TestReadConfig_Overrides(t *testing.T) {
	require := require.New(t)
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("RATE_SUBSCRIBE_EMAIL_WINDOW", "2m")
	t.Setenv("RATE_SUBSCRIBE_EMAIL_MAX", "1")
	t.Setenv("API_RATE_RPS", "0.5")
	t.Setenv("BASE_PATH", "/chimeral")

	cfg, err := readConfig()
	require.NoError(err)
	require.Equal([]string{"https://a.example", "https://b.example"}, cfg.allowedOrigins)
	require.Equal(domain.Window{Length: 2 * time.Minute, Max: 1}, cfg.windows.subscribeEmail)
	require.Equal(1, cfg.apiRateBurst)
	require.Equal("/chimeral", cfg.basePath)
}

func TestReadConfig_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown backend":     {"RATE_BACKEND": "etcd"},
		"redis without addr":  {"RATE_BACKEND": "redis"},
		"zero rps":            {"API_RATE_RPS": "-1"},
		"negative burst":      {"API_RATE_BURST": "-2"},
		"negative concurrent": {"CONCURRENCY_MAX": "-1"},
		"zero window":         {"RATE_CONTACT_IP_WINDOW": "0s"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := readConfig()
			require.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(os.WriteFile(path, []byte("FORMS_TEST_FROM_DOTENV=yes\n"), 0o600))
	t.Setenv("FORMS_TEST_FROM_DOTENV", "")
	require.NoError(os.Unsetenv("FORMS_TEST_FROM_DOTENV"))

	require.NoError(loadDotEnv(path))
	require.Equal("yes", os.Getenv("FORMS_TEST_FROM_DOTENV"))

	require.NoError(loadDotEnv(filepath.Join(dir, "missing.env")))
}
