package config

import (
	"flag"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags сбрасывает глобальный набор флагов: Parse регистрирует флаги
// на flag.CommandLine, и без сброса повторный вызов в тестах паникует.
func resetFlags(t *testing.T, args ...string) {
	t.Helper()
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	oldArgs := os.Args
	os.Args = append([]string{oldArgs[0]}, args...)
	t.Cleanup(func() { os.Args = oldArgs })
}

func TestParseDefaults(t *testing.T) {
	resetFlags(t)

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.RunAddress)
	assert.Equal(t, "", cfg.DatabaseURI)
	assert.Equal(t, "", cfg.RedisAddress)
	assert.Equal(t, "", cfg.PlatformAPIAddress)
	assert.Equal(t, "piolas-market-secret", cfg.AuthSecret)
}

func TestParseFlags(t *testing.T) {
	resetFlags(t,
		"-a", ":9090",
		"-d", "postgres://localhost/piolas",
		"-c", "localhost:6379",
		"-p", "platform.example.com",
		"-s", "flag-secret",
	)

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.RunAddress)
	assert.Equal(t, "postgres://localhost/piolas", cfg.DatabaseURI)
	assert.Equal(t, "localhost:6379", cfg.RedisAddress)
	assert.Equal(t, "platform.example.com", cfg.PlatformAPIAddress)
	assert.Equal(t, "flag-secret", cfg.AuthSecret)
}

func TestParseEnvOverridesFlags(t *testing.T) {
	resetFlags(t, "-a", ":9090", "-d", "postgres://flag/db")
	t.Setenv("RUN_ADDRESS", ":7070")
	t.Setenv("DATABASE_URI", "postgres://env/db")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.RunAddress)
	assert.Equal(t, "postgres://env/db", cfg.DatabaseURI)
}

func TestParseEnvOnly(t *testing.T) {
	resetFlags(t)
	t.Setenv("REDIS_ADDRESS", "cache:6379")
	t.Setenv("PLATFORM_API_ADDRESS", "platform:8081")
	t.Setenv("AUTH_SECRET", "env-secret")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "cache:6379", cfg.RedisAddress)
	assert.Equal(t, "platform:8081", cfg.PlatformAPIAddress)
	assert.Equal(t, "env-secret", cfg.AuthSecret)
}
