package logger

import (
	"os"
	"path/filepath"
	"testing"

	"healthcare-booking/config"

	"github.com/gofiber/fiber/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetOutput(t *testing.T) {
	t.Cleanup(func() {
		log.SetOutput(os.Stdout)
		log.SetLevel(log.LevelInfo)
	})
}

func readLog(t *testing.T, dir string) string {
	files, err := filepath.Glob(filepath.Join(dir, "app_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	body, err := os.ReadFile(files[0])
	require.NoError(t, err)
	return string(body)
}

func TestConfigure_AppliesLevelAndDirectory(t *testing.T) {
	resetOutput(t)
	dir := filepath.Join(t.TempDir(), "app")

	Configure(&config.Config{LogDir: dir, LogLevel: "warn"})
	Info("routine detail")
	Warning("disk almost full")

	body := readLog(t, dir)
	assert.Contains(t, body, "disk almost full")
	assert.NotContains(t, body, "routine detail")
}

func TestConfigure_ReadsSettingsFromDotEnv(t *testing.T) {
	resetOutput(t)
	work := t.TempDir()
	dir := filepath.Join(work, "logs")
	require.NoError(t, os.WriteFile(filepath.Join(work, ".env"),
		[]byte("JWT_SECRET=test-secret\nLOG_LEVEL=error\nLOG_DIR="+dir+"\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(work))
	t.Cleanup(func() {
		os.Chdir(wd)
		for _, key := range []string{"JWT_SECRET", "LOG_LEVEL", "LOG_DIR"} {
			os.Unsetenv(key)
		}
	})

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)

	Configure(cfg)
	Warning("ignored at error level")
	Error("payment gateway down", nil)

	body := readLog(t, dir)
	assert.Contains(t, body, "payment gateway down")
	assert.NotContains(t, body, "ignored at error level")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.LevelDebug, ParseLevel(" DEBUG "))
	assert.Equal(t, log.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, log.LevelInfo, ParseLevel("verbose"))
}
