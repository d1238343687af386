package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	for _, key := range []string{
		"PORT", "DATA_DIR", "STORE_BACKEND", "POLL_INTERVAL", "CTA_DURATION",
		"CTA_ONLY_DURATION", "MAX_SUBTITLE_LINES", "CTA_TAGLINE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7890, cfg.Port)
	assert.Equal(t, StoreBackendJSON, cfg.StoreBackend)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, 5*time.Second, cfg.CTADuration)
	assert.Equal(t, 8*time.Second, cfg.CTAOnlyDuration)
	assert.Equal(t, 6, cfg.MaxSubtitleLines)
	assert.Equal(t, "ffmpeg", cfg.FFmpegPath)
	assert.Equal(t, filepath.Join(cfg.DataDir, "review"), cfg.ReviewDir())
}

func TestLoad_Overrides(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("POLL_INTERVAL", "250ms")
	t.Setenv("CTA_ONLY_DURATION", "6")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, StoreBackendSQLite, cfg.StoreBackend)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 6*time.Second, cfg.CTAOnlyDuration)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"PORT", "abc"},
		{"STORE_BACKEND", "postgres"},
		{"POLL_INTERVAL", "soon"},
		{"CTA_DURATION", "-1"},
		{"MAX_SUBTITLE_LINES", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			isolateEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	isolateEnv(t)
	envPath := filepath.Join(t.TempDir(), "studio.env")
	require.NoError(t, os.WriteFile(envPath, []byte("CTA_TAGLINE=Try Clipforge\n"), 0600))
	t.Setenv("ENV_FILE", envPath)
	// godotenv does not override variables that are already present.
	require.NoError(t, os.Unsetenv("CTA_TAGLINE"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Try Clipforge", cfg.CTATagline)
}

func TestEnsureDirectories(t *testing.T) {
	isolateEnv(t)
	t.Setenv("DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.EnsureDirectories())

	for _, dir := range []string{cfg.TmpDir(), cfg.ReviewDir(), cfg.PublishedDir(), cfg.InboxDir(), cfg.MarketingClipsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir())
	}
}
