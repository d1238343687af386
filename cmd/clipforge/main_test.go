package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bnema/clipforge/config"
	"github.com/bnema/clipforge/internal/domain"
)

func setupEnv(t *testing.T, backend string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("DATA_DIR", dir)
	t.Setenv("STORE_BACKEND", backend)
	cfg, err := loadConfig()
	require.NoError(t, err)
	return cfg
}

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func seedJobs(t *testing.T, cfg *config.Config, names ...string) []*domain.Job {
	t.Helper()
	store, closeStore, err := openStore(cfg)
	require.NoError(t, err)
	defer closeStore()

	jobs := make([]*domain.Job, 0, len(names))
	for _, n := range names {
		job, err := store.Enqueue(domain.Payload{Mode: domain.ModeCTAOnly, OutputName: n})
		require.NoError(t, err)
		jobs = append(jobs, job)
	}
	return jobs
}

func TestQueueCommands(t *testing.T) {
	for _, backend := range []string{config.StoreBackendJSON, config.StoreBackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := setupEnv(t, backend)

			out, err := runCommand(t, "", "queue", "list")
			require.NoError(t, err)
			assert.Contains(t, out, "Queue is empty")

			jobs := seedJobs(t, cfg, "monday-post", "tuesday-post")

			out, err = runCommand(t, "", "queue", "list")
			require.NoError(t, err)
			assert.Contains(t, out, "monday-post")
			assert.Contains(t, out, "tuesday-post")
			assert.Less(t, strings.Index(out, "tuesday-post"), strings.Index(out, "monday-post"))

			out, err = runCommand(t, "", "queue", "list", "--status", "failed")
			require.NoError(t, err)
			assert.Contains(t, out, "Queue is empty")

			out, err = runCommand(t, "", "queue", "show", jobs[0].ID)
			require.NoError(t, err)
			assert.Contains(t, out, `"output_name": "monday-post"`)

			out, err = runCommand(t, "", "queue", "rm", jobs[0].ID[:8])
			require.NoError(t, err)
			assert.Contains(t, out, "Removed job "+jobs[0].ID)

			_, err = runCommand(t, "", "queue", "show", jobs[0].ID)
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestHashPasswordCommand(t *testing.T) {
	out, err := runCommand(t, "", "hash-password", "hunter2")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2")))

	out, err = runCommand(t, "from-stdin\n", "hash-password")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(out)), []byte("from-stdin")))

	_, err = runCommand(t, "", "hash-password")
	assert.Error(t, err)
}

func TestPipelineConfigFromEnv(t *testing.T) {
	t.Setenv("MAX_SUBTITLE_LINES", "4")
	t.Setenv("CTA_ONLY_DURATION", "6")
	cfg := setupEnv(t, config.StoreBackendJSON)

	pc := pipelineConfig(cfg)
	assert.Equal(t, 4, pc.MaxSubtitleLines)
	assert.Equal(t, 6.0, pc.CTAOnlyDuration.Seconds())
	assert.Equal(t, cfg.TmpDir(), pc.TmpDir)
	assert.Equal(t, cfg.CTAURL, pc.DefaultCTA.URL)
	assert.Equal(t, 1080, pc.Width)
}
