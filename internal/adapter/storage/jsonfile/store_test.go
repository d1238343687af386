package jsonfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bnema/clipforge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestStore_EnqueueAndGet(t *testing.T) {
	store := newTestStore(t)

	job, err := store.Enqueue(domain.Payload{Mode: domain.ModeMeme, HookCaption: "caption", OutputName: "out"})
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, domain.JobStatusQueued, job.Status)

	got, err := store.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, "caption", got.HookCaption)
	assert.Nil(t, got.CompletedAt)

	_, err = store.Get("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ListPreservesInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 5; i++ {
		_, err := store.Enqueue(domain.Payload{OutputName: fmt.Sprintf("job-%d", i)})
		require.NoError(t, err)
	}

	jobs, err := store.List()
	require.NoError(t, err)
	require.Len(t, jobs, 5)
	for i, j := range jobs {
		assert.Equal(t, fmt.Sprintf("job-%d", i), j.OutputName)
	}
}

func TestStore_Update(t *testing.T) {
	store := newTestStore(t)
	job, err := store.Enqueue(domain.Payload{OutputName: "x"})
	require.NoError(t, err)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	updated, err := store.Update(job.ID, domain.FailedUpdate(fmt.Errorf("boom"), at))
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFailed, updated.Status)
	assert.Equal(t, "boom", updated.Error)

	reloaded, err := store.Get(job.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.CompletedAt)
	assert.True(t, at.Equal(*reloaded.CompletedAt))
	assert.Equal(t, "x", reloaded.OutputName)

	_, err = store.Update("missing", domain.StatusUpdate(domain.JobStatusReview))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Remove(t *testing.T) {
	store := newTestStore(t)
	a, _ := store.Enqueue(domain.Payload{OutputName: "a"})
	b, _ := store.Enqueue(domain.Payload{OutputName: "b"})

	removed, err := store.Remove(a.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Remove(a.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	jobs, err := store.List()
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, b.ID, jobs[0].ID)
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	first, err := NewStore(dir)
	require.NoError(t, err)
	job, err := first.Enqueue(domain.Payload{Mode: domain.ModeCTAOnly, CTATagline: "hello"})
	require.NoError(t, err)

	second, err := NewStore(dir)
	require.NoError(t, err)
	got, err := second.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.CTATagline)
	assert.Equal(t, domain.ModeCTAOnly, got.Mode)
}

func TestStore_CorruptFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0600))

	jobs, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, jobs)

	_, err = store.Enqueue(domain.Payload{OutputName: "x"})
	assert.ErrorIs(t, err, ErrCorrupt)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

func TestStore_ConcurrentMutations(t *testing.T) {
	store := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			job, err := store.Enqueue(domain.Payload{OutputName: fmt.Sprintf("job-%d", i)})
			if !assert.NoError(t, err) {
				return
			}
			_, err = store.Update(job.ID, domain.StatusUpdate(domain.JobStatusReview))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	jobs, err := store.List()
	require.NoError(t, err)
	assert.Len(t, jobs, 20)
	for _, j := range jobs {
		assert.Equal(t, domain.JobStatusReview, j.Status)
	}
	assert.NoFileExists(t, store.Path()+".tmp")
}

func TestStore_SharedLockAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	a, err := NewStore(dir)
	require.NoError(t, err)
	b, err := NewStore(dir)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := a.Enqueue(domain.Payload{})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := b.Enqueue(domain.Payload{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	jobs, err := a.List()
	require.NoError(t, err)
	assert.Len(t, jobs, 20)
	assert.FileExists(t, filepath.Join(dir, "queue.json.lock"))
}
