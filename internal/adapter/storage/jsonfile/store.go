package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/bnema/clipforge/internal/domain"
	"github.com/bnema/clipforge/internal/infrastructure/logger"
	"github.com/bnema/clipforge/internal/port"
)

var ErrCorrupt = errors.New("queue file is corrupt")

// Store keeps the job collection in a single JSON array. Every mutation
// re-reads the whole file and replaces it atomically. The companion lock file
// serializes access between processes sharing the data directory.
type Store struct {
	mu   sync.RWMutex
	path string
	lock *flock.Flock
}

var _ port.JobStore = (*Store)(nil)

func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dataDir, "queue.json")
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) withWriteLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", s.path, err)
	}
	defer func() { _ = s.lock.Unlock() }()

	return fn()
}

// withReadLock only needs the in-process lock: the file is always replaced
// by rename, so a reader sees one complete version.
func (s *Store) withReadLock(fn func() error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn()
}

func (s *Store) load() ([]*domain.Job, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*domain.Job{}, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return []*domain.Job{}, nil
	}

	var jobs []*domain.Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return jobs, nil
}

func (s *Store) save(jobs []*domain.Job) error {
	tmpPath := s.path + ".tmp"

	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.path)
}

// mutate runs fn on a fresh copy of the collection and persists the result
// when fn reports a change.
func (s *Store) mutate(fn func(jobs []*domain.Job) ([]*domain.Job, bool, error)) error {
	return s.withWriteLock(func() error {
		jobs, err := s.load()
		if err != nil {
			return err
		}
		next, changed, err := fn(jobs)
		if err != nil || !changed {
			return err
		}
		return s.save(next)
	})
}

func (s *Store) Enqueue(p domain.Payload) (*domain.Job, error) {
	job := domain.NewJob(p)
	err := s.mutate(func(jobs []*domain.Job) ([]*domain.Job, bool, error) {
		return append(jobs, job), true, nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Store) Get(id string) (*domain.Job, error) {
	var found *domain.Job
	err := s.withReadLock(func() error {
		jobs, err := s.load()
		if err != nil {
			return err
		}
		for _, j := range jobs {
			if j.ID == id {
				found = j
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return found, err
}

func (s *Store) Update(id string, u domain.JobUpdate) (*domain.Job, error) {
	var updated *domain.Job
	err := s.mutate(func(jobs []*domain.Job) ([]*domain.Job, bool, error) {
		for _, j := range jobs {
			if j.ID == id {
				u.Apply(j)
				updated = j
				return jobs, true, nil
			}
		}
		return nil, false, domain.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) Remove(id string) (bool, error) {
	removed := false
	err := s.mutate(func(jobs []*domain.Job) ([]*domain.Job, bool, error) {
		kept := jobs[:0]
		for _, j := range jobs {
			if j.ID == id {
				removed = true
				continue
			}
			kept = append(kept, j)
		}
		return kept, removed, nil
	})
	return removed, err
}

// List returns the collection in insertion order. A corrupt file reads as
// empty; mutations still refuse to overwrite it.
func (s *Store) List() ([]*domain.Job, error) {
	var jobs []*domain.Job
	err := s.withReadLock(func() error {
		var err error
		jobs, err = s.load()
		return err
	})
	if errors.Is(err, ErrCorrupt) {
		logger.Warn.Printf("%s: %v", s.path, err)
		return []*domain.Job{}, nil
	}
	return jobs, err
}
