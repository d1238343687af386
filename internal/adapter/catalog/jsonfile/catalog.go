package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/bnema/clipforge/internal/domain"
	"github.com/bnema/clipforge/internal/port"
)

// Catalog serves clips from a JSON file written by the clip analyzer. The
// file is re-read whenever its modification time changes, so new analysis
// results show up without a restart.
type Catalog struct {
	path string

	mu      sync.Mutex
	modTime time.Time
	size    int64
	clips   []*domain.Clip
	byID    map[string]*domain.Clip
}

var _ port.ClipCatalog = (*Catalog)(nil)

func NewCatalog(path string) *Catalog {
	return &Catalog{path: path}
}

// catalogFile accepts both a bare array and an object with a clips key.
type catalogFile struct {
	Clips []*domain.Clip `json:"clips"`
}

func (c *Catalog) load() ([]*domain.Clip, map[string]*domain.Clip, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	info, err := os.Stat(c.path)
	if errors.Is(err, os.ErrNotExist) {
		c.clips, c.byID, c.modTime, c.size = nil, nil, time.Time{}, 0
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if c.byID != nil && info.ModTime().Equal(c.modTime) && info.Size() == c.size {
		return c.clips, c.byID, nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, nil, err
	}
	clips, err := decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", c.path, err)
	}

	byID := make(map[string]*domain.Clip, len(clips))
	kept := clips[:0]
	for _, clip := range clips {
		if clip == nil || clip.ID == "" {
			continue
		}
		if _, dup := byID[clip.ID]; dup {
			continue
		}
		byID[clip.ID] = clip
		kept = append(kept, clip)
	}

	c.clips, c.byID = kept, byID
	c.modTime, c.size = info.ModTime(), info.Size()
	return c.clips, c.byID, nil
}

func decode(data []byte) ([]*domain.Clip, error) {
	var clips []*domain.Clip
	if err := json.Unmarshal(data, &clips); err == nil {
		return clips, nil
	}
	var f catalogFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Clips, nil
}

func (c *Catalog) Get(id string) (*domain.Clip, error) {
	_, byID, err := c.load()
	if err != nil {
		return nil, err
	}
	clip, ok := byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *clip
	return &cp, nil
}

// List returns the clips of source (all sources when empty) scoring at least
// minScore, in catalogue order.
func (c *Catalog) List(source string, minScore int) ([]*domain.Clip, error) {
	clips, _, err := c.load()
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Clip, 0, len(clips))
	for _, clip := range clips {
		if source != "" && clip.Source != source {
			continue
		}
		if clip.Score < minScore {
			continue
		}
		cp := *clip
		out = append(out, &cp)
	}
	return out, nil
}
