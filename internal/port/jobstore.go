package port

import "github.com/bnema/clipforge/internal/domain"

// JobStore is the durable, ordered job collection. Every mutation is a
// full read-modify-write of the collection under one writer lock.
type JobStore interface {
	Enqueue(p domain.Payload) (*domain.Job, error)
	Get(id string) (*domain.Job, error)
	Update(id string, u domain.JobUpdate) (*domain.Job, error)
	Remove(id string) (bool, error)
	List() ([]*domain.Job, error)
}
