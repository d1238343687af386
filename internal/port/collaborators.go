package port

import (
	"context"

	"github.com/bnema/clipforge/internal/domain"
)

type EventPublisher interface {
	Publish(event domain.Event)
}

type ClipCatalog interface {
	Get(id string) (*domain.Clip, error)
	List(source string, minScore int) ([]*domain.Clip, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, script, voice, provider string) (*domain.Speech, error)
}
