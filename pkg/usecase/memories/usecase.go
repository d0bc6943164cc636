package memories

import (
	"time"

	"github.com/soulthread/memoria/pkg/embedding"
	"github.com/soulthread/memoria/pkg/repository"
)

const msgUserIDRequired = "userId parameter is required"

// UseCase implements the read operations over a user's memories
type UseCase struct {
	repo     repository.Repository
	embedder embedding.Embedder
	now      func() time.Time
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithEmbedder replaces the simulated embedder
func WithEmbedder(e embedding.Embedder) Option {
	return func(uc *UseCase) {
		uc.embedder = e
	}
}

// WithClock sets the time source used for relative windows and timestamps
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}

// New creates a memories UseCase
func New(repo repository.Repository, opts ...Option) *UseCase {
	uc := &UseCase{
		repo:     repo,
		embedder: embedding.NewSimulated(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}
