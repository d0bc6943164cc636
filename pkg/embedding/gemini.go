package embedding

import (
	"context"

	"github.com/soulthread/memoria/pkg/adapter"
)

// Gemini computes embeddings with a Gemini embedding model
type Gemini struct {
	client adapter.Gemini
}

func NewGemini(client adapter.Gemini) *Gemini {
	return &Gemini{client: client}
}

func (g *Gemini) Embed(ctx context.Context, text string) ([]float64, error) {
	values, err := g.client.Embedding(ctx, text, Dimensions)
	if err != nil {
		return nil, err
	}

	vec := make([]float64, len(values))
	for i, v := range values {
		vec[i] = float64(v)
	}
	return vec, nil
}

func (g *Gemini) Note() string {
	return "Embedding vectors are computed with the Gemini embedding model. Similarity is calculated per request without a vector index."
}
