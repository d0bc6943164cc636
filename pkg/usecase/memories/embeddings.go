package memories

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/soulthread/memoria/pkg/embedding"
	"github.com/soulthread/memoria/pkg/model"
	"github.com/soulthread/memoria/pkg/repository"
)

const (
	DefaultEmbeddingLimit      = 10
	MaxEmbeddingLimit          = 50
	DefaultSimilarityThreshold = 0.7
)

type EmbeddingsInput struct {
	UserID string
	// Query is the text to compare against. Empty means no similarity search.
	Query string
	// Threshold defaults to DefaultSimilarityThreshold when nil. Zero disables the cut.
	Threshold *float64
	Limit     int
}

type EmbeddingsMeta struct {
	UserID              string  `json:"userId"`
	Query               *string `json:"query"`
	SimilarityThreshold float64 `json:"similarityThreshold"`
	ResultCount         int     `json:"resultCount"`
	Note                string  `json:"note"`
}

type EmbeddingsOutput struct {
	Data []*model.EmbeddingRecord `json:"data"`
	Meta EmbeddingsMeta           `json:"meta"`
}

// Embeddings returns embedding vectors for up to Limit voice and dream
// documents each, ranked by similarity to Query when one is given
func (u *UseCase) Embeddings(ctx context.Context, in EmbeddingsInput) (*EmbeddingsOutput, error) {
	if in.UserID == "" {
		return nil, model.BadRequest(msgUserIDRequired)
	}

	switch {
	case in.Limit > MaxEmbeddingLimit:
		return nil, model.BadRequest("limit cannot exceed 50")
	case in.Limit < 0:
		return nil, model.BadRequest("limit must be at least 1")
	case in.Limit == 0:
		in.Limit = DefaultEmbeddingLimit
	}

	threshold := DefaultSimilarityThreshold
	if in.Threshold != nil {
		threshold = *in.Threshold
	}

	q := repository.EventQuery{Limit: in.Limit}
	voice, err := u.repo.ListVoiceEvents(ctx, in.UserID, q)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to scan voice events", goerr.V("user_id", in.UserID))
	}
	dreams, err := u.repo.ListDreamEvents(ctx, in.UserID, q)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to scan dream events", goerr.V("user_id", in.UserID))
	}

	candidates := make([]*model.EmbeddingRecord, 0, len(voice)+len(dreams))
	for _, v := range voice {
		candidates = append(candidates, &model.EmbeddingRecord{
			ID:       v.ID,
			Type:     model.MemoryTypeVoice,
			Content:  v.Content,
			VectorID: model.VectorID(model.MemoryTypeVoice, v.ID),
			Metadata: model.EmbeddingMetadata{
				CreatedAt:     v.CreatedAt,
				ContentLength: embedding.TextLength(v.Content),
				Emotions:      model.SingleEmotion(v.Emotion),
				Tags:          v.Tags(),
			},
		})
	}
	for _, d := range dreams {
		candidates = append(candidates, &model.EmbeddingRecord{
			ID:       d.ID,
			Type:     model.MemoryTypeDream,
			Content:  d.Content,
			VectorID: model.VectorID(model.MemoryTypeDream, d.ID),
			Metadata: model.EmbeddingMetadata{
				CreatedAt:     d.CreatedAt,
				ContentLength: embedding.TextLength(d.Content),
				Emotions:      model.EmotionList(d.Emotions),
				Tags:          d.Tags(),
			},
		})
	}

	var queryVec []float64
	if in.Query != "" {
		queryVec, err = u.embedder.Embed(ctx, in.Query)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to embed query")
		}
	}

	results := make([]*model.EmbeddingRecord, 0, len(candidates))
	for _, rec := range candidates {
		vec, err := u.embedder.Embed(ctx, rec.Content)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to embed memory", goerr.V("vector_id", rec.VectorID))
		}
		rec.Embedding = vec

		if in.Query != "" {
			sim, err := embedding.CosineSimilarity(vec, queryVec)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to compare embeddings", goerr.V("vector_id", rec.VectorID))
			}
			if threshold != 0 && sim < threshold {
				continue
			}
			rec.Similarity = &sim
		}
		results = append(results, rec)
	}

	if in.Query != "" {
		sort.SliceStable(results, func(i, j int) bool {
			return *results[i].Similarity > *results[j].Similarity
		})
	}
	if len(results) > in.Limit {
		results = results[:in.Limit]
	}

	meta := EmbeddingsMeta{
		UserID:              in.UserID,
		SimilarityThreshold: threshold,
		ResultCount:         len(results),
		Note:                u.embedder.Note(),
	}
	if in.Query != "" {
		query := in.Query
		meta.Query = &query
	}

	return &EmbeddingsOutput{Data: results, Meta: meta}, nil
}
