package embedding_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/soulthread/memoria/pkg/embedding"
)

func TestGenerateDeterministic(t *testing.T) {
	texts := []string{
		"I felt happy talking with Alice",
		"Dreamt of the ocean, calm and quiet",
		"ＡＢＣ 日本語 with emoji 🌊",
	}

	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			a := embedding.Generate(text)
			b := embedding.Generate(text)
			gt.A(t, a).Length(embedding.Dimensions)
			for i := range a {
				if math.Float64bits(a[i]) != math.Float64bits(b[i]) {
					t.Fatalf("dimension %d differs: %v != %v", i, a[i], b[i])
				}
			}
		})
	}
}

func TestGenerateUnitLength(t *testing.T) {
	vec := embedding.Generate("love and joy by the sea")

	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	gt.True(t, math.Abs(math.Sqrt(sum)-1) < 1e-9)
}

func TestGenerateCaseInsensitiveHash(t *testing.T) {
	// Length and word features match, so only the hash could differ
	a := embedding.Generate("Ocean Waves")
	b := embedding.Generate("ocean waves")
	for i := range a {
		gt.Equal(t, a[i], b[i])
	}
}

func TestGenerateEmpty(t *testing.T) {
	vec := embedding.Generate("")
	gt.A(t, vec).Length(embedding.Dimensions)
	for _, v := range vec {
		gt.False(t, math.IsNaN(v))
		gt.False(t, math.IsInf(v, 0))
	}
}

func TestCosineSimilarity(t *testing.T) {
	v := embedding.Generate("a calm walk")
	zero := make([]float64, embedding.Dimensions)

	t.Run("self similarity", func(t *testing.T) {
		sim, err := embedding.CosineSimilarity(v, v)
		gt.NoError(t, err)
		gt.True(t, math.Abs(sim-1) < 1e-9)
	})

	t.Run("zero vector", func(t *testing.T) {
		sim, err := embedding.CosineSimilarity(v, zero)
		gt.NoError(t, err)
		gt.Equal(t, sim, 0.0)
	})

	t.Run("orthogonal", func(t *testing.T) {
		sim, err := embedding.CosineSimilarity([]float64{1, 0}, []float64{0, 1})
		gt.NoError(t, err)
		gt.Equal(t, sim, 0.0)
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := embedding.CosineSimilarity([]float64{1}, []float64{1, 2})
		gt.Error(t, err)
		gt.True(t, errors.Is(err, embedding.ErrDimensionMismatch))
	})
}

func TestSimulatedEmbedder(t *testing.T) {
	s := embedding.NewSimulated()
	vec, err := s.Embed(context.Background(), "hello")
	gt.NoError(t, err)
	gt.Equal(t, vec, embedding.Generate("hello"))
	gt.S(t, s.Note()).Contains("simulated")
}
