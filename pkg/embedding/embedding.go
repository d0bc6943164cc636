package embedding

import (
	"context"
	"math"
	"regexp"
	"strings"
	"unicode/utf16"

	"github.com/m-mizutani/goerr/v2"
)

// Dimensions is the length of every vector produced by an Embedder
const Dimensions = 384

// Embedder turns text into a fixed length vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	// Note describes the vector source to API consumers
	Note() string
}

var (
	ErrDimensionMismatch = goerr.New("vectors must have the same length")

	whitespace    = regexp.MustCompile(`\s+`)
	emotionTokens = []string{"happy", "sad", "angry", "fear", "love", "joy", "calm", "anxious"}
)

// Simulated derives deterministic pseudo embeddings from text features. It
// does not capture meaning and exists for demonstration.
type Simulated struct{}

func NewSimulated() *Simulated {
	return &Simulated{}
}

func (s *Simulated) Embed(_ context.Context, text string) ([]float64, error) {
	return Generate(text), nil
}

func (s *Simulated) Note() string {
	return "Embedding vectors are simulated for demo purposes. In production, these would be computed using a vector database like Pinecone, Weaviate, or Chroma."
}

// Generate returns the simulated unit vector for text. The result depends on
// text only. Text whose raw vector has zero magnitude yields all zeros.
func Generate(text string) []float64 {
	lower := strings.ToLower(text)
	hash := textHash(lower)
	charCount := TextLength(text)
	wordCount := len(whitespace.Split(lower, -1))

	hits := 0
	for _, token := range emotionTokens {
		if strings.Contains(lower, token) {
			hits++
		}
	}

	vec := make([]float64, Dimensions)
	for i := range vec {
		seed := float64((hash + int64(i)*7) % 1_000_000)
		v := math.Sin(seed) * math.Cos(seed*0.5)

		switch {
		case i < 10:
			v += float64(charCount%100) / 1000
		case i < 20:
			v += float64(wordCount%50) / 100
		case i < 30:
			v += float64(hits) / 10
		}
		vec[i] = v
	}

	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	magnitude := math.Sqrt(sum)
	if magnitude == 0 {
		return vec
	}

	for i := range vec {
		vec[i] /= magnitude
	}
	return vec
}

// TextLength counts UTF-16 code units, the length unit of the API clients
func TextLength(text string) int {
	n := 0
	for _, r := range text {
		n += utf16.RuneLen(r)
	}
	return n
}

// textHash is a 31-multiplier rolling hash over UTF-16 code units with
// 32-bit wraparound, returned as an absolute value
func textHash(s string) int64 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h<<5 - h + int32(c)
	}
	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	return abs
}

// CosineSimilarity returns dot(a,b)/(|a||b|), or 0 when either norm is zero
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, goerr.Wrap(ErrDimensionMismatch, "cannot compare vectors",
			goerr.V("a", len(a)),
			goerr.V("b", len(b)))
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
