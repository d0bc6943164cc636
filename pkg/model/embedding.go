package model

type EmbeddingMetadata struct {
	CreatedAt     int64     `json:"createdAt"`
	ContentLength int       `json:"contentLength"`
	Emotions      *Emotions `json:"emotions,omitempty"`
	Tags          []string  `json:"tags"`
}

type EmbeddingRecord struct {
	ID         string            `json:"id"`
	Type       MemoryType        `json:"type"`
	Content    string            `json:"content"`
	VectorID   string            `json:"vectorId"`
	Embedding  []float64         `json:"embedding"`
	Similarity *float64          `json:"similarity,omitempty"`
	Metadata   EmbeddingMetadata `json:"metadata"`
}
