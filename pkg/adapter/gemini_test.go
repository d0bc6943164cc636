package adapter_test

import (
	"context"
	"os"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/soulthread/memoria/pkg/adapter"
)

func TestGeminiEmbedding(t *testing.T) {
	projectID := os.Getenv("TEST_GEMINI_PROJECT")
	if projectID == "" {
		t.Skip("TEST_GEMINI_PROJECT is not set")
	}

	ctx := context.Background()
	client, err := adapter.NewGemini(ctx, projectID, "us-central1")
	gt.NoError(t, err)

	values, err := client.Embedding(ctx, "I walked by the ocean with Alice", 384)
	gt.NoError(t, err)
	gt.A(t, values).Length(384)
}
