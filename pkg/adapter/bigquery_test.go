package adapter_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/soulthread/memoria/pkg/adapter"
)

type testRow struct {
	ID        string `bigquery:"id"`
	Content   string `bigquery:"content"`
	CreatedAt int64  `bigquery:"created_at"`
}

func TestBigQueryInsert(t *testing.T) {
	projectID := os.Getenv("TEST_BIGQUERY_PROJECT")
	if projectID == "" {
		t.Skip("TEST_BIGQUERY_PROJECT is not set")
	}

	datasetID := os.Getenv("TEST_BIGQUERY_DATASET")
	if datasetID == "" {
		t.Skip("TEST_BIGQUERY_DATASET is not set")
	}

	table := os.Getenv("TEST_BIGQUERY_TABLE")
	if table == "" {
		t.Skip("TEST_BIGQUERY_TABLE is not set")
	}

	ctx := context.Background()
	client, err := adapter.NewBigQuery(ctx, projectID)
	gt.NoError(t, err)
	defer client.Close()

	rows := []*testRow{
		{ID: "test-1", Content: "hello", CreatedAt: time.Now().UnixMilli()},
	}
	gt.NoError(t, client.Insert(ctx, datasetID, table, rows))
}
