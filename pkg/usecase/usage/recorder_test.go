package usage_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/soulthread/memoria/pkg/model"
	"github.com/soulthread/memoria/pkg/repository"
	"github.com/soulthread/memoria/pkg/usecase/usage"
	"github.com/soulthread/memoria/pkg/utils/logging"
)

type failingStore struct{}

func (failingStore) RecordUsage(context.Context, *model.Usage) error {
	return errors.New("deadline exceeded")
}

func TestRecord(t *testing.T) {
	repo := repository.NewMemory()
	at := time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC)
	rec := usage.New(repo, usage.WithClock(func() time.Time { return at }))

	ctx := context.Background()
	rec.Record(ctx, "acme", "memories", 3)
	rec.Record(ctx, "acme", "memories", 2)
	rec.Record(ctx, "acme", "tags", 10)

	counter, ok := repo.Usage("acme_2024-03-09")
	gt.True(t, ok)
	gt.Equal(t, counter.Requests, int64(3))
	gt.Equal(t, counter.Records, int64(15))
	gt.Equal(t, counter.Endpoints["memories"], int64(2))
	gt.Equal(t, counter.Endpoints["tags"], int64(1))
}

func TestRecordFailureIsLogged(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := logging.With(context.Background(), logging.New("info", buf))

	usage.New(failingStore{}).Record(ctx, "acme", "tags", 1)
	gt.S(t, buf.String()).Contains("failed to record api usage")
}
