package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/soulthread/memoria/pkg/model"
	"github.com/soulthread/memoria/pkg/repository"
)

func TestMemoryListVoiceEvents(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()

	for _, e := range []*model.VoiceEvent{
		{ID: "v1", UID: "u1", CreatedAt: 1000},
		{ID: "v2", UID: "u1", CreatedAt: 3000},
		{ID: "v3", UID: "u2", CreatedAt: 2000},
		{ID: "v4", UID: "u1", CreatedAt: 2000},
	} {
		gt.NoError(t, repo.PutVoiceEvent(ctx, e))
	}

	testCases := map[string]struct {
		query repository.EventQuery
		ids   []string
	}{
		"insertion order without ordering": {
			query: repository.EventQuery{},
			ids:   []string{"v1", "v2", "v4"},
		},
		"descending": {
			query: repository.EventQuery{OrderBy: "createdAt", Order: model.SortOrderDesc},
			ids:   []string{"v2", "v4", "v1"},
		},
		"ascending with limit": {
			query: repository.EventQuery{OrderBy: "createdAt", Order: model.SortOrderAsc, Limit: 2},
			ids:   []string{"v1", "v4"},
		},
		"inclusive range": {
			query: repository.EventQuery{Start: ptr(int64(2000)), End: ptr(int64(3000))},
			ids:   []string{"v2", "v4"},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			events, err := repo.ListVoiceEvents(ctx, "u1", tc.query)
			gt.NoError(t, err)

			ids := make([]string, len(events))
			for i, e := range events {
				ids[i] = e.ID
			}
			gt.Equal(t, ids, tc.ids)
		})
	}
}

func TestMemoryCountDocuments(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()

	gt.NoError(t, repo.PutDreamEvent(ctx, &model.DreamEvent{ID: "d1", UID: "u1"}))
	gt.NoError(t, repo.PutDreamEvent(ctx, &model.DreamEvent{ID: "d2", UID: "u2"}))
	repo.AddDocument(repository.CollectionGoals, "u1")
	repo.AddDocument(repository.CollectionGoals, "u1")

	count, err := repo.CountDocuments(ctx, repository.CollectionDreamEvents, "u1")
	gt.NoError(t, err)
	gt.Equal(t, count, 1)

	count, err = repo.CountDocuments(ctx, repository.CollectionGoals, "u1")
	gt.NoError(t, err)
	gt.Equal(t, count, 2)

	count, err = repo.CountDocuments(ctx, repository.CollectionTasks, "u1")
	gt.NoError(t, err)
	gt.Equal(t, count, 0)
}

func TestMemoryGetPartner(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()

	gt.NoError(t, repo.PutPartner(ctx, "key-1", &model.Partner{Name: "Acme", IsApproved: true}))

	partner, err := repo.GetPartner(ctx, "key-1")
	gt.NoError(t, err)
	gt.V(t, partner).NotNil()
	gt.Equal(t, partner.ID, "key-1")
	gt.Equal(t, partner.Name, "Acme")

	partner, err = repo.GetPartner(ctx, "unknown")
	gt.NoError(t, err)
	gt.V(t, partner).Nil()
}

func TestMemoryRecordUsage(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	gt.NoError(t, repo.RecordUsage(ctx, &model.Usage{PartnerID: "p1", Endpoint: "memories", RecordCount: 2, At: at}))
	gt.NoError(t, repo.RecordUsage(ctx, &model.Usage{PartnerID: "p1", Endpoint: "tags", RecordCount: 5, At: at}))

	counter, ok := repo.Usage("p1_2024-05-01")
	gt.True(t, ok)
	gt.Equal(t, counter.Requests, int64(2))
	gt.Equal(t, counter.Records, int64(7))
	gt.Equal(t, counter.Endpoints["memories"], int64(1))
	gt.Equal(t, counter.Endpoints["tags"], int64(1))
}

func ptr[T any](v T) *T {
	return &v
}
