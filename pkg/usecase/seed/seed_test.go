package seed_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/soulthread/memoria/pkg/model"
	"github.com/soulthread/memoria/pkg/repository"
	"github.com/soulthread/memoria/pkg/usecase/memories"
	"github.com/soulthread/memoria/pkg/usecase/seed"
)

var now = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func TestMemories(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()

	result, err := seed.New(repo, seed.WithClock(clock)).Memories(ctx, "u1")
	gt.NoError(t, err)
	gt.Equal(t, *result, seed.Result{VoiceEvents: 3, DreamEvents: 2, Reflections: 1})

	uc := memories.New(repo, memories.WithClock(clock))
	out, err := uc.List(ctx, memories.ListInput{UserID: "u1"})
	gt.NoError(t, err)
	gt.Equal(t, out.Pagination.Total, 6)
	// Absolute timestamps are kept, relative ones count back from now
	gt.Equal(t, out.Data[0].ID, "u1_r1")
	gt.Equal(t, out.Data[0].CreatedAt, now.UnixMilli())
	gt.Equal(t, out.Data[5].ID, "u1_v1")
	gt.Equal(t, out.Data[5].CreatedAt, int64(1000))

	happy, err := uc.List(ctx, memories.ListInput{UserID: "u1", Emotion: "happy"})
	gt.NoError(t, err)
	gt.A(t, happy.Data).Length(2) // v1 and the reflection
	tags, err := uc.Tags(ctx, memories.TagsInput{UserID: "u1", Category: model.TagCategorySymbols})
	gt.NoError(t, err)
	gt.A(t, tags.Data).Length(2)
}

func TestMemoriesKeepUsersApart(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	s := seed.New(repo, seed.WithClock(clock))

	_, err := s.Memories(ctx, "u1")
	gt.NoError(t, err)
	_, err = s.Memories(ctx, "u2")
	gt.NoError(t, err)

	n, err := repo.CountDocuments(ctx, repository.CollectionVoiceEvents, "u2")
	gt.NoError(t, err)
	gt.Equal(t, n, 3)

	_, err = s.Memories(ctx, "")
	gt.Error(t, err)
}

func TestPartners(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()

	n, err := seed.New(repo).Partners(ctx, map[string]*model.Partner{
		"key-a": {Name: "Acme", LicenseTier: model.LicenseTierPremium, IsApproved: true},
		"key-b": {Name: "Beta", LicenseTier: model.LicenseTierTrial},
	})
	gt.NoError(t, err)
	gt.Equal(t, n, 2)

	p, err := repo.GetPartner(ctx, "key-a")
	gt.NoError(t, err)
	gt.Equal(t, p.Name, "Acme")
	gt.Equal(t, p.LicenseTier, model.LicenseTierPremium)
	gt.True(t, p.IsApproved)
}
