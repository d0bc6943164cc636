package repository_test

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/soulthread/memoria/pkg/model"
	"github.com/soulthread/memoria/pkg/repository"
)

func setupFirestore(t *testing.T) *repository.Firestore {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	if projectID == "" || databaseID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID and TEST_FIRESTORE_DATABASE_ID must be set to run Firestore tests")
	}

	repo, err := repository.New(context.Background(), projectID, databaseID)
	gt.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	return repo
}

// randomUID isolates each test run's documents in a shared database
func randomUID() string {
	return fmt.Sprintf("test-user-%d-%d", time.Now().UnixNano(), rand.Intn(100000))
}

func TestFirestoreListVoiceEvents(t *testing.T) {
	repo := setupFirestore(t)
	ctx := context.Background()
	uid := randomUID()

	for i, ts := range []int64{1000, 3000, 2000} {
		gt.NoError(t, repo.PutVoiceEvent(ctx, &model.VoiceEvent{
			ID:        fmt.Sprintf("%s-v%d", uid, i),
			UID:       uid,
			Content:   "hello",
			Emotion:   "happy",
			CreatedAt: ts,
			People:    []string{"Alice"},
		}))
	}
	gt.NoError(t, repo.PutVoiceEvent(ctx, &model.VoiceEvent{
		ID:        uid + "-other",
		UID:       uid + "-other",
		Content:   "not mine",
		CreatedAt: 1500,
	}))

	t.Run("owner scoped and ordered", func(t *testing.T) {
		events, err := repo.ListVoiceEvents(ctx, uid, repository.EventQuery{
			OrderBy: "createdAt",
			Order:   model.SortOrderDesc,
		})
		gt.NoError(t, err)
		gt.A(t, events).Length(3)
		gt.Equal(t, events[0].CreatedAt, int64(3000))
		gt.Equal(t, events[2].CreatedAt, int64(1000))
		for _, e := range events {
			gt.Equal(t, e.UID, uid)
			gt.NotEqual(t, e.ID, "")
		}
	})

	t.Run("date range", func(t *testing.T) {
		start, end := int64(1500), int64(2500)
		events, err := repo.ListVoiceEvents(ctx, uid, repository.EventQuery{Start: &start, End: &end})
		gt.NoError(t, err)
		gt.A(t, events).Length(1)
		gt.Equal(t, events[0].CreatedAt, int64(2000))
	})
}

func TestFirestoreCountDocuments(t *testing.T) {
	repo := setupFirestore(t)
	ctx := context.Background()
	uid := randomUID()

	for i := range 2 {
		gt.NoError(t, repo.PutDreamEvent(ctx, &model.DreamEvent{
			ID:        fmt.Sprintf("%s-d%d", uid, i),
			UID:       uid,
			Content:   "ocean",
			CreatedAt: int64(1000 + i),
			Themes:    []string{"ocean"},
		}))
	}

	count, err := repo.CountDocuments(ctx, repository.CollectionDreamEvents, uid)
	gt.NoError(t, err)
	gt.Equal(t, count, 2)
}

func TestFirestoreGetPartner(t *testing.T) {
	repo := setupFirestore(t)
	ctx := context.Background()
	key := randomUID()

	gt.NoError(t, repo.PutPartner(ctx, key, &model.Partner{
		Name:        "Acme",
		LicenseTier: model.LicenseTierStandard,
		IsApproved:  true,
	}))

	partner, err := repo.GetPartner(ctx, key)
	gt.NoError(t, err)
	gt.V(t, partner).NotNil()
	gt.Equal(t, partner.ID, key)
	gt.Equal(t, partner.LicenseTier, model.LicenseTierStandard)
	gt.True(t, partner.IsApproved)

	t.Run("unknown key", func(t *testing.T) {
		partner, err := repo.GetPartner(ctx, "no-such-key-"+key)
		gt.NoError(t, err)
		gt.V(t, partner).Nil()
	})

	t.Run("key with path separator", func(t *testing.T) {
		partner, err := repo.GetPartner(ctx, "a/b")
		gt.NoError(t, err)
		gt.V(t, partner).Nil()
	})
}

func TestFirestoreRecordUsage(t *testing.T) {
	repo := setupFirestore(t)
	ctx := context.Background()

	usage := &model.Usage{
		PartnerID:   randomUID(),
		Endpoint:    "memories",
		RecordCount: 3,
		At:          time.Now(),
	}
	gt.NoError(t, repo.RecordUsage(ctx, usage))
	gt.NoError(t, repo.RecordUsage(ctx, usage))
}
