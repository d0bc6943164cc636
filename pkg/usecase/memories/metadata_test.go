package memories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/soulthread/memoria/pkg/model"
	"github.com/soulthread/memoria/pkg/repository"
	"github.com/soulthread/memoria/pkg/usecase/memories"
)

var fixedNow = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func daysAgo(d int) int64 {
	return fixedNow.Add(-time.Duration(d) * 24 * time.Hour).UnixMilli()
}

func seedActivity(t *testing.T) *repository.Memory {
	t.Helper()
	ctx := context.Background()
	repo := repository.NewMemory()

	for _, e := range []*model.VoiceEvent{
		{ID: "v1", UID: "u1", CreatedAt: daysAgo(1), Emotion: "happy", SentimentScore: ptr(0.5)},
		{ID: "v2", UID: "u1", CreatedAt: daysAgo(1), Emotion: "sad", SentimentScore: ptr(-0.4)},
		{ID: "v3", UID: "u1", CreatedAt: daysAgo(10), SentimentScore: ptr(0.05)},
		{ID: "v4", UID: "u1", CreatedAt: daysAgo(45), Emotion: "happy"},
	} {
		gt.NoError(t, repo.PutVoiceEvent(ctx, e))
	}
	gt.NoError(t, repo.PutDreamEvent(ctx, &model.DreamEvent{
		ID: "d1", UID: "u1", CreatedAt: daysAgo(2), Emotions: []string{"calm", "happy"},
	}))

	repo.PutPerson(&model.Person{ID: "p1", UID: "u1", Name: "Alice", InteractionCount: 4})
	repo.PutPerson(&model.Person{ID: "p2", UID: "u1", Name: "Bob", InteractionCount: 1})
	repo.PutUserProfile(&model.UserProfile{UID: "u1", DisplayName: "Dana", IsProUser: true})
	repo.AddDocument(repository.CollectionGoals, "u1")
	return repo
}

func TestMetadataUsage(t *testing.T) {
	uc := memories.New(seedActivity(t), memories.WithClock(fixedClock))

	out, err := uc.Metadata(context.Background(), memories.MetadataInput{UserID: "u1", Type: model.MetricTypeUsage})
	gt.NoError(t, err)
	gt.V(t, out.Data.Analytics).Nil()
	gt.V(t, out.Data.Summary).Nil()
	gt.Equal(t, out.Meta, memories.MetadataMeta{UserID: "u1", MetricType: "usage", GeneratedAt: fixedNow.UnixMilli()})

	usage := out.Data.Usage
	gt.V(t, usage).NotNil()
	gt.Equal(t, usage.TotalVoiceEvents, 3)
	gt.Equal(t, usage.TotalDreamEvents, 1)
	gt.Equal(t, usage.ActiveInLast30Days, 3)
	gt.Equal(t, usage.DailyAverageEvents, 4.0/3.0)
	gt.Equal(t, *usage.DailyBreakdown["2024-06-29"], model.DailyUsage{Voice: 2})
	gt.Equal(t, *usage.DailyBreakdown["2024-06-28"], model.DailyUsage{Dreams: 1})
	gt.Equal(t, *usage.LastActive, daysAgo(1))
}

func TestMetadataUsageWithoutActivity(t *testing.T) {
	uc := memories.New(repository.NewMemory(), memories.WithClock(fixedClock))

	out, err := uc.Metadata(context.Background(), memories.MetadataInput{UserID: "u1", Type: model.MetricTypeUsage})
	gt.NoError(t, err)
	gt.V(t, out.Data.Usage.LastActive).Nil()
	gt.Equal(t, out.Data.Usage.DailyAverageEvents, 0.0)
	gt.Equal(t, out.Data.Usage.ActiveInLast30Days, 0)
}

func TestMetadataAnalytics(t *testing.T) {
	uc := memories.New(seedActivity(t), memories.WithClock(fixedClock))

	out, err := uc.Metadata(context.Background(), memories.MetadataInput{UserID: "u1", Type: model.MetricTypeAnalytics})
	gt.NoError(t, err)

	a := out.Data.Analytics
	gt.V(t, a).NotNil()
	gt.True(t, a.SentimentAnalysis.Average > 0.0499 && a.SentimentAnalysis.Average < 0.0501)
	gt.Equal(t, a.SentimentAnalysis.Distribution, model.SentimentDistribution{Positive: 1, Neutral: 1, Negative: 1})
	gt.Equal(t, a.EmotionBreakdown, map[string]int{"happy": 3, "sad": 1, "calm": 1})
	gt.Equal(t, a.SocialConnections, model.SocialConnections{TotalPeople: 2, AverageInteractionsPerPerson: 2.5})
	gt.Equal(t, a.DataQuality.TotalRecords, 5)
	gt.Equal(t, a.DataQuality.RecordsWithSentiment, 3)
	gt.Equal(t, a.DataQuality.RecordsWithEmotions, 5)
	gt.Equal(t, a.DataQuality.CompletenessScore, 0.8)
}

func TestMetadataSummary(t *testing.T) {
	uc := memories.New(seedActivity(t), memories.WithClock(fixedClock))

	out, err := uc.Metadata(context.Background(), memories.MetadataInput{UserID: "u1", Type: model.MetricTypeSummary})
	gt.NoError(t, err)

	s := out.Data.Summary
	gt.V(t, s).NotNil()
	gt.Equal(t, s.UserProfile.DisplayName, "Dana")
	gt.True(t, s.UserProfile.IsProUser)
	gt.False(t, s.UserProfile.OnboardingComplete)
	gt.Equal(t, s.ActivitySummary.WeeklyEvents, 3)
	gt.Equal(t, s.ActivitySummary.AverageDailyEvents, 3.0/7.0)
	gt.Equal(t, s.ActivitySummary.PrimarySourceFlow, model.SourceFlowVoiceRecording)
	// 4 voice + 1 dream + 2 people + 1 goal
	gt.Equal(t, s.DataExportInfo.TotalExportableRecords, 8)
	// round(4*2 + 1*1.5)
	gt.Equal(t, s.DataExportInfo.EstimatedSizeKB, int64(10))
	gt.Equal(t, s.DataExportInfo.SupportedFormats, []string{"json", "csv", "pdf"})
}

func TestMetadataSummaryPrimaryFlowTie(t *testing.T) {
	uc := memories.New(repository.NewMemory(), memories.WithClock(fixedClock))

	out, err := uc.Metadata(context.Background(), memories.MetadataInput{UserID: "nobody", Type: model.MetricTypeSummary})
	gt.NoError(t, err)
	gt.Equal(t, out.Data.Summary.ActivitySummary.PrimarySourceFlow, model.SourceFlowDreamJournal)
	gt.Equal(t, out.Data.Summary.UserProfile, model.ProfileSummary{})
}

// brokenGoals fails counting of the goals collection only
type brokenGoals struct {
	repository.Repository
}

func (r brokenGoals) CountDocuments(ctx context.Context, collection, uid string) (int, error) {
	if collection == repository.CollectionGoals {
		return 0, errors.New("missing index")
	}
	return r.Repository.CountDocuments(ctx, collection, uid)
}

func TestMetadataSummarySkipsUncountableCollection(t *testing.T) {
	uc := memories.New(brokenGoals{Repository: seedActivity(t)}, memories.WithClock(fixedClock))

	out, err := uc.Metadata(context.Background(), memories.MetadataInput{UserID: "u1", Type: model.MetricTypeSummary})
	gt.NoError(t, err)
	gt.Equal(t, out.Data.Summary.DataExportInfo.TotalExportableRecords, 7)
}

func TestMetadataAll(t *testing.T) {
	uc := memories.New(seedActivity(t), memories.WithClock(fixedClock))

	out, err := uc.Metadata(context.Background(), memories.MetadataInput{UserID: "u1"})
	gt.NoError(t, err)
	gt.Equal(t, out.Meta.MetricType, "all")
	gt.V(t, out.Data.Usage).NotNil()
	gt.V(t, out.Data.Analytics).NotNil()
	gt.V(t, out.Data.Summary).NotNil()
}

func TestMetadataValidation(t *testing.T) {
	uc := memories.New(repository.NewMemory())

	_, err := uc.Metadata(context.Background(), memories.MetadataInput{UserID: "u1", Type: "weekly"})
	reqErr, ok := model.AsRequestError(err)
	gt.True(t, ok)
	gt.Equal(t, reqErr.Message, "type must be one of usage, analytics, summary")

	_, err = uc.Metadata(context.Background(), memories.MetadataInput{})
	reqErr, ok = model.AsRequestError(err)
	gt.True(t, ok)
	gt.Equal(t, reqErr.Message, "userId parameter is required")
}
