package memories

import (
	"context"
	"math"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/soulthread/memoria/pkg/model"
	"github.com/soulthread/memoria/pkg/repository"
	"github.com/soulthread/memoria/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

const (
	usageWindow    = 30 * 24 * time.Hour
	activityWindow = 7 * 24 * time.Hour

	// Estimated stored size per document in KB
	voiceSizeKB = 2.0
	dreamSizeKB = 1.5
)

// SupportedExportFormats is advertised in the summary. Only json and csv
// are produced by Export.
var SupportedExportFormats = []string{"json", "csv", "pdf"}

type MetadataInput struct {
	UserID string
	Type   model.MetricType
}

type MetadataMeta struct {
	UserID      string `json:"userId"`
	MetricType  string `json:"metricType"`
	GeneratedAt int64  `json:"generatedAt"`
}

type MetadataOutput struct {
	Data model.Metadata `json:"data"`
	Meta MetadataMeta   `json:"meta"`
}

// Metadata computes the requested metric sections for a user. Sections
// are computed concurrently when the type is omitted.
func (u *UseCase) Metadata(ctx context.Context, in MetadataInput) (*MetadataOutput, error) {
	if in.UserID == "" {
		return nil, model.BadRequest(msgUserIDRequired)
	}
	if !in.Type.Valid() {
		return nil, model.BadRequest("type must be one of usage, analytics, summary")
	}

	now := u.now()
	var data model.Metadata

	eg, egCtx := errgroup.WithContext(ctx)
	if in.Type.Includes(model.MetricTypeUsage) {
		eg.Go(func() error {
			v, err := u.usageMetadata(egCtx, in.UserID, now)
			data.Usage = v
			return err
		})
	}
	if in.Type.Includes(model.MetricTypeAnalytics) {
		eg.Go(func() error {
			v, err := u.analyticsMetadata(egCtx, in.UserID)
			data.Analytics = v
			return err
		})
	}
	if in.Type.Includes(model.MetricTypeSummary) {
		eg.Go(func() error {
			v, err := u.summaryMetadata(egCtx, in.UserID, now)
			data.Summary = v
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "failed to aggregate metadata",
			goerr.V("user_id", in.UserID),
			goerr.V("type", in.Type))
	}

	metricType := string(in.Type)
	if metricType == "" {
		metricType = "all"
	}

	return &MetadataOutput{
		Data: data,
		Meta: MetadataMeta{
			UserID:      in.UserID,
			MetricType:  metricType,
			GeneratedAt: now.UnixMilli(),
		},
	}, nil
}

func (u *UseCase) usageMetadata(ctx context.Context, uid string, now time.Time) (*model.UsageMetadata, error) {
	since := now.Add(-usageWindow).UnixMilli()
	q := repository.EventQuery{Start: &since}

	voice, err := u.repo.ListVoiceEvents(ctx, uid, q)
	if err != nil {
		return nil, err
	}
	dreams, err := u.repo.ListDreamEvents(ctx, uid, q)
	if err != nil {
		return nil, err
	}

	daily := make(map[string]*model.DailyUsage)
	day := func(ts int64) *model.DailyUsage {
		key := model.DayKey(time.UnixMilli(ts))
		d, ok := daily[key]
		if !ok {
			d = &model.DailyUsage{}
			daily[key] = d
		}
		return d
	}

	var lastActive *int64
	track := func(ts int64) {
		if lastActive == nil || ts > *lastActive {
			lastActive = &ts
		}
	}

	for _, v := range voice {
		day(v.CreatedAt).Voice++
		track(v.CreatedAt)
	}
	for _, d := range dreams {
		day(d.CreatedAt).Dreams++
		track(d.CreatedAt)
	}

	return &model.UsageMetadata{
		TotalVoiceEvents:   len(voice),
		TotalDreamEvents:   len(dreams),
		ActiveInLast30Days: len(daily),
		DailyAverageEvents: float64(len(voice)+len(dreams)) / float64(max(len(daily), 1)),
		DailyBreakdown:     daily,
		LastActive:         lastActive,
	}, nil
}

func (u *UseCase) analyticsMetadata(ctx context.Context, uid string) (*model.AnalyticsMetadata, error) {
	voice, err := u.repo.ListVoiceEvents(ctx, uid, repository.EventQuery{})
	if err != nil {
		return nil, err
	}
	dreams, err := u.repo.ListDreamEvents(ctx, uid, repository.EventQuery{})
	if err != nil {
		return nil, err
	}
	people, err := u.repo.ListPeople(ctx, uid)
	if err != nil {
		return nil, err
	}

	var sentiments []float64
	emotions := make(map[string]int)
	emotionCount := 0

	for _, v := range voice {
		if v.SentimentScore != nil {
			sentiments = append(sentiments, *v.SentimentScore)
		}
		if v.Emotion != "" {
			emotions[v.Emotion]++
			emotionCount++
		}
	}
	for _, d := range dreams {
		if d.SentimentScore != nil {
			sentiments = append(sentiments, *d.SentimentScore)
		}
		for _, e := range d.Emotions {
			emotions[e]++
			emotionCount++
		}
	}

	var analysis model.SentimentAnalysis
	if len(sentiments) > 0 {
		sum := 0.0
		for _, s := range sentiments {
			sum += s
			switch {
			case s > 0.1:
				analysis.Distribution.Positive++
			case s < -0.1:
				analysis.Distribution.Negative++
			default:
				analysis.Distribution.Neutral++
			}
		}
		analysis.Average = sum / float64(len(sentiments))
	}

	var interactions int64
	for _, p := range people {
		interactions += p.InteractionCount
	}

	totalRecords := len(voice) + len(dreams)

	return &model.AnalyticsMetadata{
		SentimentAnalysis: analysis,
		EmotionBreakdown:  emotions,
		SocialConnections: model.SocialConnections{
			TotalPeople:                  len(people),
			AverageInteractionsPerPerson: float64(interactions) / float64(max(len(people), 1)),
		},
		DataQuality: model.DataQuality{
			TotalRecords:         totalRecords,
			RecordsWithSentiment: len(sentiments),
			RecordsWithEmotions:  emotionCount,
			CompletenessScore:    float64(len(sentiments)+emotionCount) / float64(max(totalRecords*2, 1)),
		},
	}, nil
}

func (u *UseCase) summaryMetadata(ctx context.Context, uid string, now time.Time) (*model.SummaryMetadata, error) {
	profile, err := u.repo.GetUserProfile(ctx, uid)
	if err != nil {
		return nil, err
	}

	since := now.Add(-activityWindow).UnixMilli()
	q := repository.EventQuery{Start: &since}
	voice, err := u.repo.ListVoiceEvents(ctx, uid, q)
	if err != nil {
		return nil, err
	}
	dreams, err := u.repo.ListDreamEvents(ctx, uid, q)
	if err != nil {
		return nil, err
	}

	var summary model.SummaryMetadata
	if profile != nil {
		summary.UserProfile = model.ProfileSummary{
			DisplayName:        profile.DisplayName,
			CreatedAt:          profile.CreatedAt,
			IsProUser:          profile.IsProUser,
			OnboardingComplete: profile.OnboardingComplete,
		}
	}

	weekly := len(voice) + len(dreams)
	primary := model.SourceFlowDreamJournal
	if len(voice) > len(dreams) {
		primary = model.SourceFlowVoiceRecording
	}
	summary.ActivitySummary = model.ActivitySummary{
		WeeklyEvents:       weekly,
		AverageDailyEvents: float64(weekly) / 7,
		PrimarySourceFlow:  primary,
	}

	info, err := u.exportInfo(ctx, uid)
	if err != nil {
		return nil, err
	}
	summary.DataExportInfo = *info

	return &summary, nil
}

// exportInfo counts the exportable documents of a user. A collection that
// cannot be counted is logged and left out of the total.
func (u *UseCase) exportInfo(ctx context.Context, uid string) (*model.DataExportInfo, error) {
	counts := make(map[string]int, len(repository.ExportableCollections))
	total := 0
	for _, collection := range repository.ExportableCollections {
		n, err := u.repo.CountDocuments(ctx, collection, uid)
		if err != nil {
			logging.From(ctx).Warn("failed to count exportable documents",
				"collection", collection,
				"error", err)
			continue
		}
		counts[collection] = n
		total += n
	}

	voice, err := u.countOf(ctx, counts, repository.CollectionVoiceEvents, uid)
	if err != nil {
		return nil, err
	}
	dreams, err := u.countOf(ctx, counts, repository.CollectionDreamEvents, uid)
	if err != nil {
		return nil, err
	}

	return &model.DataExportInfo{
		TotalExportableRecords: total,
		EstimatedSizeKB:        int64(math.Round(float64(voice)*voiceSizeKB + float64(dreams)*dreamSizeKB)),
		SupportedFormats:       SupportedExportFormats,
	}, nil
}

// countOf returns a count already taken, retrying once when it was skipped
func (u *UseCase) countOf(ctx context.Context, counts map[string]int, collection, uid string) (int, error) {
	if n, ok := counts[collection]; ok {
		return n, nil
	}
	return u.repo.CountDocuments(ctx, collection, uid)
}
