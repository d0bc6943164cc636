package model

type MetricType string

const (
	MetricTypeUsage     MetricType = "usage"
	MetricTypeAnalytics MetricType = "analytics"
	MetricTypeSummary   MetricType = "summary"
)

// Includes reports whether the filter m admits metric type t. An empty
// filter admits every type.
func (m MetricType) Includes(t MetricType) bool {
	return m == "" || m == t
}

func (m MetricType) Valid() bool {
	switch m {
	case "", MetricTypeUsage, MetricTypeAnalytics, MetricTypeSummary:
		return true
	}
	return false
}

type DailyUsage struct {
	Voice  int `json:"voice"`
	Dreams int `json:"dreams"`
}

// UsageMetadata covers the last 30 days. LastActive is nil when neither
// collection has activity in the window.
type UsageMetadata struct {
	TotalVoiceEvents   int                    `json:"totalVoiceEvents"`
	TotalDreamEvents   int                    `json:"totalDreamEvents"`
	ActiveInLast30Days int                    `json:"activeInLast30Days"`
	DailyAverageEvents float64                `json:"dailyAverageEvents"`
	DailyBreakdown     map[string]*DailyUsage `json:"dailyBreakdown"`
	LastActive         *int64                 `json:"lastActive"`
}

type SentimentDistribution struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

type SentimentAnalysis struct {
	Average      float64               `json:"average"`
	Distribution SentimentDistribution `json:"distribution"`
}

type SocialConnections struct {
	TotalPeople                  int     `json:"totalPeople"`
	AverageInteractionsPerPerson float64 `json:"averageInteractionsPerPerson"`
}

type DataQuality struct {
	TotalRecords         int     `json:"totalRecords"`
	RecordsWithSentiment int     `json:"recordsWithSentiment"`
	RecordsWithEmotions  int     `json:"recordsWithEmotions"`
	CompletenessScore    float64 `json:"completenessScore"`
}

type AnalyticsMetadata struct {
	SentimentAnalysis SentimentAnalysis `json:"sentimentAnalysis"`
	EmotionBreakdown  map[string]int    `json:"emotionBreakdown"`
	SocialConnections SocialConnections `json:"socialConnections"`
	DataQuality       DataQuality       `json:"dataQuality"`
}

type ProfileSummary struct {
	DisplayName        string `json:"displayName,omitempty"`
	CreatedAt          any    `json:"createdAt,omitempty"`
	IsProUser          bool   `json:"isProUser"`
	OnboardingComplete bool   `json:"onboardingComplete"`
}

type ActivitySummary struct {
	WeeklyEvents       int        `json:"weeklyEvents"`
	AverageDailyEvents float64    `json:"averageDailyEvents"`
	PrimarySourceFlow  SourceFlow `json:"primarySourceFlow"`
}

type DataExportInfo struct {
	TotalExportableRecords int      `json:"totalExportableRecords"`
	EstimatedSizeKB        int64    `json:"estimatedSizeKB"`
	SupportedFormats       []string `json:"supportedFormats"`
}

type SummaryMetadata struct {
	UserProfile     ProfileSummary  `json:"userProfile"`
	ActivitySummary ActivitySummary `json:"activitySummary"`
	DataExportInfo  DataExportInfo  `json:"dataExportInfo"`
}

type Metadata struct {
	Usage     *UsageMetadata     `json:"usage,omitempty"`
	Analytics *AnalyticsMetadata `json:"analytics,omitempty"`
	Summary   *SummaryMetadata   `json:"summary,omitempty"`
}
