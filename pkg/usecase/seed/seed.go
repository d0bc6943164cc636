package seed

import (
	"context"
	_ "embed"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/soulthread/memoria/pkg/model"
	"github.com/soulthread/memoria/pkg/utils/logging"
	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demoYAML []byte

// Store is the write side of the document store
type Store interface {
	PutVoiceEvent(ctx context.Context, event *model.VoiceEvent) error
	PutDreamEvent(ctx context.Context, event *model.DreamEvent) error
	PutReflection(ctx context.Context, reflection *model.Reflection) error
	PutPartner(ctx context.Context, apiKey string, partner *model.Partner) error
}

type when struct {
	CreatedAt *int64 `yaml:"createdAt"`
	DaysAgo   *int   `yaml:"daysAgo"`
}

func (w when) at(now time.Time) int64 {
	if w.CreatedAt != nil {
		return *w.CreatedAt
	}
	days := 0
	if w.DaysAgo != nil {
		days = *w.DaysAgo
	}
	return now.AddDate(0, 0, -days).UnixMilli()
}

type fixture struct {
	VoiceEvents []struct {
		when `yaml:",inline"`

		ID             string   `yaml:"id"`
		Text           string   `yaml:"text"`
		Emotion        string   `yaml:"emotion"`
		SentimentScore *float64 `yaml:"sentimentScore"`
		People         []string `yaml:"people"`
		Tasks          []string `yaml:"tasks"`
	} `yaml:"voiceEvents"`

	DreamEvents []struct {
		when `yaml:",inline"`

		ID             string   `yaml:"id"`
		Text           string   `yaml:"text"`
		Emotions       []string `yaml:"emotions"`
		SentimentScore *float64 `yaml:"sentimentScore"`
		Themes         []string `yaml:"themes"`
		Symbols        []string `yaml:"symbols"`
	} `yaml:"dreamEvents"`

	Reflections []struct {
		when `yaml:",inline"`

		ID             string   `yaml:"id"`
		Text           string   `yaml:"text"`
		SentimentScore *float64 `yaml:"sentimentScore"`
	} `yaml:"reflections"`
}

// Result counts the documents written by Memories
type Result struct {
	VoiceEvents int
	DreamEvents int
	Reflections int
}

// Seeder writes demo data for local runs and demos
type Seeder struct {
	store Store
	now   func() time.Time
}

type Option func(*Seeder)

func WithClock(now func() time.Time) Option {
	return func(s *Seeder) {
		s.now = now
	}
}

func New(store Store, opts ...Option) *Seeder {
	s := &Seeder{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// docID keeps fixture documents of different users apart
func docID(uid, id string) string {
	return uid + "_" + id
}

// Memories writes the demo voice events, dream events and reflections for uid
func (s *Seeder) Memories(ctx context.Context, uid string) (*Result, error) {
	if uid == "" {
		return nil, goerr.New("user id is required")
	}

	var fx fixture
	if err := yaml.Unmarshal(demoYAML, &fx); err != nil {
		return nil, goerr.Wrap(err, "failed to parse demo fixture")
	}

	now := s.now()
	var result Result

	for _, v := range fx.VoiceEvents {
		if err := s.store.PutVoiceEvent(ctx, &model.VoiceEvent{
			ID:             docID(uid, v.ID),
			UID:            uid,
			Content:        v.Text,
			Emotion:        v.Emotion,
			SentimentScore: v.SentimentScore,
			CreatedAt:      v.at(now),
			People:         v.People,
			Tasks:          v.Tasks,
		}); err != nil {
			return nil, goerr.Wrap(err, "failed to seed voice event", goerr.V("id", v.ID))
		}
		result.VoiceEvents++
	}

	for _, d := range fx.DreamEvents {
		if err := s.store.PutDreamEvent(ctx, &model.DreamEvent{
			ID:             docID(uid, d.ID),
			UID:            uid,
			Content:        d.Text,
			Emotions:       d.Emotions,
			SentimentScore: d.SentimentScore,
			CreatedAt:      d.at(now),
			Themes:         d.Themes,
			Symbols:        d.Symbols,
		}); err != nil {
			return nil, goerr.Wrap(err, "failed to seed dream event", goerr.V("id", d.ID))
		}
		result.DreamEvents++
	}

	for _, r := range fx.Reflections {
		if err := s.store.PutReflection(ctx, &model.Reflection{
			ID:             docID(uid, r.ID),
			UID:            uid,
			Content:        r.Text,
			SentimentScore: r.SentimentScore,
			CreatedAt:      r.at(now),
		}); err != nil {
			return nil, goerr.Wrap(err, "failed to seed reflection", goerr.V("id", r.ID))
		}
		result.Reflections++
	}

	logging.From(ctx).Info("demo memories seeded",
		"user_id", uid,
		"voice_events", result.VoiceEvents,
		"dream_events", result.DreamEvents,
		"reflections", result.Reflections)
	return &result, nil
}

// Partners writes partner documents keyed by API key, in key order
func (s *Seeder) Partners(ctx context.Context, partners map[string]*model.Partner) (int, error) {
	keys := make([]string, 0, len(partners))
	for key := range partners {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := s.store.PutPartner(ctx, key, partners[key]); err != nil {
			return 0, goerr.Wrap(err, "failed to seed partner", goerr.V("name", partners[key].Name))
		}
	}

	logging.From(ctx).Info("partners seeded", "count", len(keys))
	return len(keys), nil
}
