package memories

import (
	"context"
	"math"
	"slices"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/soulthread/memoria/pkg/model"
	"github.com/soulthread/memoria/pkg/repository"
	"golang.org/x/sync/errgroup"
)

// dreamEmotion is the associated emotion recorded for dream themes and symbols
const dreamEmotion = "dream"

type TagsInput struct {
	UserID   string
	Category model.TagCategory
}

type TagsMeta struct {
	UserID           string `json:"userId"`
	Category         string `json:"category"`
	TotalUniqueFlags int    `json:"totalUniqueFlags"`
}

type TagsOutput struct {
	Data []*model.TagAggregate `json:"data"`
	Meta TagsMeta              `json:"meta"`
}

type tagAccumulator struct {
	aggregate  *model.TagAggregate
	sentiments []float64
}

// tagIndex folds tag occurrences keyed by the tag string alone. A string
// seen under a second category merges into the first aggregate and keeps
// the first category.
type tagIndex struct {
	byTag map[string]*tagAccumulator
	order []*tagAccumulator
}

func newTagIndex() *tagIndex {
	return &tagIndex{byTag: make(map[string]*tagAccumulator)}
}

func (x *tagIndex) add(tag string, category model.TagCategory, ts int64, emotion string, sentiment *float64) {
	acc, ok := x.byTag[tag]
	if !ok {
		acc = &tagAccumulator{
			aggregate: &model.TagAggregate{
				Tag:                tag,
				Category:           category,
				FirstSeen:          ts,
				LastSeen:           ts,
				AssociatedEmotions: []string{},
			},
		}
		x.byTag[tag] = acc
		x.order = append(x.order, acc)
	}

	agg := acc.aggregate
	agg.Frequency++
	agg.FirstSeen = min(agg.FirstSeen, ts)
	agg.LastSeen = max(agg.LastSeen, ts)
	if emotion != "" && !slices.Contains(agg.AssociatedEmotions, emotion) {
		agg.AssociatedEmotions = append(agg.AssociatedEmotions, emotion)
	}
	if sentiment != nil && !math.IsNaN(*sentiment) {
		acc.sentiments = append(acc.sentiments, *sentiment)
	}
}

func (x *tagIndex) results() []*model.TagAggregate {
	out := make([]*model.TagAggregate, 0, len(x.order))
	for _, acc := range x.order {
		if len(acc.sentiments) > 0 {
			sum := 0.0
			lo, hi := acc.sentiments[0], acc.sentiments[0]
			for _, s := range acc.sentiments {
				sum += s
				lo = min(lo, s)
				hi = max(hi, s)
			}
			acc.aggregate.Sentiment = model.TagSentiment{
				Average: round3(sum / float64(len(acc.sentiments))),
				Range:   [2]float64{round3(lo), round3(hi)},
			}
		}
		out = append(out, acc.aggregate)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Frequency > out[j].Frequency
	})
	return out
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Tags aggregates the tag-bearing fields of every voice and dream document
// of a user, most frequent first
func (u *UseCase) Tags(ctx context.Context, in TagsInput) (*TagsOutput, error) {
	if in.UserID == "" {
		return nil, model.BadRequest(msgUserIDRequired)
	}
	if in.Category != "" {
		if err := in.Category.Validate(); err != nil {
			return nil, model.BadRequest("category must be one of people, tasks, emotions, themes, symbols")
		}
	}

	var (
		voice  []*model.VoiceEvent
		dreams []*model.DreamEvent
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		voice, err = u.repo.ListVoiceEvents(egCtx, in.UserID, repository.EventQuery{})
		return err
	})
	eg.Go(func() error {
		var err error
		dreams, err = u.repo.ListDreamEvents(egCtx, in.UserID, repository.EventQuery{})
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "failed to scan tagged events", goerr.V("user_id", in.UserID))
	}

	idx := newTagIndex()
	c := in.Category
	for _, v := range voice {
		if c.Includes(model.TagCategoryPeople) {
			for _, p := range v.People {
				idx.add(p, model.TagCategoryPeople, v.CreatedAt, v.Emotion, v.SentimentScore)
			}
		}
		if c.Includes(model.TagCategoryTasks) {
			for _, t := range v.Tasks {
				idx.add(t, model.TagCategoryTasks, v.CreatedAt, v.Emotion, v.SentimentScore)
			}
		}
		if v.Emotion != "" && c.Includes(model.TagCategoryEmotions) {
			idx.add(v.Emotion, model.TagCategoryEmotions, v.CreatedAt, v.Emotion, v.SentimentScore)
		}
	}

	for _, d := range dreams {
		if c.Includes(model.TagCategoryThemes) {
			for _, t := range d.Themes {
				idx.add(t, model.TagCategoryThemes, d.CreatedAt, dreamEmotion, d.SentimentScore)
			}
		}
		if c.Includes(model.TagCategorySymbols) {
			for _, s := range d.Symbols {
				idx.add(s, model.TagCategorySymbols, d.CreatedAt, dreamEmotion, d.SentimentScore)
			}
		}
		if c.Includes(model.TagCategoryEmotions) {
			for _, e := range d.Emotions {
				idx.add(e, model.TagCategoryEmotions, d.CreatedAt, e, d.SentimentScore)
			}
		}
	}

	data := idx.results()
	category := string(in.Category)
	if category == "" {
		category = "all"
	}

	return &TagsOutput{
		Data: data,
		Meta: TagsMeta{
			UserID:           in.UserID,
			Category:         category,
			TotalUniqueFlags: len(data),
		},
	}, nil
}
