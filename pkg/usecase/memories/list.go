package memories

import (
	"context"
	"sort"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/soulthread/memoria/pkg/model"
	"github.com/soulthread/memoria/pkg/repository"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 50
	MaxPageSize     = 100
	DefaultSortBy   = "createdAt"
)

// IncludedCollections are the source collections merged into one memory list
var IncludedCollections = []string{
	repository.CollectionVoiceEvents,
	repository.CollectionDreamEvents,
	repository.CollectionReflections,
}

// ListInput holds the memory list query. Zero values take the defaults.
type ListInput struct {
	UserID    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder model.SortOrder
	StartDate *int64
	EndDate   *int64
	Tags      []string
	Emotion   string
}

type Pagination struct {
	Page     int  `json:"page"`
	PageSize int  `json:"pageSize"`
	Total    int  `json:"total"`
	HasNext  bool `json:"hasNext"`
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type ListFilters struct {
	DateRange *DateRange `json:"dateRange"`
	Tags      []string   `json:"tags"`
	Emotion   *string    `json:"emotion"`
}

type ListMeta struct {
	IncludedCollections []string    `json:"includedCollections"`
	Filters             ListFilters `json:"filters"`
}

type ListOutput struct {
	Data       []*model.MemoryRecord `json:"data"`
	Pagination Pagination            `json:"pagination"`
	Meta       ListMeta              `json:"meta"`
}

func (in *ListInput) normalize() error {
	if in.UserID == "" {
		return model.BadRequest(msgUserIDRequired)
	}

	switch {
	case in.PageSize > MaxPageSize:
		return model.BadRequest("pageSize cannot exceed 100")
	case in.PageSize < 0:
		return model.BadRequest("pageSize must be at least 1")
	case in.PageSize == 0:
		in.PageSize = DefaultPageSize
	}

	switch {
	case in.Page < 0:
		return model.BadRequest("page must be at least 1")
	case in.Page == 0:
		in.Page = DefaultPage
	}

	if in.SortBy == "" {
		in.SortBy = DefaultSortBy
	}
	if in.SortOrder == "" {
		in.SortOrder = model.SortOrderDesc
	}
	if !in.SortOrder.Valid() {
		return model.BadRequest("sortOrder must be asc or desc")
	}

	return nil
}

// List merges voice, dream and reflection documents of one user, filters
// and sorts them by createdAt, and returns the requested page
func (u *UseCase) List(ctx context.Context, in ListInput) (*ListOutput, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	records, err := u.collect(ctx, in)
	if err != nil {
		return nil, err
	}

	total := len(records)
	page := make([]*model.MemoryRecord, 0, min(in.PageSize, total))
	hasNext := false
	// Pages past the last record are compared before multiplying so that a
	// huge page number cannot overflow the offset
	if in.Page-1 < (total+in.PageSize-1)/in.PageSize {
		start := (in.Page - 1) * in.PageSize
		end := min(start+in.PageSize, total)
		page = append(page, records[start:end]...)
		hasNext = end < total
	}

	filters := ListFilters{}
	if in.StartDate != nil && in.EndDate != nil {
		filters.DateRange = &DateRange{
			Start: strconv.FormatInt(*in.StartDate, 10),
			End:   strconv.FormatInt(*in.EndDate, 10),
		}
	}
	if len(in.Tags) > 0 {
		filters.Tags = in.Tags
	}
	if in.Emotion != "" {
		emotion := in.Emotion
		filters.Emotion = &emotion
	}

	return &ListOutput{
		Data: page,
		Pagination: Pagination{
			Page:     in.Page,
			PageSize: in.PageSize,
			Total:    total,
			HasNext:  hasNext,
		},
		Meta: ListMeta{
			IncludedCollections: IncludedCollections,
			Filters:             filters,
		},
	}, nil
}

// collect queries the three collections concurrently and returns every
// surviving record sorted by createdAt in the requested order
func (u *UseCase) collect(ctx context.Context, in ListInput) ([]*model.MemoryRecord, error) {
	q := repository.EventQuery{
		Start:   in.StartDate,
		End:     in.EndDate,
		OrderBy: in.SortBy,
		Order:   in.SortOrder,
	}

	var (
		voice       []*model.VoiceEvent
		dreams      []*model.DreamEvent
		reflections []*model.Reflection
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		voice, err = u.repo.ListVoiceEvents(egCtx, in.UserID, q)
		return err
	})
	eg.Go(func() error {
		var err error
		dreams, err = u.repo.ListDreamEvents(egCtx, in.UserID, q)
		return err
	})
	eg.Go(func() error {
		var err error
		reflections, err = u.repo.ListReflections(egCtx, in.UserID, q)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "failed to query memories", goerr.V("user_id", in.UserID))
	}

	events := make([]model.Event, 0, len(voice)+len(dreams)+len(reflections))
	for _, e := range voice {
		events = append(events, e)
	}
	for _, e := range dreams {
		events = append(events, e)
	}
	for _, e := range reflections {
		events = append(events, e)
	}

	records := make([]*model.MemoryRecord, 0, len(events))
	for _, e := range events {
		if in.Emotion != "" && !e.MatchEmotion(in.Emotion) {
			continue
		}
		if len(in.Tags) > 0 && !e.MatchTags(in.Tags) {
			continue
		}
		records = append(records, e.ToMemory())
	}

	// The merged order only honours createdAt, whatever sortBy was requested
	sort.SliceStable(records, func(i, j int) bool {
		if in.SortOrder == model.SortOrderAsc {
			return records[i].CreatedAt < records[j].CreatedAt
		}
		return records[i].CreatedAt > records[j].CreatedAt
	})

	return records, nil
}
