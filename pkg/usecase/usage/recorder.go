package usage

import (
	"context"
	"time"

	"github.com/soulthread/memoria/pkg/model"
	"github.com/soulthread/memoria/pkg/utils/logging"
)

// Store persists daily usage counters
type Store interface {
	RecordUsage(ctx context.Context, usage *model.Usage) error
}

// Recorder attributes successful API calls to partners. Recording never
// fails the call it describes.
type Recorder struct {
	store Store
	now   func() time.Time
}

type Option func(*Recorder)

func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

func New(store Store, opts ...Option) *Recorder {
	r := &Recorder{store: store, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record adds one call of endpoint returning records items to the partner's
// counters for the current UTC day
func (r *Recorder) Record(ctx context.Context, partnerID, endpoint string, records int) {
	usage := &model.Usage{
		PartnerID:   partnerID,
		Endpoint:    endpoint,
		RecordCount: records,
		At:          r.now(),
	}

	if err := r.store.RecordUsage(ctx, usage); err != nil {
		logging.From(ctx).Warn("failed to record api usage",
			"partner", model.KeyFingerprint(partnerID),
			"endpoint", endpoint,
			"error", err)
		return
	}

	logging.From(ctx).Debug("api usage recorded",
		"partner", model.KeyFingerprint(partnerID),
		"endpoint", endpoint,
		"records", records)
}
