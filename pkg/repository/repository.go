package repository

import (
	"context"

	"github.com/soulthread/memoria/pkg/model"
)

const (
	CollectionVoiceEvents = "voiceEvents"
	CollectionDreamEvents = "dreamEvents"
	CollectionReflections = "innerVoiceReflections"
	CollectionPeople      = "people"
	CollectionUsers       = "users"
	CollectionGoals       = "goals"
	CollectionTasks       = "tasks"
	CollectionPartnerAuth = "partnerAuth"
	CollectionAPIUsage    = "apiUsage"
)

// ExportableCollections are the per-user collections counted as exportable records
var ExportableCollections = []string{
	CollectionVoiceEvents,
	CollectionDreamEvents,
	CollectionReflections,
	CollectionPeople,
	CollectionGoals,
	CollectionTasks,
}

// EventQuery narrows an owner-scoped event query. Nil bounds and empty
// OrderBy are not applied; Limit 0 means unlimited.
type EventQuery struct {
	Start   *int64
	End     *int64
	OrderBy string
	Order   model.SortOrder
	Limit   int
}

// Repository defines the document store access used by the read API.
// Every list operation is scoped by the owner's uid at query time.
type Repository interface {
	// ListVoiceEvents retrieves voiceEvents documents owned by uid
	ListVoiceEvents(ctx context.Context, uid string, q EventQuery) ([]*model.VoiceEvent, error)

	// ListDreamEvents retrieves dreamEvents documents owned by uid
	ListDreamEvents(ctx context.Context, uid string, q EventQuery) ([]*model.DreamEvent, error)

	// ListReflections retrieves innerVoiceReflections documents owned by uid
	ListReflections(ctx context.Context, uid string, q EventQuery) ([]*model.Reflection, error)

	// ListPeople retrieves people documents owned by uid
	ListPeople(ctx context.Context, uid string) ([]*model.Person, error)

	// GetUserProfile returns the first users document for uid, or nil if there is none
	GetUserProfile(ctx context.Context, uid string) (*model.UserProfile, error)

	// CountDocuments counts the documents of a collection owned by uid
	CountDocuments(ctx context.Context, collection, uid string) (int, error)

	// GetPartner looks up a partner by API key, returning nil if the key is unknown
	GetPartner(ctx context.Context, apiKey string) (*model.Partner, error)

	// RecordUsage adds one request to the partner's daily usage counters
	RecordUsage(ctx context.Context, usage *model.Usage) error

	// PutVoiceEvent saves a voice event
	PutVoiceEvent(ctx context.Context, event *model.VoiceEvent) error

	// PutDreamEvent saves a dream event
	PutDreamEvent(ctx context.Context, event *model.DreamEvent) error

	// PutReflection saves an inner voice reflection
	PutReflection(ctx context.Context, reflection *model.Reflection) error

	// PutPartner saves a partner under its API key
	PutPartner(ctx context.Context, apiKey string, partner *model.Partner) error
}
