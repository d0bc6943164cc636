package repository

import (
	"context"
	"strings"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/m-mizutani/goerr/v2"
	"github.com/soulthread/memoria/pkg/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore implements Repository on Cloud Firestore
type Firestore struct {
	client *firestore.Client
}

// New creates a Firestore repository. The client is created once here and
// shared by every request.
func New(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID),
			goerr.V("database", databaseID))
	}

	return &Firestore{client: client}, nil
}

// Close releases the underlying client
func (r *Firestore) Close() error {
	return r.client.Close()
}

func (r *Firestore) eventQuery(collection, uid string, q EventQuery) firestore.Query {
	query := r.client.Collection(collection).Where("uid", "==", uid)
	if q.Start != nil {
		query = query.Where("createdAt", ">=", *q.Start)
	}
	if q.End != nil {
		query = query.Where("createdAt", "<=", *q.End)
	}
	if q.OrderBy != "" {
		dir := firestore.Desc
		if q.Order == model.SortOrderAsc {
			dir = firestore.Asc
		}
		query = query.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	return query
}

// fetchAll runs query and decodes every document into T, letting bind attach the document ID
func fetchAll[T any](ctx context.Context, query firestore.Query, collection string, bind func(*T, string)) ([]*T, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	var results []*T
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate documents", goerr.V("collection", collection))
		}

		var v T
		if err := doc.DataTo(&v); err != nil {
			return nil, goerr.Wrap(err, "failed to decode document",
				goerr.V("collection", collection),
				goerr.V("id", doc.Ref.ID))
		}
		bind(&v, doc.Ref.ID)
		results = append(results, &v)
	}

	return results, nil
}

func (r *Firestore) ListVoiceEvents(ctx context.Context, uid string, q EventQuery) ([]*model.VoiceEvent, error) {
	return fetchAll(ctx, r.eventQuery(CollectionVoiceEvents, uid, q), CollectionVoiceEvents,
		func(v *model.VoiceEvent, id string) { v.ID = id })
}

func (r *Firestore) ListDreamEvents(ctx context.Context, uid string, q EventQuery) ([]*model.DreamEvent, error) {
	return fetchAll(ctx, r.eventQuery(CollectionDreamEvents, uid, q), CollectionDreamEvents,
		func(v *model.DreamEvent, id string) { v.ID = id })
}

func (r *Firestore) ListReflections(ctx context.Context, uid string, q EventQuery) ([]*model.Reflection, error) {
	return fetchAll(ctx, r.eventQuery(CollectionReflections, uid, q), CollectionReflections,
		func(v *model.Reflection, id string) { v.ID = id })
}

func (r *Firestore) ListPeople(ctx context.Context, uid string) ([]*model.Person, error) {
	query := r.client.Collection(CollectionPeople).Where("uid", "==", uid)
	return fetchAll(ctx, query, CollectionPeople, func(v *model.Person, id string) { v.ID = id })
}

func (r *Firestore) GetUserProfile(ctx context.Context, uid string) (*model.UserProfile, error) {
	query := r.client.Collection(CollectionUsers).Where("uid", "==", uid).Limit(1)
	profiles, err := fetchAll(ctx, query, CollectionUsers, func(*model.UserProfile, string) {})
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return profiles[0], nil
}

func (r *Firestore) CountDocuments(ctx context.Context, collection, uid string) (int, error) {
	query := r.client.Collection(collection).Where("uid", "==", uid)
	result, err := query.NewAggregationQuery().WithCount("count").Get(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count documents",
			goerr.V("collection", collection),
			goerr.V("uid", uid))
	}

	v, ok := result["count"].(*firestorepb.Value)
	if !ok {
		return 0, goerr.New("unexpected count aggregation result", goerr.V("collection", collection))
	}
	return int(v.GetIntegerValue()), nil
}

func (r *Firestore) GetPartner(ctx context.Context, apiKey string) (*model.Partner, error) {
	// A key containing a path separator can never name a partnerAuth document
	if strings.Contains(apiKey, "/") {
		return nil, nil
	}

	doc, err := r.client.Collection(CollectionPartnerAuth).Doc(apiKey).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get partner")
	}

	var partner model.Partner
	if err := doc.DataTo(&partner); err != nil {
		return nil, goerr.Wrap(err, "failed to decode partner", goerr.V("id", doc.Ref.ID))
	}
	partner.ID = doc.Ref.ID
	return &partner, nil
}

func (r *Firestore) RecordUsage(ctx context.Context, usage *model.Usage) error {
	ref := r.client.Collection(CollectionAPIUsage).Doc(usage.UsageDocID())
	_, err := ref.Set(ctx, map[string]any{
		"partnerId": usage.PartnerID,
		"day":       model.DayKey(usage.At),
		"requests":  firestore.Increment(1),
		"records":   firestore.Increment(usage.RecordCount),
		"endpoints": map[string]any{
			usage.Endpoint: firestore.Increment(1),
		},
		"updatedAt": usage.At,
	}, firestore.MergeAll)
	if err != nil {
		return goerr.Wrap(err, "failed to record api usage",
			goerr.V("partner", model.KeyFingerprint(usage.PartnerID)),
			goerr.V("endpoint", usage.Endpoint))
	}
	return nil
}

func (r *Firestore) put(ctx context.Context, collection, id string, data any) error {
	if _, err := r.client.Collection(collection).Doc(id).Set(ctx, data); err != nil {
		return goerr.Wrap(err, "failed to put document",
			goerr.V("collection", collection),
			goerr.V("id", id))
	}
	return nil
}

func (r *Firestore) PutVoiceEvent(ctx context.Context, event *model.VoiceEvent) error {
	return r.put(ctx, CollectionVoiceEvents, event.ID, event)
}

func (r *Firestore) PutDreamEvent(ctx context.Context, event *model.DreamEvent) error {
	return r.put(ctx, CollectionDreamEvents, event.ID, event)
}

func (r *Firestore) PutReflection(ctx context.Context, reflection *model.Reflection) error {
	return r.put(ctx, CollectionReflections, reflection.ID, reflection)
}

func (r *Firestore) PutPartner(ctx context.Context, apiKey string, partner *model.Partner) error {
	return r.put(ctx, CollectionPartnerAuth, apiKey, partner)
}
