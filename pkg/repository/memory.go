package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/soulthread/memoria/pkg/model"
)

// UsageCounter mirrors one apiUsage document
type UsageCounter struct {
	PartnerID string
	Day       string
	Requests  int64
	Records   int64
	Endpoints map[string]int64
}

// Memory implements Repository in process. It honours the same owner and
// range predicates as Firestore; ordering is only applied for createdAt.
type Memory struct {
	mu          sync.RWMutex
	voice       []*model.VoiceEvent
	dreams      []*model.DreamEvent
	reflections []*model.Reflection
	people      []*model.Person
	users       []*model.UserProfile
	others      map[string][]string
	partners    map[string]*model.Partner
	usage       map[string]*UsageCounter
}

// NewMemory creates an empty in-memory repository
func NewMemory() *Memory {
	return &Memory{
		others:   make(map[string][]string),
		partners: make(map[string]*model.Partner),
		usage:    make(map[string]*UsageCounter),
	}
}

func selectEvents[T any](src []*T, uid string, q EventQuery, owner func(*T) string, ts func(*T) int64) []*T {
	var out []*T
	for _, e := range src {
		if owner(e) != uid {
			continue
		}
		if q.Start != nil && ts(e) < *q.Start {
			continue
		}
		if q.End != nil && ts(e) > *q.End {
			continue
		}
		v := *e
		out = append(out, &v)
	}

	if q.OrderBy == "createdAt" {
		slices.SortStableFunc(out, func(a, b *T) int {
			if q.Order == model.SortOrderAsc {
				return compareInt64(ts(a), ts(b))
			}
			return compareInt64(ts(b), ts(a))
		})
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (m *Memory) ListVoiceEvents(ctx context.Context, uid string, q EventQuery) ([]*model.VoiceEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return selectEvents(m.voice, uid, q,
		func(v *model.VoiceEvent) string { return v.UID },
		func(v *model.VoiceEvent) int64 { return v.CreatedAt }), nil
}

func (m *Memory) ListDreamEvents(ctx context.Context, uid string, q EventQuery) ([]*model.DreamEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return selectEvents(m.dreams, uid, q,
		func(v *model.DreamEvent) string { return v.UID },
		func(v *model.DreamEvent) int64 { return v.CreatedAt }), nil
}

func (m *Memory) ListReflections(ctx context.Context, uid string, q EventQuery) ([]*model.Reflection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return selectEvents(m.reflections, uid, q,
		func(v *model.Reflection) string { return v.UID },
		func(v *model.Reflection) int64 { return v.CreatedAt }), nil
}

func (m *Memory) ListPeople(ctx context.Context, uid string) ([]*model.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*model.Person
	for _, p := range m.people {
		if p.UID == uid {
			v := *p
			out = append(out, &v)
		}
	}
	return out, nil
}

func (m *Memory) GetUserProfile(ctx context.Context, uid string) (*model.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.UID == uid {
			v := *u
			return &v, nil
		}
	}
	return nil, nil
}

func (m *Memory) CountDocuments(ctx context.Context, collection, uid string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := func(n int, match func(i int) bool) int {
		total := 0
		for i := range n {
			if match(i) {
				total++
			}
		}
		return total
	}

	switch collection {
	case CollectionVoiceEvents:
		return count(len(m.voice), func(i int) bool { return m.voice[i].UID == uid }), nil
	case CollectionDreamEvents:
		return count(len(m.dreams), func(i int) bool { return m.dreams[i].UID == uid }), nil
	case CollectionReflections:
		return count(len(m.reflections), func(i int) bool { return m.reflections[i].UID == uid }), nil
	case CollectionPeople:
		return count(len(m.people), func(i int) bool { return m.people[i].UID == uid }), nil
	case CollectionUsers:
		return count(len(m.users), func(i int) bool { return m.users[i].UID == uid }), nil
	default:
		owners := m.others[collection]
		return count(len(owners), func(i int) bool { return owners[i] == uid }), nil
	}
}

func (m *Memory) GetPartner(ctx context.Context, apiKey string) (*model.Partner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.partners[apiKey]
	if !ok {
		return nil, nil
	}
	v := *p
	v.ID = apiKey
	return &v, nil
}

func (m *Memory) RecordUsage(ctx context.Context, usage *model.Usage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := usage.UsageDocID()
	counter, ok := m.usage[id]
	if !ok {
		counter = &UsageCounter{
			PartnerID: usage.PartnerID,
			Day:       model.DayKey(usage.At),
			Endpoints: make(map[string]int64),
		}
		m.usage[id] = counter
	}
	counter.Requests++
	counter.Records += int64(usage.RecordCount)
	counter.Endpoints[usage.Endpoint]++
	return nil
}

// Usage returns a copy of the usage counter stored under an apiUsage document id
func (m *Memory) Usage(docID string) (UsageCounter, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counter, ok := m.usage[docID]
	if !ok {
		return UsageCounter{}, false
	}
	v := *counter
	v.Endpoints = make(map[string]int64, len(counter.Endpoints))
	for k, n := range counter.Endpoints {
		v.Endpoints[k] = n
	}
	return v, true
}

func (m *Memory) PutVoiceEvent(ctx context.Context, event *model.VoiceEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := *event
	m.voice = append(m.voice, &v)
	return nil
}

func (m *Memory) PutDreamEvent(ctx context.Context, event *model.DreamEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := *event
	m.dreams = append(m.dreams, &v)
	return nil
}

func (m *Memory) PutReflection(ctx context.Context, reflection *model.Reflection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := *reflection
	m.reflections = append(m.reflections, &v)
	return nil
}

func (m *Memory) PutPartner(ctx context.Context, apiKey string, partner *model.Partner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := *partner
	m.partners[apiKey] = &v
	return nil
}

// PutPerson saves a people document
func (m *Memory) PutPerson(person *model.Person) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := *person
	m.people = append(m.people, &v)
}

// PutUserProfile saves a users document
func (m *Memory) PutUserProfile(profile *model.UserProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := *profile
	m.users = append(m.users, &v)
}

// AddDocument records a document of a collection that is only ever counted
func (m *Memory) AddDocument(collection, uid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.others[collection] = append(m.others[collection], uid)
}
