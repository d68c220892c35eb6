package service_test

import (
	"context"
	"maps"
	"slices"
	"sort"

	"github.com/pkordes/event-catalog/internal/cache"
	"github.com/pkordes/event-catalog/internal/domain"
	"github.com/pkordes/event-catalog/internal/query"
	"github.com/pkordes/event-catalog/internal/repo"
)

// fakeStore is a hand-written, in-memory repo.Store. WithTx snapshots the
// state and restores it when fn fails, which is all the rollback the service
// tests need. Find cannot evaluate SQL, so it records what it was given and
// returns the events produced by find (all events by default).
type fakeStore struct {
	state *memState

	commits   int
	rollbacks int

	find      func(where query.Conjunction, orderBy []string) []domain.Event
	findCalls int
	lastWhere query.Conjunction
	lastOrder []string

	tagErr  error // returned by every TagRepo.GetByName call when set
	linkErr error // returned by ReplaceTags when set

	afterDistinct func() // runs after DistinctClubs has read the state
}

type memState struct {
	events map[int64]domain.Event
	links  map[int64][]int64
	tags   map[string]domain.Tag
	users  map[int64]bool
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{state: &memState{
		events: map[int64]domain.Event{},
		links:  map[int64][]int64{},
		tags:   map[string]domain.Tag{},
		users:  map[int64]bool{},
	}}
}

func (f *fakeStore) withUser(id int64) *fakeStore {
	f.state.users[id] = true
	return f
}

func (f *fakeStore) withTag(id int64, name string) *fakeStore {
	f.state.tags[name] = domain.Tag{ID: id, Name: name}
	return f
}

func (s *memState) clone() *memState {
	c := &memState{
		events: maps.Clone(s.events),
		links:  map[int64][]int64{},
		tags:   maps.Clone(s.tags),
		users:  maps.Clone(s.users),
		nextID: s.nextID,
	}
	for k, v := range s.links {
		c.links[k] = slices.Clone(v)
	}
	return c
}

func (f *fakeStore) Repos() repo.Repos {
	return repo.Repos{
		Events: &fakeEventRepo{f: f},
		Tags:   &fakeTagRepo{f: f},
		Users:  &fakeUserRepo{f: f},
	}
}

func (f *fakeStore) WithTx(_ context.Context, fn func(repo.Repos) error) error {
	snapshot := f.state.clone()
	committed := false
	defer func() {
		if !committed {
			f.state = snapshot
			f.rollbacks++
		}
	}()

	if err := fn(f.Repos()); err != nil {
		return err
	}
	committed = true
	f.commits++
	return nil
}

var _ repo.Store = (*fakeStore)(nil)

// ---- repos -----------------------------------------------------------------

type fakeEventRepo struct{ f *fakeStore }

func (r *fakeEventRepo) withTags(e domain.Event) domain.Event {
	e.Tags = []domain.Tag{}
	for _, id := range r.f.state.links[e.ID] {
		for _, t := range r.f.state.tags {
			if t.ID == id {
				e.Tags = append(e.Tags, t)
			}
		}
	}
	sort.Slice(e.Tags, func(i, j int) bool { return e.Tags[i].Name < e.Tags[j].Name })
	return e
}

func (r *fakeEventRepo) all(keep func(domain.Event) bool) []domain.Event {
	ids := slices.Sorted(maps.Keys(r.f.state.events))
	var out []domain.Event
	for _, id := range ids {
		e := r.f.state.events[id]
		if keep == nil || keep(e) {
			out = append(out, r.withTags(e))
		}
	}
	return out
}

func (r *fakeEventRepo) GetByID(_ context.Context, id int64) (domain.Event, error) {
	e, ok := r.f.state.events[id]
	if !ok {
		return domain.Event{}, domain.ErrNotFound
	}
	return r.withTags(e), nil
}

func (r *fakeEventRepo) Find(_ context.Context, where query.Conjunction, orderBy []string) ([]domain.Event, error) {
	r.f.findCalls++
	r.f.lastWhere, r.f.lastOrder = where, orderBy
	if r.f.find != nil {
		return r.f.find(where, orderBy), nil
	}
	return r.all(nil), nil
}

func (r *fakeEventRepo) List(context.Context) ([]domain.Event, error) {
	return r.all(nil), nil
}

func (r *fakeEventRepo) ListByAuthor(_ context.Context, authorID int64) ([]domain.Event, error) {
	return r.all(func(e domain.Event) bool { return e.AuthorID == authorID }), nil
}

func (r *fakeEventRepo) ListByTag(_ context.Context, tagID int64) ([]domain.Event, error) {
	return r.all(func(e domain.Event) bool {
		return slices.Contains(r.f.state.links[e.ID], tagID)
	}), nil
}

func (r *fakeEventRepo) Insert(_ context.Context, e domain.Event) (int64, error) {
	r.f.state.nextID++
	e.ID = r.f.state.nextID
	e.Tags = nil
	r.f.state.events[e.ID] = e
	return e.ID, nil
}

func (r *fakeEventRepo) Update(_ context.Context, e domain.Event) error {
	if _, ok := r.f.state.events[e.ID]; !ok {
		return domain.ErrNotFound
	}
	e.Tags = nil
	r.f.state.events[e.ID] = e
	return nil
}

func (r *fakeEventRepo) SetImage(_ context.Context, id int64, image []byte) error {
	e, ok := r.f.state.events[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Image = image
	r.f.state.events[id] = e
	return nil
}

func (r *fakeEventRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.f.state.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.f.state.events, id)
	delete(r.f.state.links, id)
	return nil
}

func (r *fakeEventRepo) ReplaceTags(_ context.Context, eventID int64, tagIDs []int64) error {
	if r.f.linkErr != nil {
		return r.f.linkErr
	}
	r.f.state.links[eventID] = slices.Clone(tagIDs)
	return nil
}

func (r *fakeEventRepo) DistinctLocations(context.Context) ([]string, error) {
	return r.distinct(func(e domain.Event) string { return e.Location }), nil
}

func (r *fakeEventRepo) DistinctClubs(context.Context) ([]string, error) {
	out := r.distinct(func(e domain.Event) string { return e.Club })
	if hook := r.f.afterDistinct; hook != nil {
		r.f.afterDistinct = nil
		hook()
	}
	return out, nil
}

func (r *fakeEventRepo) distinct(col func(domain.Event) string) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range r.f.state.events {
		if v := col(e); v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func (r *fakeEventRepo) TagsForEvents(_ context.Context, ids []int64) (map[int64][]domain.Tag, error) {
	out := map[int64][]domain.Tag{}
	for _, id := range ids {
		if e, ok := r.f.state.events[id]; ok {
			out[id] = r.withTags(e).Tags
		}
	}
	return out, nil
}

type fakeTagRepo struct{ f *fakeStore }

func (r *fakeTagRepo) GetByName(_ context.Context, name string) (domain.Tag, error) {
	if r.f.tagErr != nil {
		return domain.Tag{}, r.f.tagErr
	}
	t, ok := r.f.state.tags[name]
	if !ok {
		return domain.Tag{}, domain.ErrNotFound
	}
	return t, nil
}

type fakeUserRepo struct{ f *fakeStore }

func (r *fakeUserRepo) Exists(_ context.Context, id int64) (bool, error) {
	return r.f.state.users[id], nil
}

var (
	_ repo.EventRepo = (*fakeEventRepo)(nil)
	_ repo.TagRepo   = (*fakeTagRepo)(nil)
	_ repo.UserRepo  = (*fakeUserRepo)(nil)
)

// ---- collaborators ---------------------------------------------------------

// fakeImages accepts exactly the payload "PNG".
type fakeImages struct{}

func (fakeImages) IsDecodable(b []byte) bool { return string(b) == "PNG" }

func (i fakeImages) Format(b []byte) string {
	if i.IsDecodable(b) {
		return "png"
	}
	return ""
}

// fakeFacets is a map-backed cache.Facets with injectable failures. Like the
// real caches it keys entries by generation, and Invalidate bumps it.
type fakeFacets struct {
	values        map[string][]string
	gen           int64
	gets, sets    int
	invalidations int
	getErr        error
	invalidateErr error
}

func newFakeFacets() *fakeFacets { return &fakeFacets{values: map[string][]string{}} }

// current returns the list visible at the current generation.
func (c *fakeFacets) current(key string) []string {
	return c.values[cache.VersionedKey(key, c.gen)]
}

func (c *fakeFacets) Get(_ context.Context, key string) ([]string, int64, bool, error) {
	c.gets++
	if c.getErr != nil {
		return nil, 0, false, c.getErr
	}
	v, ok := c.values[cache.VersionedKey(key, c.gen)]
	return v, c.gen, ok, nil
}

func (c *fakeFacets) Set(_ context.Context, key string, gen int64, values []string) error {
	c.sets++
	c.values[cache.VersionedKey(key, gen)] = values
	return nil
}

func (c *fakeFacets) Invalidate(context.Context) error {
	c.invalidations++
	if c.invalidateErr != nil {
		return c.invalidateErr
	}
	c.gen++
	return nil
}

var _ cache.Facets = (*fakeFacets)(nil)
