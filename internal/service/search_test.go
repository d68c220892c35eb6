package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/event-catalog/internal/cache"
	"github.com/pkordes/event-catalog/internal/domain"
	"github.com/pkordes/event-catalog/internal/query"
)

func predNames(c query.Conjunction) []string {
	var out []string
	for _, p := range c {
		out = append(out, p.Name())
	}
	return out
}

func TestSearchService_Search_UnknownTagIsEmptyNotError(t *testing.T) {
	store := seededStore()
	events, search := newServices(store, nil)
	mustCreate(t, events, validInput())

	got, err := search.Search(context.Background(), domain.SearchCriteria{TagName: "no-such-tag"})

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, store.findCalls, "storage is not queried")
}

func TestSearchService_Search_KnownTagAddsPredicate(t *testing.T) {
	store := seededStore()
	_, search := newServices(store, nil)

	_, err := search.Search(context.Background(), domain.SearchCriteria{TagName: "tech", Keyword: "club"})

	require.NoError(t, err)
	assert.Equal(t, []string{"keyword", "tag"}, predNames(store.lastWhere))
	assert.Equal(t, query.HasTag{TagID: 1}, store.lastWhere[1])
}

func TestSearchService_Search_AllSentinelSkipsTagLookup(t *testing.T) {
	store := seededStore()
	store.tagErr = errors.New("must not be called")
	_, search := newServices(store, nil)

	_, err := search.Search(context.Background(), domain.SearchCriteria{TagName: "All", Location: "All"})

	require.NoError(t, err)
	assert.Empty(t, store.lastWhere)
}

func TestSearchService_Search_PassesSortOrder(t *testing.T) {
	tests := []struct {
		sortBy string
		want   []string
	}{
		{sortBy: "trending", want: []string{"e.like_count DESC", "e.id ASC"}},
		{sortBy: "alphabetical", want: []string{"lower(e.title) ASC", "e.id ASC"}},
		{sortBy: "start time", want: []string{"e.start_time ASC", "e.id ASC"}},
		{sortBy: "bogus", want: []string{"e.id ASC"}},
	}

	for _, tt := range tests {
		t.Run(tt.sortBy, func(t *testing.T) {
			store := seededStore()
			_, search := newServices(store, nil)

			_, err := search.Search(context.Background(), domain.SearchCriteria{SortBy: tt.sortBy})

			require.NoError(t, err)
			assert.Equal(t, tt.want, store.lastOrder)
		})
	}
}

func TestSearchService_Search_ReturnsStorageOrder(t *testing.T) {
	store := seededStore()
	store.find = func(query.Conjunction, []string) []domain.Event {
		return []domain.Event{{ID: 1, LikeCount: 5}, {ID: 3, LikeCount: 3}, {ID: 2, LikeCount: 1}}
	}
	_, search := newServices(store, nil)

	got, err := search.Search(context.Background(), domain.SearchCriteria{SortBy: "trending"})

	require.NoError(t, err)
	var likes []int
	for _, e := range got {
		likes = append(likes, e.LikeCount)
	}
	assert.Equal(t, []int{5, 3, 1}, likes)
}

func TestSearchService_Search_BadDate(t *testing.T) {
	store := seededStore()
	_, search := newServices(store, nil)

	_, err := search.Search(context.Background(), domain.SearchCriteria{StartTime: "yesterday"})

	assert.ErrorIs(t, err, domain.ErrBadFormat)
	assert.Zero(t, store.findCalls)
}

func TestSearchService_GetByTag(t *testing.T) {
	store := seededStore()
	events, search := newServices(store, nil)
	ctx := context.Background()

	tagged := mustCreate(t, events, validInput())
	untagged := validInput()
	untagged.Tags = nil
	mustCreate(t, events, untagged)

	got, err := search.GetByTag(ctx, "tech")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, tagged, got[0].ID)

	got, err = search.GetByTag(ctx, "social")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	_, err = search.GetByTag(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearchService_ListAllAndAuthoredBy(t *testing.T) {
	store := seededStore().withUser(8)
	events, search := newServices(store, nil)
	ctx := context.Background()

	mustCreate(t, events, validInput())
	other := validInput()
	other.AuthorID = 8
	otherID := mustCreate(t, events, other)

	all, err := search.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := search.ListAuthoredBy(ctx, 8)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, otherID, mine[0].ID)

	none, err := search.ListAuthoredBy(ctx, 12345)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestSearchService_ListTagsForEvent_NotFound(t *testing.T) {
	_, search := newServices(seededStore(), nil)

	_, err := search.ListTagsForEvent(context.Background(), 404)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearchService_ListLocations_ReadThrough(t *testing.T) {
	store := seededStore()
	facets := newFakeFacets()
	events, search := newServices(store, facets)
	ctx := context.Background()

	mustCreate(t, events, validInput())

	first, err := search.ListLocations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gates 4401"}, first)
	assert.Equal(t, []string{"Gates 4401"}, facets.current(cache.KeyLocations), "miss fills the cache")

	// Served from cache: a change made behind the service's back is not seen.
	store.state.events[1] = domain.Event{ID: 1, Location: "Elsewhere"}
	second, err := search.ListLocations(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, facets.sets)
}

func TestSearchService_ListClubs_WriteInvalidates(t *testing.T) {
	store := seededStore()
	facets := newFakeFacets()
	events, search := newServices(store, facets)
	ctx := context.Background()

	mustCreate(t, events, validInput())
	clubs, err := search.ListClubs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ScottyLabs"}, clubs)

	other := validInput()
	other.Club = "ACM"
	mustCreate(t, events, other)

	clubs, err = search.ListClubs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ACM", "ScottyLabs"}, clubs)
}

// A write that commits after the storage read but before the cache fill must
// not be hidden by the fill.
func TestSearchService_ListClubs_WriteDuringFillIsNotMasked(t *testing.T) {
	store := seededStore()
	facets := newFakeFacets()
	events, search := newServices(store, facets)
	ctx := context.Background()

	mustCreate(t, events, validInput())

	store.afterDistinct = func() {
		other := validInput()
		other.Club = "ACM"
		mustCreate(t, events, other)
	}

	clubs, err := search.ListClubs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ScottyLabs"}, clubs, "read happened before the write")

	clubs, err = search.ListClubs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ACM", "ScottyLabs"}, clubs)
}

func TestSearchService_ListClubs_CacheErrorFallsBackToStorage(t *testing.T) {
	store := seededStore()
	facets := newFakeFacets()
	facets.getErr = errors.New("redis down")
	events, search := newServices(store, facets)

	mustCreate(t, events, validInput())

	clubs, err := search.ListClubs(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"ScottyLabs"}, clubs)
}

func TestSearchService_ListClubs_EmptyIsNonNil(t *testing.T) {
	_, search := newServices(seededStore(), nil)

	clubs, err := search.ListClubs(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, clubs)
	assert.Empty(t, clubs)
}
