package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs-lzh/coaster-review/internal/cache"
	"github.com/qs-lzh/coaster-review/internal/model"
	"github.com/qs-lzh/coaster-review/internal/mq"
	"github.com/qs-lzh/coaster-review/internal/rating"
	"github.com/qs-lzh/coaster-review/internal/testutil"
)

func TestRatingService_CachesComputedRating(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "reviewer", model.RoleUser)
	_, coasters := testutil.Seed(t, f.db, author, "park", []int{5, 3, 4})
	ctx := context.Background()
	key := cache.MakeCoasterRatingKey(coasters[0].ID)

	r, err := f.ratings.CoasterRating(ctx, f.coasterView(t, coasters[0]))
	require.NoError(t, err)
	assert.Equal(t, "4.00", r.String())

	cached, err := f.mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "4.00", cached)
	assert.True(t, f.mr.TTL(key) > 0)

	// served from the cache, not recomputed
	require.NoError(t, f.mr.Set(key, "1.50"))
	r, err = f.ratings.CoasterRating(ctx, f.coasterView(t, coasters[0]))
	require.NoError(t, err)
	assert.Equal(t, "1.50", r.String())
}

func TestRatingService_CachesNotApplicable(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "reviewer", model.RoleUser)
	park, _ := testutil.Seed(t, f.db, author, "park", []int{})

	r, err := f.ratings.LookupParkRating(context.Background(), *park)
	require.NoError(t, err)
	assert.False(t, r.IsApplicable())

	cached, err := f.mr.Get(cache.MakeParkRatingKey(park.ID))
	require.NoError(t, err)
	assert.Equal(t, "N/A", cached)

	r, err = f.ratings.LookupParkRating(context.Background(), *park)
	require.NoError(t, err)
	assert.False(t, r.IsApplicable())
}

func TestRatingService_MalformedCacheEntryIsRecomputed(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "reviewer", model.RoleUser)
	_, coasters := testutil.Seed(t, f.db, author, "park", []int{2, 3})
	key := cache.MakeCoasterRatingKey(coasters[0].ID)
	require.NoError(t, f.mr.Set(key, "garbage"))

	r, err := f.ratings.CoasterRating(context.Background(), f.coasterView(t, coasters[0]))
	require.NoError(t, err)
	assert.Equal(t, "2.50", r.String())
	assert.Equal(t, 1, f.logs.FilterMessage("discarding malformed cached rating").Len())
}

func TestRatingService_CacheOutageFallsBackToStore(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "reviewer", model.RoleUser)
	park, _ := testutil.Seed(t, f.db, author, "park", []int{4}, []int{5})
	f.mr.Close()

	r, err := f.ratings.LookupParkRating(context.Background(), *park)
	require.NoError(t, err)
	assert.Equal(t, "4.50", r.String())
	assert.NotZero(t, f.logs.FilterMessage("failed to read cached rating").Len())
}

func TestRatingService_Invalidate(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.mr.Set(cache.MakeParkRatingKey(1), "3.00"))
	require.NoError(t, f.mr.Set(cache.MakeCoasterRatingKey(2), "3.00"))
	require.NoError(t, f.mr.Set(cache.MakeCoasterRatingKey(3), "3.00"))

	f.ratings.Invalidate(context.Background(), 1, 2)

	assert.False(t, f.mr.Exists(cache.MakeParkRatingKey(1)))
	assert.False(t, f.mr.Exists(cache.MakeCoasterRatingKey(2)))
	assert.True(t, f.mr.Exists(cache.MakeCoasterRatingKey(3)))
}

func TestRatingService_Refresh(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "reviewer", model.RoleUser)
	park, coasters := testutil.Seed(t, f.db, author, "park", []int{5, 4}, []int{3})
	ctx := context.Background()

	err := f.ratings.Refresh(ctx, mq.CatalogEvent{Kind: mq.EventReviewPosted, ParkID: park.ID, CoasterID: coasters[0].ID})
	require.NoError(t, err)

	coasterRating, err := f.mr.Get(cache.MakeCoasterRatingKey(coasters[0].ID))
	require.NoError(t, err)
	assert.Equal(t, "4.50", coasterRating)
	parkRating, err := f.mr.Get(cache.MakeParkRatingKey(park.ID))
	require.NoError(t, err)
	assert.Equal(t, "3.75", parkRating)
}

func TestRatingService_RefreshSkipsDeletedEntities(t *testing.T) {
	f := newFixture(t)
	err := f.ratings.Refresh(context.Background(), mq.CatalogEvent{Kind: mq.EventParkDeleted, ParkID: 404, CoasterID: 405})
	require.NoError(t, err)
	assert.Empty(t, f.mr.Keys())
}

func TestRatingService_InvalidationDuringComputeIsNotOverwritten(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := cache.MakeParkRatingKey(7)

	r, err := f.ratings.cached(ctx, key, func() (rating.Rating, error) {
		// a review lands and is invalidated while the old value is computed
		f.ratings.Invalidate(ctx, 7)
		return rating.Of(1), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "1.00", r.String())
	assert.False(t, f.mr.Exists(key))

	r, err = f.ratings.cached(ctx, key, func() (rating.Rating, error) {
		return rating.Of(4), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "4.00", r.String())
	cached, err := f.mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "4.00", cached)
}
