package domain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs-lzh/coaster-review/internal/cache"
	"github.com/qs-lzh/coaster-review/internal/model"
	"github.com/qs-lzh/coaster-review/internal/mq"
	"github.com/qs-lzh/coaster-review/internal/service"
	"github.com/qs-lzh/coaster-review/internal/testutil"
)

func TestCatalogService_CreatePark(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	park, err := f.catalog.CreatePark(ctx, "  Cedar Point ", " Sandusky, Ohio")
	require.NoError(t, err)
	assert.Equal(t, "Cedar Point", park.Name)
	assert.Equal(t, "Sandusky, Ohio", park.Location)
	assert.Equal(t, "cedar-point", park.Slug)

	again, err := f.catalog.CreatePark(ctx, "Cedar Point", "Elsewhere")
	require.NoError(t, err)
	assert.NotEqual(t, park.Slug, again.Slug)
	assert.True(t, strings.HasPrefix(again.Slug, "cedar-point-"))

	_, err = f.catalog.CreatePark(ctx, "   ", "Ohio")
	assert.ErrorIs(t, err, service.ErrInvalidName)
	_, err = f.catalog.CreatePark(ctx, "Kings Island", "")
	assert.ErrorIs(t, err, service.ErrInvalidName)
}

func TestCatalogService_CreateCoaster(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	park, err := f.catalog.CreatePark(ctx, "Cedar Point", "Ohio")
	require.NoError(t, err)

	var slugs []string
	for _, name := range []string{"Millennium Force", "Steel Vengeance", "Maverick"} {
		c, err := f.catalog.CreateCoaster(ctx, park.Slug, name)
		require.NoError(t, err)
		assert.Equal(t, park.ID, c.ParkID)
		slugs = append(slugs, c.Slug)
	}

	detail, err := f.catalog.GetPark(ctx, park.Slug)
	require.NoError(t, err)
	require.Len(t, detail.Coasters, 3)
	for i, c := range detail.Coasters {
		assert.Equal(t, slugs[i], c.Coaster.Slug)
		assert.False(t, c.Rating.IsApplicable())
	}

	_, err = f.catalog.CreateCoaster(ctx, "no-such-park", "Orphan")
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = f.catalog.CreateCoaster(ctx, park.Slug, " ")
	assert.ErrorIs(t, err, service.ErrInvalidName)
}

func TestCatalogService_GetPark(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "reviewer", model.RoleUser)
	park, coasters := testutil.Seed(t, f.db, author, "park", []int{4, 4}, []int{2}, []int{})

	detail, err := f.catalog.GetPark(context.Background(), park.Slug)
	require.NoError(t, err)
	assert.Equal(t, "3.00", detail.Rating.String())
	require.Len(t, detail.Coasters, 3)
	assert.Equal(t, coasters[0].ID, detail.Coasters[0].Coaster.ID)
	assert.Equal(t, "4.00", detail.Coasters[0].Rating.String())
	assert.Equal(t, "2.00", detail.Coasters[1].Rating.String())
	assert.Equal(t, "N/A", detail.Coasters[2].Rating.String())

	_, err = f.catalog.GetPark(context.Background(), "missing")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCatalogService_GetCoaster(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "reviewer", model.RoleUser)
	park, coasters := testutil.Seed(t, f.db, author, "park", []int{5, 3, 4})

	detail, err := f.catalog.GetCoaster(context.Background(), coasters[0].Slug)
	require.NoError(t, err)
	assert.Equal(t, park.ID, detail.Park.ID)
	assert.Equal(t, "4.00", detail.Rating.String())
	require.Len(t, detail.Reviews, 3)
	assert.Equal(t, 5, detail.Reviews[0].Rating)
	assert.Equal(t, 3, detail.Reviews[1].Rating)
	assert.Equal(t, 4, detail.Reviews[2].Rating)
	assert.Equal(t, "reviewer", detail.Reviews[0].Author.Username)

	_, err = f.catalog.GetCoaster(context.Background(), "missing")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCatalogService_DetailsServeCachedRatings(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "reviewer", model.RoleUser)
	park, coasters := testutil.Seed(t, f.db, author, "park", []int{5, 3, 4}, []int{2})
	ctx := context.Background()
	coasterKey := cache.MakeCoasterRatingKey(coasters[0].ID)

	require.NoError(t, f.ratings.Refresh(ctx, mq.CatalogEvent{
		Kind:      mq.EventReviewPosted,
		ParkID:    park.ID,
		CoasterID: coasters[0].ID,
	}))
	warmed, err := f.mr.Get(coasterKey)
	require.NoError(t, err)
	assert.Equal(t, "4.00", warmed)

	require.NoError(t, f.mr.Set(coasterKey, "1.00"))
	require.NoError(t, f.mr.Set(cache.MakeParkRatingKey(park.ID), "1.50"))

	coaster, err := f.catalog.GetCoaster(ctx, coasters[0].Slug)
	require.NoError(t, err)
	assert.Equal(t, "1.00", coaster.Rating.String())

	detail, err := f.catalog.GetPark(ctx, park.Slug)
	require.NoError(t, err)
	assert.Equal(t, "1.50", detail.Rating.String())
	require.Len(t, detail.Coasters, 2)
	assert.Equal(t, "1.00", detail.Coasters[0].Rating.String())
	assert.Equal(t, "2.00", detail.Coasters[1].Rating.String())

	// a detail read on a cold cache fills it
	cold, err := f.mr.Get(cache.MakeCoasterRatingKey(coasters[1].ID))
	require.NoError(t, err)
	assert.Equal(t, "2.00", cold)
}

func TestCatalogService_ListParksCachesRatings(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "reviewer", model.RoleUser)
	cedar, _ := testutil.Seed(t, f.db, author, "cedar", []int{5}, []int{3})
	empty, _ := testutil.Seed(t, f.db, author, "empty")

	parks, err := f.catalog.ListParks(context.Background())
	require.NoError(t, err)
	require.Len(t, parks, 2)

	byID := map[uint]ParkSummary{}
	for _, p := range parks {
		byID[p.Park.ID] = p
	}
	assert.Equal(t, "4.00", byID[cedar.ID].Rating.String())
	assert.Equal(t, 2, byID[cedar.ID].CoasterCount)
	assert.Equal(t, "N/A", byID[empty.ID].Rating.String())
	assert.Equal(t, 0, byID[empty.ID].CoasterCount)

	cached, err := f.mr.Get(cache.MakeParkRatingKey(cedar.ID))
	require.NoError(t, err)
	assert.Equal(t, "4.00", cached)
}

func TestCatalogService_DeleteCoaster(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "reviewer", model.RoleUser)
	park, coasters := testutil.Seed(t, f.db, author, "park", []int{5, 4}, []int{3})
	ctx := context.Background()

	_, err := f.ratings.LookupParkRating(ctx, *park)
	require.NoError(t, err)
	require.True(t, f.mr.Exists(cache.MakeParkRatingKey(park.ID)))

	require.NoError(t, f.catalog.DeleteCoaster(ctx, coasters[0].Slug))

	_, err = f.coasters.GetByID(ctx, coasters[0].ID)
	assert.Error(t, err)
	ids, err := f.reviews.ChildIDs(ctx, coasters[0].ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.EqualValues(t, 1, f.count(t, &model.Review{}))

	remaining, err := f.coasters.ChildIDs(ctx, park.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{coasters[1].ID}, remaining)

	assert.False(t, f.mr.Exists(cache.MakeParkRatingKey(park.ID)))
	f.publisher.AssertCalled(t, "Publish", mock.Anything, mq.CatalogEvent{
		Kind:      mq.EventCoasterDeleted,
		ParkID:    park.ID,
		CoasterID: coasters[0].ID,
	})

	// deleting twice is not an error
	assert.NoError(t, f.catalog.DeleteCoaster(ctx, coasters[0].Slug))
	assert.NoError(t, f.catalog.DeleteCoaster(ctx, "never-existed"))
}

func TestCatalogService_DeletePark(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "reviewer", model.RoleUser)
	park, _ := testutil.Seed(t, f.db, author, "doomed", []int{5, 4}, []int{3}, []int{})
	other, _ := testutil.Seed(t, f.db, author, "other", []int{1})
	ctx := context.Background()

	require.NoError(t, f.catalog.DeletePark(ctx, park.Slug))

	_, err := f.catalog.GetPark(ctx, park.Slug)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.EqualValues(t, 1, f.count(t, &model.Park{}))
	assert.EqualValues(t, 1, f.count(t, &model.Coaster{}))
	assert.EqualValues(t, 1, f.count(t, &model.Review{}))

	detail, err := f.catalog.GetPark(ctx, other.Slug)
	require.NoError(t, err)
	assert.Equal(t, "1.00", detail.Rating.String())

	f.publisher.AssertCalled(t, "Publish", mock.Anything, mq.CatalogEvent{Kind: mq.EventParkDeleted, ParkID: park.ID})

	assert.NoError(t, f.catalog.DeletePark(ctx, park.Slug))
}

func TestCatalogService_DeleteParkAbortsOnChildFailure(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "reviewer", model.RoleUser)
	park, coasters := testutil.Seed(t, f.db, author, "park", []int{5, 4}, []int{3})
	ctx := context.Background()

	errBoom := errors.New("review store unavailable")
	err := f.db.Callback().Delete().Before("gorm:delete").Register("test:fail_reviews", func(tx *gorm.DB) {
		if tx.Statement.Table == "reviews" {
			_ = tx.AddError(errBoom)
		}
	})
	require.NoError(t, err)

	err = f.catalog.DeletePark(ctx, park.Slug)
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), park.Slug)

	// rolled back: nothing was removed
	got, err := f.parks.GetBySlug(ctx, park.Slug)
	require.NoError(t, err)
	assert.Equal(t, park.ID, got.ID)
	ids, err := f.coasters.ChildIDs(ctx, park.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{coasters[0].ID, coasters[1].ID}, ids)
	assert.EqualValues(t, 3, f.count(t, &model.Review{}))

	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestCatalogService_DeleteCoasterAbortsOnReviewFailure(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "reviewer", model.RoleUser)
	_, coasters := testutil.Seed(t, f.db, author, "park", []int{5, 4, 3})
	ctx := context.Background()

	deleted := 0
	errBoom := errors.New("second review delete failed")
	err := f.db.Callback().Delete().Before("gorm:delete").Register("test:fail_second_review", func(tx *gorm.DB) {
		if tx.Statement.Table != "reviews" {
			return
		}
		if deleted == 1 {
			_ = tx.AddError(errBoom)
			return
		}
		deleted++
	})
	require.NoError(t, err)

	err = f.catalog.DeleteCoaster(ctx, coasters[0].Slug)
	assert.ErrorIs(t, err, errBoom)

	got, err := f.coasters.GetBySlug(ctx, coasters[0].Slug)
	require.NoError(t, err)
	ids, err := f.reviews.ChildIDs(ctx, got.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 3)
}
