package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs-lzh/coaster-review/internal/model"
	"github.com/qs-lzh/coaster-review/internal/testutil"
)

func TestCollection(t *testing.T) {
	db := testutil.NewDB(t)
	parks := NewCollection[model.Park](db)
	ctx := context.Background()

	cedar := &model.Park{Name: "Cedar Point", Location: "Ohio", Slug: "cedar-point"}
	europa := &model.Park{Name: "Europa-Park", Location: "Rust", Slug: "europa-park"}
	require.NoError(t, parks.Create(ctx, cedar))
	require.NoError(t, parks.Create(ctx, europa))

	t.Run("FindOne", func(t *testing.T) {
		p, err := parks.FindOne(ctx, &model.Park{Slug: "europa-park"})
		require.NoError(t, err)
		assert.Equal(t, europa.ID, p.ID)

		_, err = parks.FindOne(ctx, &model.Park{Slug: "missing"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("FindByID", func(t *testing.T) {
		p, err := parks.FindByID(ctx, cedar.ID)
		require.NoError(t, err)
		assert.Equal(t, "Cedar Point", p.Name)

		_, err = parks.FindByID(ctx, 0)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = parks.FindByID(ctx, 9999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Find", func(t *testing.T) {
		all, err := parks.Find(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		ohio, err := parks.Find(ctx, &model.Park{Location: "Ohio"})
		require.NoError(t, err)
		require.Len(t, ohio, 1)
		assert.Equal(t, cedar.ID, ohio[0].ID)
	})

	t.Run("FindUnfilteredOrdered", func(t *testing.T) {
		all, err := parks.Find(ctx, nil, "name DESC")
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, []uint{europa.ID, cedar.ID}, []uint{all[0].ID, all[1].ID})
	})

	t.Run("FindIn", func(t *testing.T) {
		got, err := parks.FindIn(ctx, []uint{europa.ID, 9999})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, europa.ID, got[0].ID)

		got, err = parks.FindIn(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("UpdateOne", func(t *testing.T) {
		require.NoError(t, parks.UpdateOne(ctx, &model.Park{ID: cedar.ID}, "location", "Sandusky, Ohio"))
		p, err := parks.FindByID(ctx, cedar.ID)
		require.NoError(t, err)
		assert.Equal(t, "Sandusky, Ohio", p.Location)

		err = parks.UpdateOne(ctx, &model.Park{Slug: "missing"}, "location", "x")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("CountAndExists", func(t *testing.T) {
		n, err := parks.Count(ctx, nil)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		ok, err := parks.Exists(ctx, &model.Park{Slug: "cedar-point"})
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = parks.Exists(ctx, &model.Park{Slug: "nope"})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("DeleteOneAbsentIsNoop", func(t *testing.T) {
		assert.NoError(t, parks.DeleteOne(ctx, &model.Park{Slug: "missing"}))
		n, err := parks.Count(ctx, nil)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
	})

	t.Run("DeleteMany", func(t *testing.T) {
		n, err := parks.DeleteMany(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, n)

		n, err = parks.DeleteMany(ctx, []uint{cedar.ID, europa.ID})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		left, err := parks.Count(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, left)
	})
}

func TestCollection_WithTxRollback(t *testing.T) {
	db := testutil.NewDB(t)
	parks := NewCollection[model.Park](db)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := parks.WithTx(tx).Create(ctx, &model.Park{Name: "Tmp", Location: "x", Slug: "tmp"}); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	ok, err := parks.Exists(ctx, &model.Park{Slug: "tmp"})
	require.NoError(t, err)
	assert.False(t, ok)
}
