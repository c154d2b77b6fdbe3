package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/qs-lzh/coaster-review/internal/model"
	"github.com/qs-lzh/coaster-review/internal/rating"
)

// Resolver loads the children referenced by coasters and parks so they can be
// handed to the rating package.
type Resolver struct {
	coasters CoasterRepo
	reviews  ReviewRepo
}

func NewResolver(coasters CoasterRepo, reviews ReviewRepo) *Resolver {
	return &Resolver{
		coasters: coasters,
		reviews:  reviews,
	}
}

func (r *Resolver) WithTx(tx *gorm.DB) *Resolver {
	return &Resolver{
		coasters: r.coasters.WithTx(tx),
		reviews:  r.reviews.WithTx(tx),
	}
}

func (r *Resolver) ResolveCoaster(ctx context.Context, coaster model.Coaster) (rating.CoasterView, error) {
	ids, err := r.reviews.ChildIDs(ctx, coaster.ID)
	if err != nil {
		return rating.CoasterView{}, fmt.Errorf("load review list of coaster %d: %w", coaster.ID, err)
	}
	reviews, err := r.reviews.FindIn(ctx, ids)
	if err != nil {
		return rating.CoasterView{}, fmt.Errorf("load reviews of coaster %d: %w", coaster.ID, err)
	}
	return rating.CoasterView{
		Coaster:   coaster,
		ReviewIDs: ids,
		Reviews:   inOrder(ids, reviews, func(r model.Review) uint { return r.ID }),
	}, nil
}

func (r *Resolver) ResolvePark(ctx context.Context, park model.Park) (rating.ParkView, error) {
	ids, err := r.coasters.ChildIDs(ctx, park.ID)
	if err != nil {
		return rating.ParkView{}, fmt.Errorf("load coaster list of park %d: %w", park.ID, err)
	}
	coasters, err := r.coasters.FindIn(ctx, ids)
	if err != nil {
		return rating.ParkView{}, fmt.Errorf("load coasters of park %d: %w", park.ID, err)
	}

	view := rating.ParkView{Park: park, CoasterIDs: ids}
	for _, c := range inOrder(ids, coasters, func(c model.Coaster) uint { return c.ID }) {
		cv, err := r.ResolveCoaster(ctx, c)
		if err != nil {
			return rating.ParkView{}, err
		}
		view.Coasters = append(view.Coasters, cv)
	}
	return view, nil
}

// inOrder arranges items in ids order. Ids with no loaded item are skipped,
// which the rating package reports as an unresolved view.
func inOrder[T any](ids []uint, items []T, id func(T) uint) []T {
	byID := make(map[uint]T, len(items))
	for _, it := range items {
		byID[id(it)] = it
	}
	out := make([]T, 0, len(ids))
	for _, i := range ids {
		if it, ok := byID[i]; ok {
			out = append(out, it)
		}
	}
	return out
}
