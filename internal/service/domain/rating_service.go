package domain

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/qs-lzh/coaster-review/internal/cache"
	"github.com/qs-lzh/coaster-review/internal/model"
	"github.com/qs-lzh/coaster-review/internal/mq"
	"github.com/qs-lzh/coaster-review/internal/rating"
	"github.com/qs-lzh/coaster-review/internal/repository"
)

// RatingService serves coaster and park ratings through the redis cache.
type RatingService interface {
	// CoasterRating rates a resolved coaster, serving the cached value when present.
	CoasterRating(ctx context.Context, view rating.CoasterView) (rating.Rating, error)
	// ParkRating rates a resolved park, serving the cached value when present.
	ParkRating(ctx context.Context, view rating.ParkView) (rating.Rating, error)
	// LookupParkRating resolves the park only on a cache miss.
	LookupParkRating(ctx context.Context, park model.Park) (rating.Rating, error)
	// Invalidate drops the cached ratings of a park and some of its coasters.
	Invalidate(ctx context.Context, parkID uint, coasterIDs ...uint)
	// Refresh recomputes and stores the ratings named by event, skipping
	// entities that no longer exist.
	Refresh(ctx context.Context, event mq.CatalogEvent) error
}

type ratingService struct {
	cache    *cache.RedisCache
	parks    repository.ParkRepo
	coasters repository.CoasterRepo
	resolver *repository.Resolver
	logger   *zap.Logger
}

var _ RatingService = (*ratingService)(nil)

func NewRatingService(redisCache *cache.RedisCache, parkRepo repository.ParkRepo, coasterRepo repository.CoasterRepo, resolver *repository.Resolver, logger *zap.Logger) *ratingService {
	return &ratingService{
		cache:    redisCache,
		parks:    parkRepo,
		coasters: coasterRepo,
		resolver: resolver,
		logger:   logger,
	}
}

func (s *ratingService) CoasterRating(ctx context.Context, view rating.CoasterView) (rating.Rating, error) {
	return s.cached(ctx, cache.MakeCoasterRatingKey(view.Coaster.ID), func() (rating.Rating, error) {
		return rating.CoasterRating(view)
	})
}

func (s *ratingService) ParkRating(ctx context.Context, view rating.ParkView) (rating.Rating, error) {
	return s.cached(ctx, cache.MakeParkRatingKey(view.Park.ID), func() (rating.Rating, error) {
		return rating.ParkRating(view)
	})
}

func (s *ratingService) LookupParkRating(ctx context.Context, park model.Park) (rating.Rating, error) {
	return s.cached(ctx, cache.MakeParkRatingKey(park.ID), func() (rating.Rating, error) {
		return s.computePark(ctx, park)
	})
}

func (s *ratingService) Invalidate(ctx context.Context, parkID uint, coasterIDs ...uint) {
	if s.cache == nil {
		return
	}
	keys := make([]string, 0, len(coasterIDs)+1)
	if parkID != 0 {
		keys = append(keys, cache.MakeParkRatingKey(parkID))
	}
	for _, id := range coasterIDs {
		keys = append(keys, cache.MakeCoasterRatingKey(id))
	}
	if err := s.cache.InvalidateRatings(ctx, keys...); err != nil {
		s.logger.Error("failed to invalidate cached ratings", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (s *ratingService) Refresh(ctx context.Context, event mq.CatalogEvent) error {
	if s.cache == nil {
		return nil
	}

	if event.CoasterID != 0 {
		coaster, err := s.coasters.GetByID(ctx, event.CoasterID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
		case err != nil:
			return fmt.Errorf("refresh coaster %d: %w", event.CoasterID, err)
		default:
			err := s.recompute(ctx, cache.MakeCoasterRatingKey(coaster.ID), func() (rating.Rating, error) {
				return s.computeCoaster(ctx, *coaster)
			})
			if err != nil {
				return err
			}
		}
	}

	if event.ParkID != 0 {
		park, err := s.parks.GetByID(ctx, event.ParkID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
		case err != nil:
			return fmt.Errorf("refresh park %d: %w", event.ParkID, err)
		default:
			err := s.recompute(ctx, cache.MakeParkRatingKey(park.ID), func() (rating.Rating, error) {
				return s.computePark(ctx, *park)
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *ratingService) computeCoaster(ctx context.Context, coaster model.Coaster) (rating.Rating, error) {
	view, err := s.resolver.ResolveCoaster(ctx, coaster)
	if err != nil {
		return rating.NotApplicable, err
	}
	return rating.CoasterRating(view)
}

func (s *ratingService) computePark(ctx context.Context, park model.Park) (rating.Rating, error) {
	view, err := s.resolver.ResolvePark(ctx, park)
	if err != nil {
		return rating.NotApplicable, err
	}
	return rating.ParkRating(view)
}

// cached reads key, falling back to compute and storing its result. Cache
// failures are logged and never fail the read.
func (s *ratingService) cached(ctx context.Context, key string, compute func() (rating.Rating, error)) (rating.Rating, error) {
	if s.cache == nil {
		return compute()
	}

	entry, err := s.cache.GetRating(ctx, key)
	if err != nil {
		s.logger.Warn("failed to read cached rating", zap.String("key", key), zap.Error(err))
		return compute()
	}
	if entry.Found {
		r, err := rating.Parse(entry.Value)
		if err == nil {
			return r, nil
		}
		s.logger.Warn("discarding malformed cached rating", zap.String("key", key), zap.String("value", entry.Value))
	}

	r, err := compute()
	if err != nil {
		return rating.NotApplicable, err
	}
	s.store(ctx, key, r, entry.Generation)
	return r, nil
}

// recompute overwrites key with a fresh value. The generation is read before
// computing, so an invalidation that lands meanwhile still wins.
func (s *ratingService) recompute(ctx context.Context, key string, compute func() (rating.Rating, error)) error {
	entry, err := s.cache.GetRating(ctx, key)
	if err != nil {
		return fmt.Errorf("read generation of %s: %w", key, err)
	}
	r, err := compute()
	if err != nil {
		return err
	}
	s.store(ctx, key, r, entry.Generation)
	return nil
}

func (s *ratingService) store(ctx context.Context, key string, r rating.Rating, generation int64) {
	stored, err := s.cache.SetRating(ctx, key, r.String(), generation)
	if err != nil {
		s.logger.Warn("failed to cache rating", zap.String("key", key), zap.Error(err))
		return
	}
	if !stored {
		s.logger.Debug("rating invalidated while computing, not cached", zap.String("key", key))
	}
}
