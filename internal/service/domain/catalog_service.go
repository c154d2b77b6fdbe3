package domain

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs-lzh/coaster-review/internal/model"
	"github.com/qs-lzh/coaster-review/internal/mq"
	"github.com/qs-lzh/coaster-review/internal/rating"
	"github.com/qs-lzh/coaster-review/internal/repository"
	"github.com/qs-lzh/coaster-review/internal/service"
	"github.com/qs-lzh/coaster-review/internal/slug"
	"github.com/qs-lzh/coaster-review/internal/validation"
)

type ParkSummary struct {
	Park         model.Park    `json:"park"`
	Rating       rating.Rating `json:"rating"`
	CoasterCount int           `json:"coaster_count"`
}

type CoasterSummary struct {
	Coaster model.Coaster `json:"coaster"`
	Rating  rating.Rating `json:"rating"`
}

type ParkDetail struct {
	Park     model.Park       `json:"park"`
	Rating   rating.Rating    `json:"rating"`
	Coasters []CoasterSummary `json:"coasters"`
}

type CoasterDetail struct {
	Coaster model.Coaster  `json:"coaster"`
	Park    model.Park     `json:"park"`
	Rating  rating.Rating  `json:"rating"`
	Reviews []model.Review `json:"reviews"`
}

type CatalogService interface {
	CreatePark(ctx context.Context, name, location string) (*model.Park, error)
	CreateCoaster(ctx context.Context, parkSlug, name string) (*model.Coaster, error)
	ListParks(ctx context.Context) ([]ParkSummary, error)
	GetPark(ctx context.Context, slug string) (*ParkDetail, error)
	GetCoaster(ctx context.Context, slug string) (*CoasterDetail, error)
	// DeleteCoaster removes a coaster and its reviews in one transaction.
	// Deleting a missing coaster succeeds.
	DeleteCoaster(ctx context.Context, slug string) error
	// DeletePark removes a park, its coasters and their reviews in one
	// transaction. Deleting a missing park succeeds.
	DeletePark(ctx context.Context, slug string) error
}

type catalogService struct {
	db        *gorm.DB
	parks     repository.ParkRepo
	coasters  repository.CoasterRepo
	reviews   repository.ReviewRepo
	resolver  *repository.Resolver
	ratings   RatingService
	publisher EventPublisher
	logger    *zap.Logger
}

var _ CatalogService = (*catalogService)(nil)

func NewCatalogService(
	db *gorm.DB,
	parkRepo repository.ParkRepo,
	coasterRepo repository.CoasterRepo,
	reviewRepo repository.ReviewRepo,
	ratingService RatingService,
	publisher EventPublisher,
	logger *zap.Logger,
) *catalogService {
	return &catalogService{
		db:        db,
		parks:     parkRepo,
		coasters:  coasterRepo,
		reviews:   reviewRepo,
		resolver:  repository.NewResolver(coasterRepo, reviewRepo),
		ratings:   ratingService,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *catalogService) CreatePark(ctx context.Context, name, location string) (*model.Park, error) {
	name, err := validation.NormalizeName("name", name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrInvalidName, err)
	}
	location, err = validation.NormalizeName("location", location)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrInvalidName, err)
	}

	park := &model.Park{Name: name, Location: location}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		parks := s.parks.WithTx(tx)
		parkSlug, err := slug.Unique(ctx, name, parks.SlugExists)
		if err != nil {
			return err
		}
		park.Slug = parkSlug
		return parks.Create(ctx, park)
	})
	if err != nil {
		return nil, fmt.Errorf("create park: %w", err)
	}

	s.logger.Info("park created", zap.String("slug", park.Slug))
	return park, nil
}

func (s *catalogService) CreateCoaster(ctx context.Context, parkSlug, name string) (*model.Coaster, error) {
	name, err := validation.NormalizeName("name", name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrInvalidName, err)
	}

	park, err := s.getPark(ctx, parkSlug)
	if err != nil {
		return nil, err
	}

	coaster := &model.Coaster{Name: name}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		coasters := s.coasters.WithTx(tx)
		coasterSlug, err := slug.Unique(ctx, name, coasters.SlugExists)
		if err != nil {
			return err
		}
		coaster.Slug = coasterSlug
		return coasters.Append(ctx, park.ID, coaster)
	})
	if err != nil {
		return nil, fmt.Errorf("create coaster: %w", err)
	}

	// a new coaster has no reviews, the park rating is unchanged
	s.logger.Info("coaster created", zap.String("slug", coaster.Slug), zap.String("park", park.Slug))
	return coaster, nil
}

func (s *catalogService) ListParks(ctx context.Context) ([]ParkSummary, error) {
	parks, err := s.parks.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list parks: %w", err)
	}

	summaries := make([]ParkSummary, 0, len(parks))
	for _, park := range parks {
		ids, err := s.coasters.ChildIDs(ctx, park.ID)
		if err != nil {
			return nil, fmt.Errorf("list coasters of park %q: %w", park.Slug, err)
		}
		r, err := s.ratings.LookupParkRating(ctx, park)
		if err != nil {
			return nil, fmt.Errorf("rate park %q: %w", park.Slug, err)
		}
		summaries = append(summaries, ParkSummary{Park: park, Rating: r, CoasterCount: len(ids)})
	}
	return summaries, nil
}

func (s *catalogService) GetPark(ctx context.Context, parkSlug string) (*ParkDetail, error) {
	park, err := s.getPark(ctx, parkSlug)
	if err != nil {
		return nil, err
	}

	view, err := s.resolver.ResolvePark(ctx, *park)
	if err != nil {
		return nil, err
	}
	parkRating, err := s.ratings.ParkRating(ctx, view)
	if err != nil {
		return nil, err
	}

	detail := &ParkDetail{Park: *park, Rating: parkRating, Coasters: make([]CoasterSummary, 0, len(view.Coasters))}
	for _, cv := range view.Coasters {
		r, err := s.ratings.CoasterRating(ctx, cv)
		if err != nil {
			return nil, err
		}
		detail.Coasters = append(detail.Coasters, CoasterSummary{Coaster: cv.Coaster, Rating: r})
	}
	return detail, nil
}

func (s *catalogService) GetCoaster(ctx context.Context, coasterSlug string) (*CoasterDetail, error) {
	coaster, err := s.coasters.GetBySlug(ctx, coasterSlug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, service.ErrNotFound
		}
		return nil, err
	}
	park, err := s.parks.GetByID(ctx, coaster.ParkID)
	if err != nil {
		return nil, fmt.Errorf("load park of coaster %q: %w", coaster.Slug, err)
	}

	view, err := s.resolver.ResolveCoaster(ctx, *coaster)
	if err != nil {
		return nil, err
	}
	r, err := s.ratings.CoasterRating(ctx, view)
	if err != nil {
		return nil, err
	}

	return &CoasterDetail{
		Coaster: *coaster,
		Park:    *park,
		Rating:  r,
		Reviews: view.Reviews,
	}, nil
}

func (s *catalogService) DeleteCoaster(ctx context.Context, coasterSlug string) error {
	coaster, err := s.coasters.GetBySlug(ctx, coasterSlug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("delete coaster %q: %w", coasterSlug, err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.deleteCoasterTx(ctx, tx, coaster)
	})
	if err != nil {
		return fmt.Errorf("delete coaster %q: %w", coasterSlug, err)
	}

	s.ratings.Invalidate(ctx, coaster.ParkID, coaster.ID)
	publish(ctx, s.publisher, s.logger, mq.CatalogEvent{
		Kind:      mq.EventCoasterDeleted,
		ParkID:    coaster.ParkID,
		CoasterID: coaster.ID,
	})
	s.logger.Info("coaster deleted", zap.String("slug", coasterSlug))
	return nil
}

func (s *catalogService) DeletePark(ctx context.Context, parkSlug string) error {
	park, err := s.parks.GetBySlug(ctx, parkSlug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("delete park %q: %w", parkSlug, err)
	}

	var coasterIDs []uint
	err = s.db.Transaction(func(tx *gorm.DB) error {
		coasters := s.coasters.WithTx(tx)
		ids, err := coasters.ChildIDs(ctx, park.ID)
		if err != nil {
			return err
		}
		// sequentially, in list order; the first failure aborts the rest
		for _, id := range ids {
			coaster, err := coasters.GetByID(ctx, id)
			if err != nil {
				return fmt.Errorf("load coaster %d: %w", id, err)
			}
			if err := s.deleteCoasterTx(ctx, tx, coaster); err != nil {
				return fmt.Errorf("coaster %q: %w", coaster.Slug, err)
			}
		}
		coasterIDs = ids
		return s.parks.WithTx(tx).Delete(ctx, park.ID)
	})
	if err != nil {
		return fmt.Errorf("delete park %q: %w", parkSlug, err)
	}

	s.ratings.Invalidate(ctx, park.ID, coasterIDs...)
	publish(ctx, s.publisher, s.logger, mq.CatalogEvent{Kind: mq.EventParkDeleted, ParkID: park.ID})
	s.logger.Info("park deleted", zap.String("slug", parkSlug), zap.Int("coasters", len(coasterIDs)))
	return nil
}

// deleteCoasterTx deletes the coaster's reviews one by one, then the coaster.
func (s *catalogService) deleteCoasterTx(ctx context.Context, tx *gorm.DB, coaster *model.Coaster) error {
	reviews := s.reviews.WithTx(tx)
	ids, err := reviews.ChildIDs(ctx, coaster.ID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := reviews.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete review %d: %w", id, err)
		}
	}
	return s.coasters.WithTx(tx).Delete(ctx, coaster.ID)
}

func (s *catalogService) getPark(ctx context.Context, parkSlug string) (*model.Park, error) {
	park, err := s.parks.GetBySlug(ctx, parkSlug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, service.ErrNotFound
		}
		return nil, err
	}
	return park, nil
}
