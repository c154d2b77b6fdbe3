package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs-lzh/coaster-review/internal/model"
	"github.com/qs-lzh/coaster-review/internal/mq"
	"github.com/qs-lzh/coaster-review/internal/repository"
	"github.com/qs-lzh/coaster-review/internal/service"
	"github.com/qs-lzh/coaster-review/internal/slug"
	"github.com/qs-lzh/coaster-review/internal/validation"
)

type ReviewService interface {
	PostReview(ctx context.Context, coasterSlug string, author *model.User, rating int, body string) (*model.Review, error)
	// DeleteReview is allowed for the review's author and for admins.
	DeleteReview(ctx context.Context, reviewSlug string, actor *model.User) error
}

type reviewService struct {
	db        *gorm.DB
	coasters  repository.CoasterRepo
	reviews   repository.ReviewRepo
	ratings   RatingService
	publisher EventPublisher
	logger    *zap.Logger

	now func() time.Time
}

var _ ReviewService = (*reviewService)(nil)

func NewReviewService(
	db *gorm.DB,
	coasterRepo repository.CoasterRepo,
	reviewRepo repository.ReviewRepo,
	ratingService RatingService,
	publisher EventPublisher,
	logger *zap.Logger,
) *reviewService {
	return &reviewService{
		db:        db,
		coasters:  coasterRepo,
		reviews:   reviewRepo,
		ratings:   ratingService,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *reviewService) PostReview(ctx context.Context, coasterSlug string, author *model.User, rating int, body string) (*model.Review, error) {
	if author == nil {
		return nil, service.ErrForbidden
	}
	if err := validation.ValidateRating(rating); err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrInvalidRating, err)
	}
	body, err := validation.NormalizeBody(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrInvalidReview, err)
	}

	coaster, err := s.coasters.GetBySlug(ctx, coasterSlug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, service.ErrNotFound
		}
		return nil, err
	}

	review := &model.Review{
		AuthorID: author.ID,
		Rating:   rating,
		Body:     body,
		PostedAt: s.now().UTC(),
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		reviews := s.reviews.WithTx(tx)
		reviewSlug, err := slug.Suffixed(ctx, author.Username, reviews.SlugExists)
		if err != nil {
			return err
		}
		review.Slug = reviewSlug
		return reviews.Append(ctx, coaster.ID, review)
	})
	if err != nil {
		return nil, fmt.Errorf("post review on %q: %w", coasterSlug, err)
	}
	review.Author = *author

	s.ratings.Invalidate(ctx, coaster.ParkID, coaster.ID)
	publish(ctx, s.publisher, s.logger, mq.CatalogEvent{
		Kind:      mq.EventReviewPosted,
		ParkID:    coaster.ParkID,
		CoasterID: coaster.ID,
	})
	return review, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, reviewSlug string, actor *model.User) error {
	review, err := s.reviews.GetBySlug(ctx, reviewSlug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		return err
	}
	if actor == nil || (actor.ID != review.AuthorID && actor.Role != model.RoleAdmin) {
		return service.ErrForbidden
	}

	if err := s.reviews.Delete(ctx, review.ID); err != nil {
		return fmt.Errorf("delete review %q: %w", reviewSlug, err)
	}

	var parkID uint
	if coaster, err := s.coasters.GetByID(ctx, review.CoasterID); err == nil {
		parkID = coaster.ParkID
	}
	s.ratings.Invalidate(ctx, parkID, review.CoasterID)
	publish(ctx, s.publisher, s.logger, mq.CatalogEvent{
		Kind:      mq.EventReviewDeleted,
		ParkID:    parkID,
		CoasterID: review.CoasterID,
	})
	s.logger.Info("review deleted", zap.String("slug", reviewSlug), zap.Uint("actor_id", actor.ID))
	return nil
}
