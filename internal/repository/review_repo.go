package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/coaster-review/internal/model"
)

// ReviewRepo also maintains each coaster's ordered review list. Reviews are
// always returned with their author loaded.
type ReviewRepo interface {
	WithTx(tx *gorm.DB) ReviewRepo
	Append(ctx context.Context, coasterID uint, review *model.Review) error
	GetBySlug(ctx context.Context, slug string) (*model.Review, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ChildIDs(ctx context.Context, coasterID uint) ([]uint, error)
	FindIn(ctx context.Context, ids []uint) ([]model.Review, error)
	Delete(ctx context.Context, id uint) error
	DeleteMany(ctx context.Context, ids []uint) (int, error)
}

type reviewRepoGorm struct {
	db  *gorm.DB
	col *Collection[model.Review]
}

var _ ReviewRepo = (*reviewRepoGorm)(nil)

func NewReviewRepoGorm(db *gorm.DB) *reviewRepoGorm {
	return &reviewRepoGorm{
		db:  db,
		col: NewCollection[model.Review](db),
	}
}

func (r *reviewRepoGorm) WithTx(tx *gorm.DB) ReviewRepo {
	return &reviewRepoGorm{
		db:  tx,
		col: r.col.WithTx(tx),
	}
}

func (r *reviewRepoGorm) Append(ctx context.Context, coasterID uint, review *model.Review) error {
	position, err := nextPosition(ctx, r.db, &model.Coaster{}, &model.Review{}, "coaster_id", coasterID)
	if err != nil {
		return err
	}
	review.CoasterID = coasterID
	review.Position = position
	return r.db.WithContext(ctx).Omit("Author").Create(review).Error
}

func (r *reviewRepoGorm) GetBySlug(ctx context.Context, slug string) (*model.Review, error) {
	if slug == "" {
		return nil, ErrNotFound
	}
	var review model.Review
	err := r.db.WithContext(ctx).Preload("Author").Where(&model.Review{Slug: slug}).First(&review).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &review, nil
}

func (r *reviewRepoGorm) SlugExists(ctx context.Context, slug string) (bool, error) {
	return r.col.Exists(ctx, &model.Review{Slug: slug})
}

func (r *reviewRepoGorm) ChildIDs(ctx context.Context, coasterID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Where("coaster_id = ?", coasterID).
		Order("position, id").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *reviewRepoGorm) FindIn(ctx context.Context, ids []uint) ([]model.Review, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var reviews []model.Review
	err := r.db.WithContext(ctx).Preload("Author").Where("id IN ?", ids).Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepoGorm) Delete(ctx context.Context, id uint) error {
	return r.col.DeleteOne(ctx, &model.Review{ID: id})
}

func (r *reviewRepoGorm) DeleteMany(ctx context.Context, ids []uint) (int, error) {
	return r.col.DeleteMany(ctx, ids)
}
