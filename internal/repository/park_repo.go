package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/coaster-review/internal/model"
)

type ParkRepo interface {
	WithTx(tx *gorm.DB) ParkRepo
	Create(ctx context.Context, park *model.Park) error
	GetByID(ctx context.Context, id uint) (*model.Park, error)
	GetBySlug(ctx context.Context, slug string) (*model.Park, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListAll(ctx context.Context) ([]model.Park, error)
	Delete(ctx context.Context, id uint) error
}

type parkRepoGorm struct {
	col *Collection[model.Park]
}

var _ ParkRepo = (*parkRepoGorm)(nil)

func NewParkRepoGorm(db *gorm.DB) *parkRepoGorm {
	return &parkRepoGorm{
		col: NewCollection[model.Park](db),
	}
}

func (r *parkRepoGorm) WithTx(tx *gorm.DB) ParkRepo {
	return &parkRepoGorm{
		col: r.col.WithTx(tx),
	}
}

func (r *parkRepoGorm) Create(ctx context.Context, park *model.Park) error {
	return r.col.Create(ctx, park)
}

func (r *parkRepoGorm) GetByID(ctx context.Context, id uint) (*model.Park, error) {
	return r.col.FindByID(ctx, id)
}

func (r *parkRepoGorm) GetBySlug(ctx context.Context, slug string) (*model.Park, error) {
	if slug == "" {
		return nil, ErrNotFound
	}
	return r.col.FindOne(ctx, &model.Park{Slug: slug})
}

func (r *parkRepoGorm) SlugExists(ctx context.Context, slug string) (bool, error) {
	return r.col.Exists(ctx, &model.Park{Slug: slug})
}

func (r *parkRepoGorm) ListAll(ctx context.Context) ([]model.Park, error) {
	return r.col.Find(ctx, nil, "name", "id")
}

func (r *parkRepoGorm) Delete(ctx context.Context, id uint) error {
	return r.col.DeleteOne(ctx, &model.Park{ID: id})
}
