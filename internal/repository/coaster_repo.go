package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/coaster-review/internal/model"
)

// CoasterRepo also maintains each park's ordered coaster list.
type CoasterRepo interface {
	WithTx(tx *gorm.DB) CoasterRepo
	Append(ctx context.Context, parkID uint, coaster *model.Coaster) error
	GetByID(ctx context.Context, id uint) (*model.Coaster, error)
	GetBySlug(ctx context.Context, slug string) (*model.Coaster, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ChildIDs(ctx context.Context, parkID uint) ([]uint, error)
	FindIn(ctx context.Context, ids []uint) ([]model.Coaster, error)
	Delete(ctx context.Context, id uint) error
}

type coasterRepoGorm struct {
	db  *gorm.DB
	col *Collection[model.Coaster]
}

var _ CoasterRepo = (*coasterRepoGorm)(nil)

func NewCoasterRepoGorm(db *gorm.DB) *coasterRepoGorm {
	return &coasterRepoGorm{
		db:  db,
		col: NewCollection[model.Coaster](db),
	}
}

func (r *coasterRepoGorm) WithTx(tx *gorm.DB) CoasterRepo {
	return &coasterRepoGorm{
		db:  tx,
		col: r.col.WithTx(tx),
	}
}

// Append adds coaster at the end of the park's list. Call it inside a
// transaction.
func (r *coasterRepoGorm) Append(ctx context.Context, parkID uint, coaster *model.Coaster) error {
	position, err := nextPosition(ctx, r.db, &model.Park{}, &model.Coaster{}, "park_id", parkID)
	if err != nil {
		return err
	}
	coaster.ParkID = parkID
	coaster.Position = position
	return r.col.Create(ctx, coaster)
}

func (r *coasterRepoGorm) GetByID(ctx context.Context, id uint) (*model.Coaster, error) {
	return r.col.FindByID(ctx, id)
}

func (r *coasterRepoGorm) GetBySlug(ctx context.Context, slug string) (*model.Coaster, error) {
	if slug == "" {
		return nil, ErrNotFound
	}
	return r.col.FindOne(ctx, &model.Coaster{Slug: slug})
}

func (r *coasterRepoGorm) SlugExists(ctx context.Context, slug string) (bool, error) {
	return r.col.Exists(ctx, &model.Coaster{Slug: slug})
}

func (r *coasterRepoGorm) ChildIDs(ctx context.Context, parkID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&model.Coaster{}).
		Where("park_id = ?", parkID).
		Order("position, id").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *coasterRepoGorm) FindIn(ctx context.Context, ids []uint) ([]model.Coaster, error) {
	return r.col.FindIn(ctx, ids)
}

func (r *coasterRepoGorm) Delete(ctx context.Context, id uint) error {
	return r.col.DeleteOne(ctx, &model.Coaster{ID: id})
}
