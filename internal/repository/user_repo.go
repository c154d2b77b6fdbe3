package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/coaster-review/internal/model"
)

type UserRepo interface {
	WithTx(tx *gorm.DB) UserRepo
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

type userRepoGorm struct {
	col *Collection[model.User]
}

var _ UserRepo = (*userRepoGorm)(nil)

func NewUserRepoGorm(db *gorm.DB) *userRepoGorm {
	return &userRepoGorm{
		col: NewCollection[model.User](db),
	}
}

func (r *userRepoGorm) WithTx(tx *gorm.DB) UserRepo {
	return &userRepoGorm{
		col: r.col.WithTx(tx),
	}
}

func (r *userRepoGorm) Create(ctx context.Context, user *model.User) error {
	return r.col.Create(ctx, user)
}

func (r *userRepoGorm) GetByID(ctx context.Context, id uint) (*model.User, error) {
	return r.col.FindByID(ctx, id)
}

func (r *userRepoGorm) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if username == "" {
		return nil, ErrNotFound
	}
	return r.col.FindOne(ctx, &model.User{Username: username})
}

func (r *userRepoGorm) UsernameExists(ctx context.Context, username string) (bool, error) {
	if username == "" {
		return false, nil
	}
	return r.col.Exists(ctx, &model.User{Username: username})
}
