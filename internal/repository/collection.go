package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// Collection is the generic store adapter for one entity type. Conditions are
// passed as a pointer to a partially filled entity; zero fields are ignored.
type Collection[T any] struct {
	db *gorm.DB
}

func NewCollection[T any](db *gorm.DB) *Collection[T] {
	return &Collection[T]{db: db}
}

func (c *Collection[T]) WithTx(tx *gorm.DB) *Collection[T] {
	return &Collection[T]{db: tx}
}

func (c *Collection[T]) Create(ctx context.Context, v *T) error {
	return gorm.G[T](c.db).Create(ctx, v)
}

func (c *Collection[T]) Find(ctx context.Context, cond *T, order ...string) ([]T, error) {
	q := c.where(cond)
	for _, o := range order {
		q = q.Order(o)
	}
	if len(order) == 0 {
		q = q.Order("id")
	}
	return q.Find(ctx)
}

// FindIn loads the entities with the given ids. Order is unspecified.
func (c *Collection[T]) FindIn(ctx context.Context, ids []uint) ([]T, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return gorm.G[T](c.db).Where("id IN ?", ids).Find(ctx)
}

func (c *Collection[T]) FindOne(ctx context.Context, cond *T) (*T, error) {
	v, err := gorm.G[T](c.db).Where(cond).First(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return &v, nil
}

func (c *Collection[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	v, err := gorm.G[T](c.db).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return &v, nil
}

// UpdateOne sets one column on the entity matching cond.
func (c *Collection[T]) UpdateOne(ctx context.Context, cond *T, column string, value any) error {
	n, err := gorm.G[T](c.db).Where(cond).Update(ctx, column, value)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOne removes the entity matching cond. Deleting nothing is not an error.
func (c *Collection[T]) DeleteOne(ctx context.Context, cond *T) error {
	_, err := gorm.G[T](c.db).Where(cond).Delete(ctx)
	return err
}

func (c *Collection[T]) DeleteMany(ctx context.Context, ids []uint) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return gorm.G[T](c.db).Where("id IN ?", ids).Delete(ctx)
}

func (c *Collection[T]) Count(ctx context.Context, cond *T) (int64, error) {
	return c.where(cond).Count(ctx, "id")
}

func (c *Collection[T]) Exists(ctx context.Context, cond *T) (bool, error) {
	n, err := c.Count(ctx, cond)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *Collection[T]) where(cond *T) gorm.ChainInterface[T] {
	if cond == nil {
		// no scopes, just moves the builder into its chain state
		return gorm.G[T](c.db).Scopes()
	}
	return gorm.G[T](c.db).Where(cond)
}

func mapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
