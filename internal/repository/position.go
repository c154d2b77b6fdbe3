package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// nextPosition locks the parent row and returns the position after the
// parent's last child. Run it in the transaction that creates the child so
// concurrent appends to one parent queue up behind the lock.
func nextPosition(ctx context.Context, db *gorm.DB, parent any, child any, fk string, parentID uint) (int, error) {
	var locked []uint
	err := db.WithContext(ctx).
		Model(parent).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ?", parentID).
		Pluck("id", &locked).Error
	if err != nil {
		return 0, err
	}

	var next int
	err = db.WithContext(ctx).
		Model(child).
		Where(fk+" = ?", parentID).
		Select("COALESCE(MAX(position) + 1, 0)").
		Scan(&next).Error
	return next, err
}
