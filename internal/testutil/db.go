// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/qs-lzh/coaster-review/internal/cache"
	"github.com/qs-lzh/coaster-review/internal/model"
)

// NewDB opens a private in-memory SQLite database with the schema migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	// one connection keeps transactions and plain reads from locking each other
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// NewCache starts a miniredis server and returns a cache bound to it.
func NewCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := cache.NewRedisCache(mr.Addr(), time.Minute)
	if err != nil {
		t.Fatalf("Failed to create redis cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

// Seed inserts a park with coasters, each coaster getting the given ratings as
// reviews by author. It bypasses the services so tests can shape the graph.
func Seed(t *testing.T, db *gorm.DB, author *model.User, parkSlug string, coasterRatings ...[]int) (*model.Park, []model.Coaster) {
	t.Helper()
	ctx := context.Background()

	park := &model.Park{Name: parkSlug, Location: "Somewhere", Slug: parkSlug}
	if err := gorm.G[model.Park](db).Create(ctx, park); err != nil {
		t.Fatalf("seed park: %v", err)
	}

	coasters := make([]model.Coaster, 0, len(coasterRatings))
	for i, ratings := range coasterRatings {
		c := model.Coaster{
			ParkID:   park.ID,
			Position: i,
			Name:     fmt.Sprintf("%s coaster %d", parkSlug, i),
			Slug:     fmt.Sprintf("%s-coaster-%d", parkSlug, i),
		}
		if err := gorm.G[model.Coaster](db).Create(ctx, &c); err != nil {
			t.Fatalf("seed coaster: %v", err)
		}
		for j, r := range ratings {
			review := model.Review{
				CoasterID: c.ID,
				Position:  j,
				AuthorID:  author.ID,
				Rating:    r,
				Body:      "seeded",
				Slug:      fmt.Sprintf("%s-%d-%d", c.Slug, i, j),
				PostedAt:  time.Now(),
			}
			if err := db.Omit("Author").Create(&review).Error; err != nil {
				t.Fatalf("seed review: %v", err)
			}
		}
		coasters = append(coasters, c)
	}
	return park, coasters
}

// SeedUser inserts a user with a placeholder hash.
func SeedUser(t *testing.T, db *gorm.DB, username string, role model.UserRole) *model.User {
	t.Helper()
	u := &model.User{Username: username, HashedPassword: "x", Role: role}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}
