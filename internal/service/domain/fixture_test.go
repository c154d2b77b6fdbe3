package domain

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs-lzh/coaster-review/internal/model"
	"github.com/qs-lzh/coaster-review/internal/mq"
	"github.com/qs-lzh/coaster-review/internal/rating"
	"github.com/qs-lzh/coaster-review/internal/repository"
	"github.com/qs-lzh/coaster-review/internal/testutil"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event mq.CatalogEvent) error {
	return m.Called(ctx, event).Error(0)
}

type fixture struct {
	db        *gorm.DB
	mr        *miniredis.Miniredis
	logs      *observer.ObservedLogs
	publisher *mockPublisher

	users    repository.UserRepo
	parks    repository.ParkRepo
	coasters repository.CoasterRepo
	reviews  repository.ReviewRepo
	resolver *repository.Resolver

	auth    *authService
	ratings *ratingService
	catalog *catalogService
	review  *reviewService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	redisCache, mr := testutil.NewCache(t)
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	publisher := &mockPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

	f := &fixture{
		db:        db,
		mr:        mr,
		logs:      logs,
		publisher: publisher,
		users:     repository.NewUserRepoGorm(db),
		parks:     repository.NewParkRepoGorm(db),
		coasters:  repository.NewCoasterRepoGorm(db),
		reviews:   repository.NewReviewRepoGorm(db),
	}
	resolver := repository.NewResolver(f.coasters, f.reviews)
	f.resolver = resolver

	f.auth = NewAuthService(db, f.users, bcrypt.MinCost, logger)
	f.ratings = NewRatingService(redisCache, f.parks, f.coasters, resolver, logger)
	f.catalog = NewCatalogService(db, f.parks, f.coasters, f.reviews, f.ratings, publisher, logger)
	f.review = NewReviewService(db, f.coasters, f.reviews, f.ratings, publisher, logger)
	return f
}

func (f *fixture) user(t *testing.T, username string, role model.UserRole) *model.User {
	t.Helper()
	return testutil.SeedUser(t, f.db, username, role)
}

func (f *fixture) coasterView(t *testing.T, coaster model.Coaster) rating.CoasterView {
	t.Helper()
	view, err := f.resolver.ResolveCoaster(context.Background(), coaster)
	if err != nil {
		t.Fatalf("resolve coaster: %v", err)
	}
	return view
}

func (f *fixture) count(t *testing.T, m any) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(m).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
