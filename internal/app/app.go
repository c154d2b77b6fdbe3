package app

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs-lzh/coaster-review/config"
	"github.com/qs-lzh/coaster-review/internal/auth"
	"github.com/qs-lzh/coaster-review/internal/cache"
	"github.com/qs-lzh/coaster-review/internal/mq"
	"github.com/qs-lzh/coaster-review/internal/repository"
	"github.com/qs-lzh/coaster-review/internal/service/domain"
	"github.com/qs-lzh/coaster-review/internal/service/workflow"
)

type App struct {
	Config *config.Config

	DB       *gorm.DB
	Cache    *cache.RedisCache
	Logger   *zap.Logger
	MQConn   *amqp.Connection
	Producer *mq.Producer
	Sessions *auth.Manager

	UserRepo    repository.UserRepo
	ParkRepo    repository.ParkRepo
	CoasterRepo repository.CoasterRepo
	ReviewRepo  repository.ReviewRepo

	AuthService    domain.AuthService
	RatingService  domain.RatingService
	CatalogService domain.CatalogService
	ReviewService  domain.ReviewService

	RatingWorkflow *workflow.RatingWorkflow
}

// New wires the application. mqConn may be nil, in which case no catalog
// events are published or consumed.
func New(cfg *config.Config, db *gorm.DB, redisCache *cache.RedisCache, mqConn *amqp.Connection, logger *zap.Logger) (*App, error) {
	userRepo := repository.NewUserRepoGorm(db)
	parkRepo := repository.NewParkRepoGorm(db)
	coasterRepo := repository.NewCoasterRepoGorm(db)
	reviewRepo := repository.NewReviewRepoGorm(db)
	resolver := repository.NewResolver(coasterRepo, reviewRepo)

	var producer *mq.Producer
	var publisher domain.EventPublisher
	if mqConn != nil {
		p, err := mq.NewProducer(mqConn)
		if err != nil {
			return nil, err
		}
		producer, publisher = p, p
	}

	authService := domain.NewAuthService(db, userRepo, cfg.BcryptCost, logger)
	ratingService := domain.NewRatingService(redisCache, parkRepo, coasterRepo, resolver, logger)
	catalogService := domain.NewCatalogService(db, parkRepo, coasterRepo, reviewRepo, ratingService, publisher, logger)
	reviewService := domain.NewReviewService(db, coasterRepo, reviewRepo, ratingService, publisher, logger)

	ratingWorkflow := workflow.NewRatingWorkflow(ratingService, logger)

	return &App{
		Config:         cfg,
		DB:             db,
		Cache:          redisCache,
		Logger:         logger,
		MQConn:         mqConn,
		Producer:       producer,
		Sessions:       auth.NewManager(cfg.SessionSecret, cfg.IsProduction()),
		UserRepo:       userRepo,
		ParkRepo:       parkRepo,
		CoasterRepo:    coasterRepo,
		ReviewRepo:     reviewRepo,
		AuthService:    authService,
		RatingService:  ratingService,
		CatalogService: catalogService,
		ReviewService:  reviewService,
		RatingWorkflow: ratingWorkflow,
	}, nil
}

// Init declares the queues and starts the rating workflow. It is a no-op
// without a broker connection.
func (app *App) Init(ctx context.Context) error {
	if app.MQConn == nil {
		app.Logger.Info("no message broker configured, catalog events disabled")
		return nil
	}

	// init rabbit mq
	if err := mq.InitQueues(app.MQConn); err != nil {
		return err
	}
	return app.RatingWorkflow.Start(ctx, app.MQConn)
}

// Close releases what New opened. The database, cache and broker connection
// passed to New stay open and belong to the caller.
func (app *App) Close() error {
	if app.Producer != nil {
		return app.Producer.Close()
	}
	return nil
}
