package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs-lzh/coaster-review/config"
	"github.com/qs-lzh/coaster-review/internal/app"
	"github.com/qs-lzh/coaster-review/internal/cache"
	"github.com/qs-lzh/coaster-review/internal/database"
	"github.com/qs-lzh/coaster-review/internal/handler"
	"github.com/qs-lzh/coaster-review/internal/mq"
)

const shutdownTimeout = 10 * time.Second

var autoMigrate bool

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, closeAll, err := newApp(ctx, cfg, logger, db)
		if err != nil {
			return err
		}
		defer closeAll()

		if autoMigrate {
			if err := database.Migrate(db); err != nil {
				return err
			}
		}
		if err := a.Init(ctx); err != nil {
			return err
		}

		if cfg.IsProduction() {
			gin.SetMode(gin.ReleaseMode)
		}
		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler.NewRouter(a),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("server listening", zap.String("addr", cfg.Addr))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "Migrate the database schema before serving")
}

// newApp takes ownership of db, connects the cache and the broker and wires
// the app. closeAll releases everything in reverse order. When newApp fails,
// whatever it already opened, db included, is closed before it returns.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, db *gorm.DB) (a *app.App, closeAll func(), err error) {
	var closers []func() error
	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("error during shutdown", zap.Error(err))
			}
		}
	}
	defer func() {
		if err != nil {
			release()
		}
	}()

	closers = append(closers, func() error { return database.Close(db) })

	redisCache, err := cache.NewRedisCache(cfg.CacheURL, cfg.RatingCacheTTL)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, redisCache.Close)
	if pingErr := redisCache.Ping(ctx); pingErr != nil {
		// ratings are computed from the database when the cache is down
		logger.Warn("redis unreachable, ratings will not be cached", zap.Error(pingErr))
	}

	var mqConn *amqp.Connection
	if cfg.MQURL != "" {
		if mqConn, err = mq.NewMQConn(cfg.MQURL); err != nil {
			return nil, nil, err
		}
		closers = append(closers, mqConn.Close)
	}

	a, err = app.New(cfg, db, redisCache, mqConn, logger)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, a.Close)
	return a, release, nil
}
