package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/coaster-review/internal/app"
	"github.com/qs-lzh/coaster-review/internal/middleware"
)

func NewRouter(app *app.App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(app.Logger))
	r.Use(middleware.LoadSession(app.Sessions, app.AuthService, app.Logger))

	requireAuth := middleware.RequireAuthenticated(app.Sessions, app.Logger)
	requireAdmin := middleware.RequireAdmin()

	authHandler := NewAuthHandler(app)
	parkHandler := NewParkHandler(app)
	coasterHandler := NewCoasterHandler(app)
	reviewHandler := NewReviewHandler(app)

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/login", authHandler.HandleShowLogin)
	r.POST("/login", authHandler.HandleLogin)
	r.POST("/register", authHandler.HandleRegister)
	r.POST("/logout", authHandler.HandleLogout)
	r.GET("/me", requireAuth, authHandler.HandleMe)

	parks := r.Group("/parks")
	parks.GET("", parkHandler.HandleList)
	parks.POST("", requireAdmin, parkHandler.HandleCreate)
	parks.GET("/:slug", parkHandler.HandleGet)
	parks.DELETE("/:slug", requireAdmin, parkHandler.HandleDelete)
	parks.POST("/:slug/coasters", requireAdmin, parkHandler.HandleCreateCoaster)

	coasters := r.Group("/coasters")
	coasters.GET("/:slug", coasterHandler.HandleGet)
	coasters.DELETE("/:slug", requireAdmin, coasterHandler.HandleDelete)
	coasters.POST("/:slug/reviews", requireAuth, coasterHandler.HandlePostReview)

	r.DELETE("/reviews/:slug", requireAuth, reviewHandler.HandleDelete)

	return r
}
