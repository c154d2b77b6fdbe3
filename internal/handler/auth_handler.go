package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/coaster-review/internal/app"
	"github.com/qs-lzh/coaster-review/internal/middleware"
)

type AuthHandler struct {
	app *app.App
}

func NewAuthHandler(app *app.App) *AuthHandler {
	return &AuthHandler{
		app: app,
	}
}

type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

type RegisterRequest struct {
	Username        string `form:"username" json:"username"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// HandleShowLogin returns the pending flash messages, such as the notice left
// by a guard that redirected here.
func (h *AuthHandler) HandleShowLogin(ctx *gin.Context) {
	flashes, err := h.app.Sessions.Flashes(ctx.Writer, ctx.Request)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	if flashes == nil {
		flashes = []string{}
	}
	ctx.JSON(http.StatusOK, gin.H{
		"authenticated": middleware.CurrentSession(ctx).IsAuthenticated(),
		"flashes":       flashes,
	})
}

func (h *AuthHandler) HandleLogin(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBind(&req); err != nil {
		respondBadRequest(ctx, err)
		return
	}

	user, err := h.app.AuthService.Login(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	if err := h.app.Sessions.Login(ctx.Writer, ctx.Request, user.ID); err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Logged in",
		"user":    user,
	})
}

func (h *AuthHandler) HandleRegister(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBind(&req); err != nil {
		respondBadRequest(ctx, err)
		return
	}

	user, err := h.app.AuthService.Register(ctx.Request.Context(), req.Username, req.Password, req.ConfirmPassword)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	// registering signs the new user in
	if err := h.app.Sessions.Login(ctx.Writer, ctx.Request, user.ID); err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Account created",
		"user":    user,
	})
}

func (h *AuthHandler) HandleLogout(ctx *gin.Context) {
	if err := h.app.Sessions.Logout(ctx.Writer, ctx.Request); err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *AuthHandler) HandleMe(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"user": middleware.CurrentSession(ctx).User()})
}
