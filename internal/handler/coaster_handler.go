package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/coaster-review/internal/app"
	"github.com/qs-lzh/coaster-review/internal/middleware"
)

type CoasterHandler struct {
	app *app.App
}

func NewCoasterHandler(app *app.App) *CoasterHandler {
	return &CoasterHandler{
		app: app,
	}
}

type PostReviewRequest struct {
	Rating int    `form:"rating" json:"rating"`
	Body   string `form:"body" json:"body"`
}

func (h *CoasterHandler) HandleGet(ctx *gin.Context) {
	detail, err := h.app.CatalogService.GetCoaster(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

func (h *CoasterHandler) HandleDelete(ctx *gin.Context) {
	if err := h.app.CatalogService.DeleteCoaster(ctx.Request.Context(), ctx.Param("slug")); err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (h *CoasterHandler) HandlePostReview(ctx *gin.Context) {
	var req PostReviewRequest
	if err := ctx.ShouldBind(&req); err != nil {
		respondBadRequest(ctx, err)
		return
	}

	author := middleware.CurrentSession(ctx).User()
	review, err := h.app.ReviewService.PostReview(ctx.Request.Context(), ctx.Param("slug"), author, req.Rating, req.Body)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"review": review})
}
