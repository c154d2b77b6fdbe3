package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/coaster-review/internal/app"
	"github.com/qs-lzh/coaster-review/internal/middleware"
)

type ReviewHandler struct {
	app *app.App
}

func NewReviewHandler(app *app.App) *ReviewHandler {
	return &ReviewHandler{
		app: app,
	}
}

// HandleDelete lets authors remove their own reviews and admins remove any.
func (h *ReviewHandler) HandleDelete(ctx *gin.Context) {
	actor := middleware.CurrentSession(ctx).User()
	if err := h.app.ReviewService.DeleteReview(ctx.Request.Context(), ctx.Param("slug"), actor); err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
