package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/coaster-review/internal/app"
)

type ParkHandler struct {
	app *app.App
}

func NewParkHandler(app *app.App) *ParkHandler {
	return &ParkHandler{
		app: app,
	}
}

type CreateParkRequest struct {
	Name     string `form:"name" json:"name"`
	Location string `form:"location" json:"location"`
}

type CreateCoasterRequest struct {
	Name string `form:"name" json:"name"`
}

func (h *ParkHandler) HandleList(ctx *gin.Context) {
	parks, err := h.app.CatalogService.ListParks(ctx.Request.Context())
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"parks": parks})
}

func (h *ParkHandler) HandleCreate(ctx *gin.Context) {
	var req CreateParkRequest
	if err := ctx.ShouldBind(&req); err != nil {
		respondBadRequest(ctx, err)
		return
	}

	park, err := h.app.CatalogService.CreatePark(ctx.Request.Context(), req.Name, req.Location)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"park": park})
}

func (h *ParkHandler) HandleGet(ctx *gin.Context) {
	detail, err := h.app.CatalogService.GetPark(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

func (h *ParkHandler) HandleDelete(ctx *gin.Context) {
	if err := h.app.CatalogService.DeletePark(ctx.Request.Context(), ctx.Param("slug")); err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (h *ParkHandler) HandleCreateCoaster(ctx *gin.Context) {
	var req CreateCoasterRequest
	if err := ctx.ShouldBind(&req); err != nil {
		respondBadRequest(ctx, err)
		return
	}

	coaster, err := h.app.CatalogService.CreateCoaster(ctx.Request.Context(), ctx.Param("slug"), req.Name)
	if err != nil {
		respondError(ctx, h.app.Logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"coaster": coaster})
}
