package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs-lzh/coaster-review/internal/service"
)

// publicErrors are safe to show as is, in match order.
var publicErrors = []struct {
	err    error
	status int
}{
	{service.ErrPasswordMismatch, http.StatusBadRequest},
	{service.ErrInvalidUsername, http.StatusBadRequest},
	{service.ErrInvalidPassword, http.StatusBadRequest},
	{service.ErrUsernameTaken, http.StatusBadRequest},
	{service.ErrInvalidRating, http.StatusBadRequest},
	{service.ErrInvalidReview, http.StatusBadRequest},
	{service.ErrInvalidName, http.StatusBadRequest},
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrNotFound, http.StatusNotFound},
}

// respondError maps service errors to a status and message. Anything else is
// logged and reported as a generic internal error.
func respondError(ctx *gin.Context, logger *zap.Logger, err error) {
	for _, pe := range publicErrors {
		if errors.Is(err, pe.err) {
			ctx.JSON(pe.status, gin.H{"error": pe.err.Error()})
			return
		}
	}

	logger.Error("request failed",
		zap.String("method", ctx.Request.Method),
		zap.String("path", ctx.Request.URL.Path),
		zap.Error(err),
	)
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": service.ErrInternal.Error()})
}

func respondBadRequest(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, gin.H{
		"error":  "Invalid request format",
		"detail": err.Error(),
	})
}
