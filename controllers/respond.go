package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duwalace/App-Rango-sub000/apperrors"
)

// respondError maps the service error taxonomy onto HTTP statuses. Validation
// and transition failures block the action and leave state unchanged, so the
// client re-presents the previous state with the returned message.
func respondError(ctx *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperrors.IsValidation(err):
		status = http.StatusBadRequest
	case apperrors.IsNotFound(err):
		status = http.StatusNotFound
	case apperrors.IsInvalidTransition(err), apperrors.IsConflict(err):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		ctx.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}
