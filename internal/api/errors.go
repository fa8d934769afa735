package api

import (
	"errors"
	"log"
	"net/http"

	"mindpath/therapy-app/internal/domain"
	"mindpath/therapy-app/internal/service"

	"github.com/gin-gonic/gin"
)

// respondWithServiceError maps a service failure onto an HTTP status.
func respondWithServiceError(c *gin.Context, err error, fallback string) {
	var genErr *service.GenerationError
	var prereq *service.PrerequisiteError
	var vErr *domain.ValidationError

	switch {
	case errors.As(err, &genErr):
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": service.ErrGenerationFailed.Error(), "kind": genErr.Kind})
	case errors.As(err, &prereq):
		abortWithError(c, http.StatusUnprocessableEntity, prereq.Error())
	case errors.As(err, &vErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": vErr.Fields})
	case errors.Is(err, service.ErrPlanAlreadyExists):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPlanNotFound), errors.Is(err, service.ErrWeekNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrQuotaExceeded):
		abortWithError(c, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, service.ErrMediaNotOwned):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidMedia):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		log.Printf("ERROR: %s: %v", fallback, err)
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}
