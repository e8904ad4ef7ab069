package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/courieragent/internal/domain/errors"
	"github.com/polkiloo/courieragent/internal/server/http/dto"
	"github.com/polkiloo/courieragent/internal/server/http/middleware"
)

// CurrentDriverID extracts the authenticated driver identifier from context.
func CurrentDriverID(c *gin.Context) string {
	val, ok := c.Get(middleware.DriverIDContextKey)
	if !ok {
		return ""
	}
	id, _ := val.(string)
	return id
}

func orderIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid order id"})
		return 0, false
	}
	return id, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: msg})
}

// writeError translates a domain failure into a status code and body.
func writeError(c *gin.Context, err error) {
	var be *domainErrors.BackendError
	switch {
	case errors.As(err, &be):
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: be.UserMessage()})
	case errors.Is(err, domainErrors.ErrBackendUnreachable):
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: domainErrors.MessageUnreachable})
	case errors.Is(err, domainErrors.ErrVerificationPending),
		errors.Is(err, domainErrors.ErrDriverBusy):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrVerificationRejected):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrNotFound),
		errors.Is(err, domainErrors.ErrNoActiveSession),
		errors.Is(err, domainErrors.ErrProfileNotLoaded):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrInvalidAmount),
		errors.Is(err, domainErrors.ErrInvalidPeriod),
		errors.Is(err, domainErrors.ErrInvalidDeviceToken):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrInvalidLocation):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: domainErrors.MessageGeneric})
	}
}
