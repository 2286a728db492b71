package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/helpx-community/helpx-gateway/services"
	"github.com/helpx-community/helpx-gateway/state"
	"github.com/helpx-community/helpx-gateway/utils"
)

// respondError translates manager and client errors into the response
// envelope: validation errors are field-scoped, backend rejections carry
// the server's detail message when present, local store failures get
// their own code, and anything else that never reached the backend
// becomes a generic unreachable message.
func respondError(c *gin.Context, err error) {
	var validationErr *utils.ValidationError
	var apiErr *services.APIError
	var storeErr *services.StoreError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"field":   validationErr.Field,
				"message": validationErr.Message,
			},
		})
	case errors.Is(err, state.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_AUTHENTICATED",
				"message": "Please login first",
			},
		})
	case errors.Is(err, state.ErrSessionExpired):
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SESSION_EXPIRED",
				"message": "Your session has expired. Please login again.",
			},
		})
	case errors.Is(err, state.ErrNoServiceSelected):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NO_SERVICE_SELECTED",
				"message": "Select a service before booking",
			},
		})
	case errors.Is(err, state.ErrServiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SERVICE_NOT_FOUND",
				"message": "Service not found",
			},
		})
	case errors.Is(err, state.ErrRequestInFlight):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DUPLICATE_REQUEST",
				"message": "An identical request is already being processed",
			},
		})
	case errors.As(err, &storeErr):
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORE_ERROR",
				"message": "Failed to access local storage",
			},
		})
	case errors.As(err, &apiErr):
		message := apiErr.Detail
		if message == "" {
			message = "The request was rejected"
		}
		c.JSON(apiErr.StatusCode, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPSTREAM_REJECTED",
				"message": message,
			},
		})
	default:
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BACKEND_UNREACHABLE",
				"message": "Request failed. Make sure the backend is running!",
			},
		})
	}
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}
