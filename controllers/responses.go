package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cafe-orders-api/config"
	"github.com/kendall-kelly/cafe-orders-api/middleware"
	"github.com/kendall-kelly/cafe-orders-api/models"
	"github.com/kendall-kelly/cafe-orders-api/serializers"
	"github.com/kendall-kelly/cafe-orders-api/services"
	"github.com/kendall-kelly/cafe-orders-api/utils"
)

const defaultPublicBaseURL = "http://localhost:8080"

// respondError writes the standard error envelope
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondValidationError writes a 400 with one message per offending field
func respondValidationError(c *gin.Context, ve *models.ValidationError) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"fields":  ve.Fields(),
		},
	})
}

// respondServiceError maps service errors onto the API error envelope
func respondServiceError(c *gin.Context, err error, action string) {
	var ve *models.ValidationError
	var conflict *services.ConflictError
	var notFound *services.NotFoundError

	switch {
	case errors.As(err, &ve):
		respondValidationError(c, ve)
	case errors.As(err, &conflict):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CONFLICT",
				"message": conflict.Message,
				"fields":  gin.H{conflict.Field: conflict.Message},
			},
		})
	case errors.As(err, &notFound):
		code := strings.ToUpper(strings.ReplaceAll(notFound.Resource, " ", "_")) + "_NOT_FOUND"
		respondError(c, http.StatusNotFound, code, capitalize(notFound.Error()))
	default:
		requestID, _ := middleware.GetRequestID(c)
		log.Printf("[%s] Failed to %s: %v", requestID, action, err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to "+action)
	}
}

// respondBindError reports binding tag failures as field errors and anything
// else as an undecodable body
func respondBindError(c *gin.Context, err error) {
	if ve, ok := serializers.BindingErrors(err); ok {
		respondValidationError(c, ve)
		return
	}
	respondInvalidBody(c, err)
}

// respondInvalidBody reports a body that could not be decoded
func respondInvalidBody(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

// parseIDParam reads a positive id path parameter, answering 404 when it is malformed
func parseIDParam(c *gin.Context, name, resource string) (uint, bool) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		code := strings.ToUpper(strings.ReplaceAll(resource, " ", "_")) + "_NOT_FOUND"
		respondError(c, http.StatusNotFound, code, capitalize(resource)+" not found")
	}
	return id, ok
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func pageSize() int {
	if cfg := config.GetConfig(); cfg != nil && cfg.PageSize > 0 {
		return cfg.PageSize
	}
	return config.DefaultPageSize
}

func publicBaseURL() string {
	if cfg := config.GetConfig(); cfg != nil && cfg.PublicBaseURL != "" {
		return cfg.PublicBaseURL
	}
	return defaultPublicBaseURL
}
