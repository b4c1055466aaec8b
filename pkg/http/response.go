package http

import (
	"net/http"
	"strconv"

	"github.com/facuhernandez99/shario-admin/pkg/errors"
	"github.com/facuhernandez99/shario-admin/pkg/models"
	"github.com/gin-gonic/gin"
)

// MaxPageSize caps the size query parameter
const MaxPageSize = 100

func envelope(c *gin.Context, status int, body models.APIResponse) {
	body.Success = status < http.StatusBadRequest
	c.JSON(status, body)
}

func RespondWithSuccess(c *gin.Context, data interface{}) {
	envelope(c, http.StatusOK, models.APIResponse{Data: data})
}

// RespondWithMessage answers 200 with a flash message for the page
func RespondWithMessage(c *gin.Context, message string, data interface{}) {
	envelope(c, http.StatusOK, models.APIResponse{Message: message, Data: data})
}

func RespondWithCreated(c *gin.Context, data interface{}) {
	envelope(c, http.StatusCreated, models.APIResponse{Data: data})
}

// RespondWithError answers with status and message; message is shown to the admin as is.
func RespondWithError(c *gin.Context, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	envelope(c, status, models.APIResponse{Error: message})
}

// RespondWithValidationErrors answers 400 with one message per form field
func RespondWithValidationErrors(c *gin.Context, fields map[string]string) {
	envelope(c, http.StatusBadRequest, models.APIResponse{
		Error: "Validation failed",
		Data:  gin.H{"validation_errors": fields},
	})
}

// RespondWithAppError answers with the error's status and its user-facing
// message, never the wrapped cause.
func RespondWithAppError(c *gin.Context, err error, fallback string) {
	status := errors.StatusCode(err)
	if status == 0 {
		status = http.StatusInternalServerError
	}
	RespondWithError(c, status, errors.UserMessage(err, fallback))
}

// RespondWithUnauthorized answers 401 with the path the page should navigate to
func RespondWithUnauthorized(c *gin.Context, message, redirect string) {
	if message == "" {
		message = "Unauthorized"
	}
	envelope(c, http.StatusUnauthorized, models.APIResponse{
		Error: message,
		Data:  gin.H{"redirect": redirect},
	})
}

func RespondWithInternalError(c *gin.Context, message string) {
	RespondWithError(c, http.StatusInternalServerError, message)
}

func positiveQuery(c *gin.Context, key string, fallback int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// GetPageFromQuery reads the 1-based "page" parameter, defaulting to 1
func GetPageFromQuery(c *gin.Context) int {
	return positiveQuery(c, "page", 1)
}

// GetSizeFromQuery reads the "size" parameter, capped at MaxPageSize
func GetSizeFromQuery(c *gin.Context, fallback int) int {
	return min(positiveQuery(c, "size", fallback), MaxPageSize)
}

// WantsJSON reports whether the caller is the page's fetch code rather than a
// browser navigation. A request without Accept counts as JSON.
func WantsJSON(c *gin.Context) bool {
	if c.GetHeader("Accept") == "" {
		return true
	}
	return c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEJSON
}

// AddNoCacheHeaders keeps session-dependent answers out of browser caches
func AddNoCacheHeaders(c *gin.Context) {
	h := c.Writer.Header()
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
}
