package response

import (
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"sheesh.app/server/pkg/apperror"
	"sheesh.app/server/pkg/ratelimit"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uint, error) {
	userIDStr, exists := c.Get("user_id")
	if !exists {
		return 0, apperror.ErrUnauthorized
	}

	raw, ok := userIDStr.(string)
	if !ok {
		return 0, apperror.ErrUnauthorized
	}

	userID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || userID == 0 {
		return 0, apperror.ErrUnauthorized
	}

	return uint(userID), nil
}

// ParseID parses a positive integer path parameter such as :group_id.
func ParseID(c *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.ErrInvalidInput
	}
	return uint(id), nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Server-side failures are logged in full; the client only sees a generic message.
	switch {
	case code == http.StatusServiceUnavailable:
		log.Printf("[Data Source Error]: %v", err)
		c.JSON(code, gin.H{"error": "service temporarily unavailable"})
		return
	case code >= http.StatusInternalServerError:
		log.Printf("[Internal Error]: %v", err)
		c.JSON(code, gin.H{"error": "internal server error"})
		return
	}

	var limited *ratelimit.Error
	if errors.As(err, &limited) {
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(limited.RetryAfter.Seconds()))))
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		c.JSON(code, gin.H{"error": appErr.Message})
		return
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
