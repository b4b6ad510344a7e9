package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/storysync/internal/common"
	"github.com/dmitrijs2005/storysync/internal/logging"
)

const userIDKey = "userID"

// requireAuth accepts "Authorization: Bearer <token>" and stores the user id
// in the gin context.
func requireAuth(users Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader(common.AuthorizationHeader)
		if !strings.HasPrefix(h, common.BearerPrefix) {
			abortJSONError(c, http.StatusUnauthorized, "missing authentication")
			return
		}
		userID, err := users.Authenticate(strings.TrimSpace(strings.TrimPrefix(h, common.BearerPrefix)))
		if err != nil {
			abortJSONError(c, http.StatusUnauthorized, err.Error())
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		}
		if len(c.Errors) > 0 {
			args = append(args, "error", c.Errors.String())
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error(c.Request.Context(), "request failed", args...)
			return
		}
		logger.Info(c.Request.Context(), "request", args...)
	}
}
