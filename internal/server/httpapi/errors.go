package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/storysync/internal/common"
)

// envelope is the response shape every endpoint shares.
type envelope struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

func jsonOK(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Message: message})
}

func jsonError(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Error: true, Message: message})
}

func abortJSONError(c *gin.Context, status int, message string) {
	jsonError(c, status, message)
	c.Abort()
}

// statusFor maps service errors to an HTTP status and a message that is safe
// to show the caller.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, strings.TrimPrefix(err.Error(), common.ErrorValidation.Error()+": ")
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, "already exists"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not found"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
