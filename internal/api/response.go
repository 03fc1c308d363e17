package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"catalog-search/internal/common/errors"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondStandardError writes err with the status its code maps to.
func RespondStandardError(c *gin.Context, err error) {
	stdErr := errors.Normalize(err)
	c.JSON(errors.HTTPStatus(stdErr.Code), ErrorEnvelope{
		Error: APIError{
			Message: stdErr.Message,
			Code:    string(stdErr.Code),
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
