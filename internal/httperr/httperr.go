package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

func Conflict(c *gin.Context, code, message string) {
	Write(c, http.StatusConflict, code, message)
}

// Status maps an error to its HTTP status and public code.
func Status(err error) (int, string) {
	var (
		ve ValidationError
		ce ConflictError
		ne NotFoundError
		fe ForbiddenError
		be BusinessError
	)

	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Code
	case errors.As(err, &ce):
		return http.StatusConflict, ce.Code
	case IsExclusionConflict(err):
		return http.StatusConflict, "time_conflict"
	case errors.As(err, &ne):
		return http.StatusNotFound, ne.Code
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "not_found"
	case errors.As(err, &fe):
		return http.StatusForbidden, fe.Code
	case errors.As(err, &be):
		return http.StatusBadRequest, be.Code
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// Respond writes err using Status. Internal errors never leak their text.
func Respond(c *gin.Context, err error) {
	status, code := Status(err)

	message := code
	switch status {
	case http.StatusInternalServerError:
		message = "Erro interno."
	case http.StatusConflict:
		message = "Horário não está mais disponível."
	default:
		var ve ValidationError
		if errors.As(err, &ve) && ve.Message != "" {
			message = ve.Message
		}
	}

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	Write(c, status, code, message)
}
