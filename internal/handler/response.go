package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/validator"
)

type Response struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError writes err as an error envelope. Application errors keep
// their status and message; anything else is logged and reported as a
// bare 500.
func RespondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
		return
	}

	status := appErr.StatusCode()
	resp := NewErrorResponse(appErr.Message)
	resp.Errors = appErr.Fields
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("Request failed")
		resp.Message = "internal server error"
	}
	c.AbortWithStatusJSON(status, resp)
}

// BindError reports a ShouldBind failure as a 400 with field messages.
func BindError(c *gin.Context, err error) {
	fields := validator.FieldErrors(err)
	if msg, ok := fields["_"]; ok && len(fields) == 1 {
		RespondError(c, apperrors.BadRequest("invalid request body", errors.New(msg)))
		return
	}
	RespondError(c, apperrors.Validation(fields))
}
