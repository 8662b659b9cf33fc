package utils

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"travel-admin/validators"
)

const (
	MsgSomethingWrong   = "Something went wrong"
	MsgUnauthorized     = "Unauthorized"
	MsgValidationFailed = "Validation failed"
)

// AppError is an error that maps directly onto an HTTP response.
type AppError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *AppError) Error() string {
	return e.Message
}

func Unauthorized() *AppError {
	return &AppError{Status: http.StatusUnauthorized, Message: MsgUnauthorized}
}

func BadRequest(message string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Status: http.StatusNotFound, Message: message}
}

func Validation(fields map[string]string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Message: MsgValidationFailed, Fields: fields}
}

// AsValidation converts validator output into an AppError, passing any other
// error through unchanged.
func AsValidation(err error) error {
	if err == nil {
		return nil
	}
	var fe validators.FieldErrors
	if errors.As(err, &fe) {
		if msg, ok := fe[""]; ok && len(fe) == 1 {
			return BadRequest(msg)
		}
		return Validation(fe)
	}
	return err
}

func JSONMessage(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"message": message})
}

// RespondError writes err to the client. Anything that is not an AppError is
// logged and replaced by a generic 500.
func RespondError(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		body := gin.H{"message": appErr.Message}
		if len(appErr.Fields) > 0 {
			body["errors"] = appErr.Fields
		}
		c.AbortWithStatusJSON(appErr.Status, body)
		return
	}

	requestID, _ := c.Get(RequestIDKey)
	slog.ErrorContext(c.Request.Context(), "request failed",
		"error", err,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", requestID,
	)
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": MsgSomethingWrong})
}

// RequestIDKey is the gin context key the request id middleware stores under.
const RequestIDKey = "X-Request-ID"
