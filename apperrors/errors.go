package apperrors

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is an application error carrying the HTTP status it should be
// reported with. Machine-readable Code values let API clients branch on the
// failure without parsing messages.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error
func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// Wrap attaches a cause to a copy of the error.
func (e *Error) Wrap(err error) *Error {
	clone := *e
	clone.Err = err
	return &clone
}

// Common error types
var (
	ErrBadRequest     = New(http.StatusBadRequest, "bad_request", "Bad request")
	ErrUnauthorized   = New(http.StatusUnauthorized, "unauthorized", "Unauthorized")
	ErrForbidden      = New(http.StatusForbidden, "forbidden", "Forbidden")
	ErrNotFound       = New(http.StatusNotFound, "not_found", "Not found")
	ErrInternalServer = New(http.StatusInternalServerError, "internal_error", "Internal server error")
	ErrUnavailable    = New(http.StatusServiceUnavailable, "unavailable", "Service temporarily unavailable")
)

// ErrorMiddleware recovers errors attached to the gin context into a
// structured JSON response.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Handlers that already rendered a body only attach errors for
		// logging; don't write a second response on top.
		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last().Err
			appErr, ok := err.(*Error)
			if !ok {
				appErr = ErrInternalServer.Wrap(err)
			}
			c.JSON(appErr.Status, appErr)
			c.Abort()
		}
	}
}
