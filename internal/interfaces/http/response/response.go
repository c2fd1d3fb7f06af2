// Package response writes the JSON envelope every API endpoint returns:
// {"success":true,"data":...} or {"success":false,"error":{...}}.
package response

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/netellus-advisor/pkg/errors"
)

// APIError is the error half of the envelope.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Envelope is the response body.
type Envelope struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
}

// RequestIDKey is the gin context key the request-id middleware sets.
const RequestIDKey = "request_id"

// OK writes a 200 success envelope.
func OK(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data)
}

// JSON writes a success envelope with status.
func JSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{Success: true, Data: data, RequestID: c.GetString(RequestIDKey)})
}

// Error writes err as a failure envelope.  AppErrors keep their code and
// message and map to their HTTP status; anything else becomes a masked 500.
func Error(c *gin.Context, err error) {
	status, body := FromError(err)
	c.AbortWithStatusJSON(status, Envelope{Success: false, Error: body, RequestID: c.GetString(RequestIDKey)})
}

// FromError maps err to an HTTP status and error body.
func FromError(err error) (int, *APIError) {
	var ae *errors.AppError
	if !stderrors.As(err, &ae) {
		return http.StatusInternalServerError, &APIError{
			Code:    errors.ErrCodeInternal.String(),
			Message: "internal server error",
		}
	}
	status := errors.HTTPStatusForCode(ae.Code)
	body := &APIError{Code: ae.Code.String(), Message: ae.Message}
	if status < http.StatusInternalServerError {
		body.Detail = ae.Detail
	}
	return status, body
}
