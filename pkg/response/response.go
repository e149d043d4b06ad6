package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-account-service/pkg/apperror"
)

type APIResponse[T any] struct {
	StatusCode   int       `json:"statusCode"`
	Success      bool      `json:"success"`
	Message      string    `json:"message"`
	Data         T         `json:"data"`
	Meta         any       `json:"meta,omitempty"`
	ErrorDetails any       `json:"errorDetails,omitempty"`
	RequestID    string    `json:"requestId,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Success writes a success envelope and returns it.
func Success[T any](ctx *gin.Context, status int, data T, message string, meta any) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	body := APIResponse[T]{
		StatusCode: status,
		Success:    true,
		Message:    message,
		Data:       data,
		Meta:       meta,
		RequestID:  ctx.GetString("request_id"),
		Timestamp:  time.Now().UTC(),
	}
	ctx.JSON(status, body)
	return body
}

// Error writes a failure envelope and returns it.
func Error[T any](ctx *gin.Context, status int, message string, details any) APIResponse[T] {
	body := build[T](ctx, status, message, details)
	ctx.JSON(body.StatusCode, body.failure())
	return body
}

// Abort is Error for middleware: the handler chain stops here.
func Abort(ctx *gin.Context, status int, message string, details any) {
	body := build[any](ctx, status, message, details)
	ctx.AbortWithStatusJSON(body.StatusCode, body.failure())
}

// FromError renders any error returned by the application layer. Typed
// errors keep their status and message; anything else becomes a generic
// 500 and the cause is logged, never sent.
func FromError(ctx *gin.Context, err error, logger *logrus.Logger) {
	ae := apperror.As(err)
	if ae.Kind == apperror.KindInternal && logger != nil {
		cause := err
		if ae.Err != nil {
			cause = ae.Err
		}
		logger.WithError(cause).WithFields(logrus.Fields{
			"request_id": ctx.GetString("request_id"),
			"path":       ctx.FullPath(),
		}).Error("request failed")
	}
	var details any
	if ae.Details != nil {
		details = ae.Details
	}
	Error[any](ctx, ae.Status(), ae.Message, details)
}

func build[T any](ctx *gin.Context, status int, message string, details any) APIResponse[T] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return APIResponse[T]{
		StatusCode:   status,
		Success:      false,
		Message:      message,
		ErrorDetails: details,
		RequestID:    ctx.GetString("request_id"),
		Timestamp:    time.Now().UTC(),
	}
}

// failureBody is the wire form of a failed response; it has no data field.
type failureBody struct {
	StatusCode   int       `json:"statusCode"`
	Success      bool      `json:"success"`
	Message      string    `json:"message"`
	ErrorDetails any       `json:"errorDetails,omitempty"`
	RequestID    string    `json:"requestId,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func (r APIResponse[T]) failure() failureBody {
	return failureBody{
		StatusCode:   r.StatusCode,
		Success:      false,
		Message:      r.Message,
		ErrorDetails: r.ErrorDetails,
		RequestID:    r.RequestID,
		Timestamp:    r.Timestamp,
	}
}
