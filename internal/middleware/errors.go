package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/logging"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/metrics"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/response"
)

const internalMessage = "Internal Server Error"

// ErrorHandler renders the last error pushed with c.Error as the error envelope.
// Errors that are not *apperror.Error become a generic 500 and are only logged.
func ErrorHandler(logger *logging.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = logging.Nop()
	}

	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr, ok := apperror.As(err)
		if !ok || appErr.StatusCode >= http.StatusInternalServerError {
			logger.WithError(err).
				WithField("method", c.Request.Method).
				WithField("path", c.Request.URL.Path).
				Error("Request failed")
			metrics.RecordError("api", "internal")
		}

		if !ok {
			response.Write(c, response.Failure(http.StatusInternalServerError, internalMessage))
			return
		}

		message := appErr.Message
		if message == "" {
			message = http.StatusText(appErr.StatusCode)
		}
		response.Write(c, response.Failure(appErr.StatusCode, message))
	}
}

// Recovery turns a panic into the 500 error envelope
func Recovery(logger *logging.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = logging.Nop()
	}

	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.WithField("panic", recovered).
			WithField("path", c.Request.URL.Path).
			Error("Recovered from panic")
		metrics.RecordError("api", "panic")

		c.AbortWithStatusJSON(http.StatusInternalServerError,
			response.Failure(http.StatusInternalServerError, internalMessage))
	})
}

// NotFound renders unknown routes with the error envelope
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Write(c, response.Failure(http.StatusNotFound, "Route not found"))
	}
}
