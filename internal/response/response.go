package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the uniform body returned by every endpoint
type Envelope struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
}

// New builds an envelope; success is derived from the status code
func New(statusCode int, data interface{}, message string) Envelope {
	return Envelope{
		StatusCode: statusCode,
		Data:       data,
		Success:    statusCode < http.StatusBadRequest,
		Message:    message,
	}
}

// Failure builds an error envelope with null data
func Failure(statusCode int, message string) Envelope {
	return New(statusCode, nil, message)
}

// OK writes a 200 envelope
func OK(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, New(http.StatusOK, data, message))
}

// Write writes an envelope with its own status code
func Write(c *gin.Context, env Envelope) {
	c.JSON(env.StatusCode, env)
}
