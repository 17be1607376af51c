package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Code    int         `json:"code"`           // 0 on success, business error code otherwise
	Kind    string      `json:"kind,omitempty"` // machine-readable error kind
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func CreatedResponse(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// ErrorWithKind writes an error envelope carrying a stable kind and code.
func ErrorWithKind(c *gin.Context, httpStatus, code int, kind, message string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Kind:    kind,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	ErrorWithKind(c, http.StatusBadRequest, 40000, "bad_request", message)
}

func Unauthorized(c *gin.Context, message string) {
	ErrorWithKind(c, http.StatusUnauthorized, 40100, "unauthorized", message)
}

func Forbidden(c *gin.Context, message string) {
	ErrorWithKind(c, http.StatusForbidden, 40300, "forbidden", message)
}

func NotFound(c *gin.Context, message string) {
	ErrorWithKind(c, http.StatusNotFound, 40400, "not_found", message)
}

func TooManyRequests(c *gin.Context, message string) {
	ErrorWithKind(c, http.StatusTooManyRequests, 42900, "rate_limited", message)
}

func InternalServerError(c *gin.Context, message string) {
	ErrorWithKind(c, http.StatusInternalServerError, 50000, "internal", message)
}
