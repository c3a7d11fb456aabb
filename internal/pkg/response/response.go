package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/sitedesk/inspection-backend/internal/pkg/errors"
)

// Response is the standard JSON envelope
type Response struct {
	Code    int         `json:"code"`              // business error code (0 on success)
	Message string      `json:"message,omitempty"` // human-readable message
	Data    interface{} `json:"data"`              // payload (may be an empty object)
}

// Success writes a 200 response with the given payload
func Success(c *gin.Context, data interface{}) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(http.StatusOK, Response{
		Code:    apperrors.Success,
		Message: "",
		Data:    data,
	})
}

// Created writes a 201 response with the given payload
func Created(c *gin.Context, data interface{}) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(http.StatusCreated, Response{
		Code:    apperrors.Success,
		Message: "",
		Data:    data,
	})
}

// Error writes an error response with the given HTTP status
func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, Response{
		Code:    httpStatus,
		Message: message,
		Data:    struct{}{},
	})
}

// BadRequest writes a 400 error
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// NotFound writes a 404 error
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError writes a 500 error
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// HandleError maps an AppError to the envelope
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	code := apperrors.ExtractCode(err)
	httpStatus := apperrors.GetHTTPStatus(code)
	message := apperrors.FormatError(code, apperrors.GetDetails(err))

	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Data:    struct{}{},
	})
}

// ErrorWithCode writes an error response for a known business code
func ErrorWithCode(c *gin.Context, code int, details ...string) {
	httpStatus := apperrors.GetHTTPStatus(code)
	message := apperrors.FormatError(code, details...)

	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Data:    struct{}{},
	})
}
