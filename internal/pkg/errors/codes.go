package errors

import (
	"fmt"
	"net/http"
)

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidParams   = 1001
	ErrNotFound        = 1002
	ErrConflict        = 1003
	ErrBadRequest      = 1004
	ErrServiceUnavail  = 1005
	ErrTooManyRequests = 1006

	// Attachment errors (2000-2999)
	ErrAttachMethodNotAllowed   = 2000
	ErrAttachInvalidContentType = 2001
	ErrAttachMissingFile        = 2002
	ErrAttachMissingEntityData  = 2003
	ErrAttachUploadFailed       = 2004
	ErrAttachInsertFailed       = 2005
	ErrAttachNotFound           = 2006
	ErrAttachInvalidInput       = 2007

	// Site errors (3000-3999)
	ErrSiteNotFound     = 3000
	ErrSiteExists       = 3001
	ErrSiteInvalidInput = 3002
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	// Common errors
	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:   {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrConflict:        {ErrConflict, http.StatusConflict, "Resource conflict"},
	ErrBadRequest:      {ErrBadRequest, http.StatusBadRequest, "Bad request"},
	ErrServiceUnavail:  {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},
	ErrTooManyRequests: {ErrTooManyRequests, http.StatusTooManyRequests, "Too many requests"},

	// Attachment errors
	ErrAttachMethodNotAllowed:   {ErrAttachMethodNotAllowed, http.StatusMethodNotAllowed, "Method not allowed"},
	ErrAttachInvalidContentType: {ErrAttachInvalidContentType, http.StatusBadRequest, "Content type must be multipart/form-data"},
	ErrAttachMissingFile:        {ErrAttachMissingFile, http.StatusBadRequest, "No file provided"},
	ErrAttachMissingEntityData:  {ErrAttachMissingEntityData, http.StatusBadRequest, "Missing entity_type or entity_id"},
	ErrAttachUploadFailed:       {ErrAttachUploadFailed, http.StatusInternalServerError, "Storage upload failed"},
	ErrAttachInsertFailed:       {ErrAttachInsertFailed, http.StatusInternalServerError, "Attachment record insert failed"},
	ErrAttachNotFound:           {ErrAttachNotFound, http.StatusNotFound, "Attachment not found"},
	ErrAttachInvalidInput:       {ErrAttachInvalidInput, http.StatusBadRequest, "Invalid attachment input"},

	// Site errors
	ErrSiteNotFound:     {ErrSiteNotFound, http.StatusNotFound, "Site not found"},
	ErrSiteExists:       {ErrSiteExists, http.StatusConflict, "Site already exists"},
	ErrSiteInvalidInput: {ErrSiteInvalidInput, http.StatusBadRequest, "Invalid site input"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// IsSuccess checks if the code represents success
func IsSuccess(code int) bool {
	return code == Success
}

// IsClientError checks if the code represents a client error (4xx)
func IsClientError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 400 && status < 500
}

// IsServerError checks if the code represents a server error (5xx)
func IsServerError(code int) bool {
	return GetHTTPStatus(code) >= 500
}

// FormatError formats an error message with code
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
