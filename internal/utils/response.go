package utils

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Response is the envelope every endpoint answers with, success or not.
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    Meta        `json:"meta"`
}

// ErrorInfo carries the machine-readable error code alongside the message.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta is request-scoped metadata stamped onto every envelope.
type Meta struct {
	RequestID  string      `json:"requestId"`
	Timestamp  string      `json:"timestamp"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes the slice of a list response.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

func envelope(c *gin.Context, code int, message string) Response {
	return Response{
		Success: code < 400,
		Code:    code,
		Message: message,
		Meta: Meta{
			RequestID: requestID(c),
			Timestamp: time.Now().Format(time.RFC3339),
		},
	}
}

// Success writes a success envelope with the given payload.
func Success(c *gin.Context, code int, message string, data interface{}) {
	resp := envelope(c, code, message)
	resp.Data = data
	c.JSON(code, resp)
}

// SuccessWithPagination writes a success envelope plus pagination meta.
func SuccessWithPagination(c *gin.Context, code int, message string, data interface{}, page, limit, totalItems int) {
	resp := envelope(c, code, message)
	resp.Data = data
	resp.Meta.Pagination = newPagination(page, limit, totalItems)
	c.JSON(code, resp)
}

// Error writes an error envelope with the machine-readable code.
func Error(c *gin.Context, code int, errCode, message string) {
	resp := envelope(c, code, message)
	resp.Error = &ErrorInfo{Code: errCode, Message: message}
	c.JSON(code, resp)
}

func newPagination(page, limit, totalItems int) *Pagination {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	return &Pagination{
		Page:       page,
		Limit:      limit,
		TotalItems: totalItems,
		TotalPages: (totalItems + limit - 1) / limit,
	}
}

// requestID reads the id set by the logging middleware, falling back to a
// fresh short id for responses written before the middleware ran.
func requestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return uuid.New().String()[:8]
}
