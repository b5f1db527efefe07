package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the common success envelope.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorBody is the common error envelope. The code duplicates the HTTP
// status so clients behind status-flattening proxies still see it.
type ErrorBody struct {
	Success   bool   `json:"success"`
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

// PageResponse is the listing envelope.
type PageResponse struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Success writes a 200 with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// SuccessWithPage writes a 200 listing page.
func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, PageResponse{Success: true, Data: data, Pagination: pagination})
}

// Error writes an error with matching HTTP status and payload code.
func Error(c *gin.Context, code int, message string) {
	status := code
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, ErrorBody{
		Success:   false,
		Code:      code,
		Message:   message,
		RequestID: requestIDOf(c),
	})
}

// BadRequest writes a 400.
func BadRequest(c *gin.Context, message string) {
	Error(c, CodeBadRequest, message)
}

// Unauthorized writes a 401.
func Unauthorized(c *gin.Context, message string) {
	Error(c, CodeUnauthorized, message)
}

// Forbidden writes a 403.
func Forbidden(c *gin.Context, message string) {
	Error(c, CodeForbidden, message)
}

// NotFound writes a 404.
func NotFound(c *gin.Context, message string) {
	Error(c, CodeNotFound, message)
}

// Internal writes a 500.
func Internal(c *gin.Context, message string) {
	Error(c, CodeInternal, message)
}

func requestIDOf(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if value, ok := c.Get("request_id"); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}
