// Package response writes the JSON envelope returned by every HTTP endpoint.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stagehand-bookings/service-booking/pkg/domain"
)

// retryAfterSeconds is advertised on responses for retryable failures.
const retryAfterSeconds = "2"

// Envelope is the common response body.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

// Meta carries pagination details.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// Success writes a 200 response.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes a 200 response with pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    items,
		Meta: &Meta{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages,
		},
	})
}

// BadRequest writes a 400 validation failure.
func BadRequest(c *gin.Context, msg string) {
	fail(c, http.StatusBadRequest, ErrorBody{Code: string(domain.CodeValidation), Message: msg})
}

// Error maps err to an HTTP status and writes it. Infrastructure details are
// never echoed to the client.
func Error(c *gin.Context, err error) {
	_ = c.Error(err)

	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		fail(c, http.StatusInternalServerError, ErrorBody{Code: "INTERNAL", Message: "internal server error"})
		return
	}

	body := ErrorBody{Code: string(appErr.Code), Message: appErr.Message}
	switch appErr.Code {
	case domain.CodeNotFound:
		fail(c, http.StatusNotFound, body)
	case domain.CodeValidation:
		fail(c, http.StatusBadRequest, body)
	case domain.CodeInvalidTransition, domain.CodeConstraintViolation, domain.CodeConstraintMismatch:
		fail(c, http.StatusConflict, body)
	case domain.CodeStoreUnavailable:
		body.Message = "service temporarily unavailable, please retry"
		body.Retryable = true
		c.Header("Retry-After", retryAfterSeconds)
		fail(c, http.StatusServiceUnavailable, body)
	case domain.CodeAllocationExhausted:
		body.Message = "could not create booking, please try again later"
		fail(c, http.StatusInternalServerError, body)
	default:
		fail(c, http.StatusInternalServerError, ErrorBody{Code: "INTERNAL", Message: "internal server error"})
	}
}

func fail(c *gin.Context, status int, body ErrorBody) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Error: &body})
}
