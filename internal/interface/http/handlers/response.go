package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alem-hub/wellness-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE ENVELOPE
// ══════════════════════════════════════════════════════════════════════════════

// Response is the JSON envelope of every API response.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details string      `json:"details,omitempty"`
}

// Application error codes.
const (
	CodeOK           = 0
	CodeBadRequest   = 40000
	CodeValidation   = 40001
	CodeNotFound     = 40401
	CodeInternal     = 50000
	CodeUnavailable  = 50300
	MessageOK        = "success"
	messageInternal  = "internal server error"
	messageNotFound  = "not found"
	messageInvalid   = "validation failed"
	messageMalformed = "malformed request"
)

// OK writes a 200 response.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: CodeOK, Message: MessageOK, Data: data})
}

// Created writes a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: CodeOK, Message: MessageOK, Data: data})
}

// ErrorWithDetails writes an error response.
func ErrorWithDetails(c *gin.Context, status, code int, message, details string) {
	c.AbortWithStatusJSON(status, Response{Code: code, Message: message, Details: details})
}

// BadRequest writes a 400 for a body or parameter that could not be decoded.
func BadRequest(c *gin.Context, details string) {
	ErrorWithDetails(c, http.StatusBadRequest, CodeBadRequest, messageMalformed, details)
}

// InternalError writes a 500 without leaking the cause.
func InternalError(c *gin.Context) {
	ErrorWithDetails(c, http.StatusInternalServerError, CodeInternal, messageInternal, "")
}

// Fail maps a domain error to its HTTP status: validation errors are 400,
// missing profiles and indices are 404, everything else is 500.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)

	var ve *shared.ValidationError
	var nf *shared.NotFoundError
	switch {
	case errors.As(err, &ve):
		ErrorWithDetails(c, http.StatusBadRequest, CodeValidation, messageInvalid, ve.Error())
	case shared.IsValidation(err):
		ErrorWithDetails(c, http.StatusBadRequest, CodeValidation, messageInvalid, err.Error())
	case errors.As(err, &nf):
		ErrorWithDetails(c, http.StatusNotFound, CodeNotFound, messageNotFound, nf.Error())
	case shared.IsNotFound(err):
		ErrorWithDetails(c, http.StatusNotFound, CodeNotFound, messageNotFound, err.Error())
	default:
		InternalError(c)
	}
}
