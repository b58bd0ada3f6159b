package errors

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Postgres error class 23505.
const pqUniqueViolation = "23505"

// ErrorInfo pairs an error code with a client-facing message.
type ErrorInfo struct {
	Code    string
	Message string
}

// IsUniqueViolation reports whether err is a unique-constraint violation,
// optionally scoped to a column/index name fragment. Works against both
// lib/pq driver errors and sqlite's text (used by the test database).
func IsUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code != pqUniqueViolation {
			return false
		}
		return column == "" || strings.Contains(pqErr.Constraint, column) ||
			strings.Contains(pqErr.Detail, column)
	}

	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "unique constraint") && !strings.Contains(msg, "duplicate key") {
		return false
	}
	return column == "" || strings.Contains(msg, strings.ToLower(column))
}

// ParseAndRespond maps err through ParseError and writes the response.
func ParseAndRespond(c *gin.Context, statusCode int, err error, context string) {
	info := ParseError(err, context)
	RespondWithError(c, statusCode, info.Code, info.Message)
}

// ParseError maps persistence-layer errors onto the API error taxonomy.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "an internal error occurred"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: context + " not found"}
	}

	if IsUniqueViolation(err, "phone") {
		return ErrorInfo{Code: KYCPhoneConflict, Message: "phone number is already registered to another account"}
	}
	if IsUniqueViolation(err, "") {
		return ErrorInfo{Code: ResourceAlreadyExists, Message: context + " already exists"}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "timeout") {
		return ErrorInfo{Code: InternalExternalAPI, Message: "an external service is unavailable, try again later"}
	}

	return ErrorInfo{Code: InternalServerError, Message: "failed to process " + context}
}
