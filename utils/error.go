package utils

import (
	"errors"
	"fmt"
)

var ErrorRecordNotFound = errors.New("record not found")

// PostingErrorCode is the stable error category exposed to API callers.
// Posting is all-or-nothing: any of these aborts the whole unit of work.
type PostingErrorCode string

const (
	ErrCodeValidation          PostingErrorCode = "VALIDATION_ERROR"
	ErrCodeBatchNotFound       PostingErrorCode = "BATCH_NOT_FOUND"
	ErrCodeInsufficientStock   PostingErrorCode = "INSUFFICIENT_STOCK"
	ErrCodeAccountNotFound     PostingErrorCode = "ACCOUNT_NOT_FOUND"
	ErrCodeConcurrencyConflict PostingErrorCode = "CONCURRENCY_CONFLICT"
)

type PostingError struct {
	Code   PostingErrorCode `json:"code"`
	Detail string           `json:"detail"`
}

func (e *PostingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

func NewValidationError(format string, args ...any) *PostingError {
	return &PostingError{Code: ErrCodeValidation, Detail: fmt.Sprintf(format, args...)}
}

func NewBatchNotFoundError(batchNumber string, lotId string) *PostingError {
	return &PostingError{Code: ErrCodeBatchNotFound, Detail: fmt.Sprintf("batch %s (lot %s) not found", batchNumber, lotId)}
}

func NewInsufficientStockError(batchNumber string, lotId string) *PostingError {
	return &PostingError{Code: ErrCodeInsufficientStock, Detail: fmt.Sprintf("insufficient stock on batch %s (lot %s)", batchNumber, lotId)}
}

func NewAccountNotFoundError(name string) *PostingError {
	return &PostingError{Code: ErrCodeAccountNotFound, Detail: fmt.Sprintf("account %q is not configured", name)}
}

func NewConcurrencyConflictError(detail string) *PostingError {
	return &PostingError{Code: ErrCodeConcurrencyConflict, Detail: detail}
}

// PostingCode extracts the stable code from err, or "" when err is not a PostingError.
func PostingCode(err error) PostingErrorCode {
	var pe *PostingError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

func IsPostingCode(err error, code PostingErrorCode) bool {
	return PostingCode(err) == code
}
