package errors

import (
	stderrors "errors"
	"fmt"
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any *AppError carrying the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsCode reports whether any error in err's chain is an AppError with code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return false
	}
	if appErr.Code == code {
		return true
	}
	return IsCode(appErr.Err, code)
}

// Common error codes
const (
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
)

// Quiz error codes
const (
	ErrCodeInvalidContext      = "INVALID_CONTEXT"
	ErrCodeNoRoom              = "NO_ROOM"
	ErrCodeNotHost             = "NOT_HOST"
	ErrCodeNotJoined           = "NOT_JOINED"
	ErrCodeAlreadyAnswered     = "ALREADY_ANSWERED"
	ErrCodeAlreadySolved       = "ALREADY_SOLVED"
	ErrCodeAlreadyStarted      = "ALREADY_STARTED"
	ErrCodeQuizFinished        = "QUIZ_FINISHED"
	ErrCodeInvalidPayload      = "INVALID_PAYLOAD"
	ErrCodePersistenceFailure  = "PERSISTENCE_FAILURE"
	ErrCodeCorruptLedger       = "CORRUPT_LEDGER"
	ErrCodeMalformedQuestion   = "MALFORMED_QUESTION"
	ErrCodeMissingQuestionBank = "MISSING_QUESTION_BANK"
)
