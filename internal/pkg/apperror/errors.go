package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden     ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest    ErrorCode = "BAD_REQUEST"
	ErrCodeConflict      ErrorCode = "CONFLICT"
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
	// Fields содержит ошибки по отдельным полям запроса.
	Fields map[string]string
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// Validation создаёт ошибку валидации с детализацией по полям.
func Validation(message string, fields map[string]string) *AppError {
	err := New(ErrCodeValidation, message)
	err.Fields = fields
	return err
}

// Конфликты бизнес-правил отдаются клиенту как 400.
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeConflict:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func hasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

func IsForbidden(err error) bool {
	return hasCode(err, ErrCodeForbidden)
}

func IsValidation(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

func IsConflict(err error) bool {
	return hasCode(err, ErrCodeConflict)
}

var (
	ErrUserNotFound         = New(ErrCodeNotFound, "пользователь не найден")
	ErrCargoNotFound        = New(ErrCodeNotFound, "груз не найден")
	ErrBidNotFound          = New(ErrCodeNotFound, "ставка не найдена")
	ErrTransactionNotFound  = New(ErrCodeNotFound, "сделка не найдена")
	ErrETTNNotFound         = New(ErrCodeNotFound, "е-ТТН не найдена")
	ErrNotificationNotFound = New(ErrCodeNotFound, "уведомление не найдено")
	ErrUnauthorized         = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden            = New(ErrCodeForbidden, "недостаточно прав")
	ErrNotParty             = New(ErrCodeForbidden, "вы не являетесь участником сделки")
	ErrNotCargoOwner        = New(ErrCodeForbidden, "только владелец груза может принимать или отклонять ставки")

	ErrBidNotPending      = New(ErrCodeConflict, "ставка уже обработана")
	ErrCargoNotActive     = New(ErrCodeConflict, "груз больше не принимает ставки")
	ErrBidAlreadyAccepted = New(ErrCodeConflict, "по этому грузу уже принята ставка")
	ErrETTNAlreadyExists  = New(ErrCodeConflict, "е-ТТН для этой сделки уже существует")
	ErrAlreadySigned      = New(ErrCodeConflict, "вы уже подписали эту е-ТТН")
	ErrRatingExists       = New(ErrCodeConflict, "вы уже оценили эту сделку")
	ErrStatusChanged      = New(ErrCodeConflict, "статус изменился, повторите запрос")
)
