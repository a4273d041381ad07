package errors

import (
	"errors"
	"fmt"
	"net/http"
	"net/textproto"
	"strings"
)

// Error codes for the email subsystem
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeDisposableEmail   = "DISPOSABLE_EMAIL"
	CodeRateLimited       = "RATE_LIMITED"
	CodeSMTPAuth          = "SMTP_AUTH"
	CodeSMTPConnection    = "SMTP_CONNECTION"
	CodeRecipientRejected = "RECIPIENT_REJECTED"
	CodeTemplateNotFound  = "TEMPLATE_NOT_FOUND"
	CodeNotFound          = "NOT_FOUND"
	CodeInternal          = "INTERNAL_ERROR"
)

// AppError represents an application error
type AppError struct {
	Code    string
	Message string
	Field   string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped error for errors.Is/As
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error code to an HTTP status code
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeValidation, CodeDisposableEmail, CodeRecipientRejected, CodeTemplateNotFound:
		return http.StatusBadRequest
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a new validation error with the offending field path
func NewValidationError(message, field string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Field:   field,
	}
}

// NewDisposableEmailError creates a policy rejection for throwaway addresses
func NewDisposableEmailError(message, field string) *AppError {
	return &AppError{
		Code:    CodeDisposableEmail,
		Message: message,
		Field:   field,
	}
}

// NewRateLimitError creates a quota-exceeded error
func NewRateLimitError(message string) *AppError {
	return &AppError{
		Code:    CodeRateLimited,
		Message: message,
	}
}

// NewTemplateNotFoundError creates an error for unknown template identifiers
func NewTemplateNotFoundError(name string) *AppError {
	return &AppError{
		Code:    CodeTemplateNotFound,
		Message: fmt.Sprintf("Template %s não encontrado", name),
		Field:   "template",
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Err:     err,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, err error) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: message,
		Err:     err,
	}
}

// FromSMTP classifies a transport error into the email error taxonomy.
// Authentication failures poison the whole mail capability, recipient
// rejections (550) are per-recipient, everything else is a connection-level
// failure recoverable on the next attempt.
func FromSMTP(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		switch {
		case protoErr.Code == 550:
			return &AppError{
				Code:    CodeRecipientRejected,
				Message: "Email rejeitado pelo destinatário.",
				Err:     err,
			}
		case protoErr.Code == 535 || protoErr.Code == 534 || protoErr.Code == 530:
			return &AppError{
				Code:    CodeSMTPAuth,
				Message: "Erro de autenticação do email. Verifique as credenciais.",
				Err:     err,
			}
		}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "authentication") || strings.Contains(msg, "auth failed") {
		return &AppError{
			Code:    CodeSMTPAuth,
			Message: "Erro de autenticação do email. Verifique as credenciais.",
			Err:     err,
		}
	}

	// Dial failures, timeouts and everything else are connection-level
	return &AppError{
		Code:    CodeSMTPConnection,
		Message: "Erro de conexão com servidor de email.",
		Err:     err,
	}
}
