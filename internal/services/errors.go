package services

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrorTypeValidation        ErrorType = "validation"
	ErrorTypeNotFound          ErrorType = "not_found"
	ErrorTypeConflict          ErrorType = "conflict"
	ErrorTypeInsufficientSlots ErrorType = "insufficient_slots"
	ErrorTypeForbidden         ErrorType = "forbidden"
)

const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodePatientInactive      = "PATIENT_INACTIVE"
	CodeSpecialtyInactive    = "SPECIALTY_INACTIVE"
	CodeOverlap              = "OVERLAP"
	CodeAlreadyPaid          = "ALREADY_PAID"
	CodeDuplicate            = "DUPLICATE"
	CodeInvalidTransition    = "INVALID_TRANSITION"
	CodeGymFeeRequired       = "GYM_FEE_REQUIRED"
	CodeKinesiologyOrder     = "KINESIOLOGY_ORDER_REQUIRED"
	CodeKinesiologySessions  = "KINESIOLOGY_SESSIONS_REQUIRED"
	CodeKinesiologyNotEnough = "KINESIOLOGY_NOT_ENOUGH_SLOTS"
	CodeForbidden            = "FORBIDDEN"
)

// AppError is the single error shape the engine reports to callers. Type decides the HTTP
// status; Code is the stable machine-readable reason.
type AppError struct {
	Type    ErrorType
	Code    string
	Message string
	Meta    map[string]any
	Cause   error
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

// Is matches the category sentinels below, so errors.Is(err, ErrConflict) holds for every
// conflict regardless of code.
func (e *AppError) Is(target error) bool {
	sentinel, ok := target.(*AppError)
	if !ok {
		return false
	}
	if sentinel.Code != "" && sentinel.Code != e.Code {
		return false
	}
	return sentinel.Type == e.Type
}

var (
	ErrValidation        = &AppError{Type: ErrorTypeValidation}
	ErrNotFound          = &AppError{Type: ErrorTypeNotFound}
	ErrConflict          = &AppError{Type: ErrorTypeConflict}
	ErrInsufficientSlots = &AppError{Type: ErrorTypeInsufficientSlots}
	ErrForbidden         = &AppError{Type: ErrorTypeForbidden, Code: CodeForbidden, Message: "forbidden"}

	ErrOverlap           = &AppError{Type: ErrorTypeConflict, Code: CodeOverlap}
	ErrAlreadyPaid       = &AppError{Type: ErrorTypeConflict, Code: CodeAlreadyPaid}
	ErrInvalidTransition = &AppError{Type: ErrorTypeConflict, Code: CodeInvalidTransition}
)

func NewValidationError(code, message string) *AppError {
	if code == "" {
		code = CodeValidation
	}
	return &AppError{Type: ErrorTypeValidation, Code: code, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Type: ErrorTypeNotFound, Code: CodeNotFound, Message: message}
}

func NewConflictError(code, message string) *AppError {
	return &AppError{Type: ErrorTypeConflict, Code: code, Message: message}
}

func NewInsufficientSlotsError(requested, available int) *AppError {
	deficit := requested - available
	return &AppError{
		Type: ErrorTypeInsufficientSlots,
		Code: CodeKinesiologyNotEnough,
		Message: fmt.Sprintf(
			"not enough free slots to create %d sessions (available: %d, missing: %d); adjust the range, days or hours",
			requested, available, deficit,
		),
		Meta: map[string]any{
			"requested": requested,
			"available": available,
			"deficit":   deficit,
		},
	}
}

// AsAppError unwraps err into an *AppError when it is one.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
