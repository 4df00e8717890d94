package models

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks contract violations that must surface to the
// caller (missing coordinates, non-positive duration, malformed
// footprint). Out-of-range numeric inputs are clamped instead, with a
// logged warning; the engines are permissive estimators, not validators.
var ErrInvalidInput = errors.New("invalid input")

// InputError is a structured invalid-input error for the transport layer.
type InputError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

func NewInputError(code, format string, args ...any) *InputError {
	return &InputError{Code: code, Message: fmt.Sprintf(format, args...)}
}
