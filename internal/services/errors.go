package services

import (
	"errors"
)

// エラー種別
var (
	ErrValidation    = errors.New("validation error")
	ErrConflict      = errors.New("conflict")
	ErrAuth          = errors.New("authentication error")
	ErrNotFound      = errors.New("not found")
	ErrSelfReference = errors.New("self reference")
)

// ServiceError クライアントに返してよいメッセージを持つエラー
type ServiceError struct {
	Kind    error
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Kind
}

func newError(kind error, message string) error {
	return &ServiceError{Kind: kind, Message: message}
}
