package apperrors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// виды ошибок, проверяются через errors.Is после любого количества Wrap
var (
	ErrValidation      = errors.New("ошибка валидации")
	ErrNotFound        = errors.New("запись не найдена")
	ErrForbidden       = errors.New("операция недоступна")
	ErrAlreadyDecided  = errors.New("по заявке уже принято решение")
	ErrPersistence     = errors.New("ошибка хранилища")
	ErrUnauthenticated = errors.New("пользователь не аутентифицирован")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// Err nil, если ошибок нет
func (e *ValidationError) Err() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for _, item := range e.Fields {
		names = append(names, item.Field)
	}
	return names
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, item := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", item.Field, item.Message))
	}
	return fmt.Sprintf("%s (%s)", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type persistenceError struct {
	cause error
}

func (e persistenceError) Error() string {
	return fmt.Sprintf("%s: %s", ErrPersistence.Error(), e.cause.Error())
}

func (e persistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func (e persistenceError) Unwrap() error {
	return e.cause
}

// Persistence помечает ошибку БД как PersistenceFailure, nil остается nil
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPersistence) {
		return err
	}
	return persistenceError{cause: err}
}

// HasKind ошибка уже относится к одному из видов
func HasKind(err error) bool {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrForbidden, ErrAlreadyDecided, ErrPersistence, ErrUnauthenticated} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// Classify ошибка без вида, например от начала или фиксации транзакции, считается сбоем хранилища
func Classify(err error) error {
	if err == nil || HasKind(err) {
		return err
	}
	return Persistence(err)
}

func NotFound(format string, args ...any) error {
	return errors.Wrapf(ErrNotFound, format, args...)
}

func Forbidden(format string, args ...any) error {
	return errors.Wrapf(ErrForbidden, format, args...)
}

func AlreadyDecided(format string, args ...any) error {
	return errors.Wrapf(ErrAlreadyDecided, format, args...)
}

func Unauthenticated(format string, args ...any) error {
	return errors.Wrapf(ErrUnauthenticated, format, args...)
}

// AsValidation извлекает список полей с ошибками
func AsValidation(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}
