package models

import "errors"

// Классы ошибок. Конкретные ошибки сервисов оборачивают один из них,
// обработчики выбирают HTTP-статус через errors.Is.
var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrProvider    = errors.New("payment provider error")
	ErrPersistence = errors.New("persistence error")
	ErrUserExists  = errors.New("user already exists")
	ErrForbidden   = errors.New("forbidden")
)
