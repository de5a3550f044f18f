package models

import "time"

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UUID             string     // Уникальный идентификатор пользователя
	Email            string     // Электронная почта
	Username         string     // Имя пользователя (уникальное)
	PasswordHash     string     // Хэш пароля пользователя
	Role             string     // Роль пользователя, admin или user
	ResetToken       *string    // Токен сброса пароля
	ResetTokenExpiry *time.Time // Срок действия токена сброса
	CreatedAt        time.Time
}
