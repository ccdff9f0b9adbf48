// Package models содержит доменную модель пользователя системы:
// учётные данные, статус подписки и дату её окончания.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// Возможные значения поля Status пользователя.
const (
	// StatusActive — подписка помечена как действующая.
	StatusActive = "active"
	// StatusInactive — подписка помечена как недействующая
	// (истекла или отключена администратором).
	StatusInactive = "inactive"
)

// User представляет строку таблицы users.
type User struct {
	ID           int64      // Стабильный числовой идентификатор
	Username     string     // Имя пользователя (уникальное)
	PasswordHash string     // Односторонний хэш пароля; сравнивается, не расшифровывается
	Status       string     // active или inactive
	Expiry       *time.Time // Дата окончания подписки; nil — бессрочная подписка
}
