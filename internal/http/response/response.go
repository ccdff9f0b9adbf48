// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Форма ответа повторяет
// контракт, на который завязан консольный клиент: success, message,
// user и subscription_active.
package response

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// User и SubscriptionActive заполняются, когда учётные данные подтверждены,
// в том числе при отказе из-за недействующей подписки — клиенту нужны
// данные профиля, чтобы объяснить причину отказа.
type Response struct {
	Success            bool         `json:"success"`
	Message            string       `json:"message"`
	User               *UserProfile `json:"user,omitempty"`
	SubscriptionActive *bool        `json:"subscription_active,omitempty"`
	Data               any          `json:"data,omitempty"`
}

// UserProfile — данные профиля в ответе. Expiry сериализуется датой
// в формате 2006-01-02; null означает бессрочную подписку.
type UserProfile struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Status   string  `json:"status"`
	Expiry   *string `json:"expiry"`
}

// NewUserProfile конвертирует доменного пользователя в профиль ответа.
// Хэш пароля в ответ не попадает.
func NewUserProfile(u *models.User) *UserProfile {
	if u == nil {
		return nil
	}
	p := &UserProfile{
		ID:       u.ID,
		Username: u.Username,
		Status:   u.Status,
	}
	if u.Expiry != nil {
		expiry := u.Expiry.Format(time.DateOnly)
		p.Expiry = &expiry
	}
	return p
}

// OK возвращает успешный Response с сообщением.
func OK(msg string) Response {
	return Response{
		Success: true,
		Message: msg,
	}
}

// OKWithData возвращает успешный Response с сообщением и данными.
func OKWithData(msg string, data any) Response {
	return Response{
		Success: true,
		Message: msg,
		Data:    data,
	}
}

// Error возвращает Response с переданным сообщением об ошибке.
func Error(msg string) Response {
	return Response{
		Success: false,
		Message: msg,
	}
}

// Decision возвращает Response для решения аутентификации: success отражает
// состояние подписки, а не только корректность учётных данных.
func Decision(success bool, msg string, user *models.User, subscriptionActive bool) Response {
	active := subscriptionActive
	return Response{
		Success:            success,
		Message:            msg,
		User:               NewUserProfile(user),
		SubscriptionActive: &active,
	}
}

// ValidationError формирует Response на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too short", err.Field()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too long", err.Field()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s has an unsupported value", err.Field()))
		case "datetime=2006-01-02":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only date in format 2006-01-02", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Success: false,
		Message: strings.Join(errsMsgs, ", "),
	}
}
