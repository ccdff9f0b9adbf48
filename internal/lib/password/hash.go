// Package password реализует односторонний верификатор учётных данных.
//
// Hash создает bcrypt-хэш пароля для хранения.
// Verify сравнивает сохранённый хэш с введённым паролем.
// Алгоритм хэширования — сменная деталь: остальной код знает только про
// пару функций "захэшировать" / "проверить".
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hash принимает пароль пользователя и возвращает его bcrypt‑хэш.
func Hash(secret string) (string, error) {
	const op = "password.Hash"
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// Verify сравнивает сохранённый хэш с введённым паролем.
//
// Возвращает nil, если пароль соответствует хэшу, иначе — ошибку.
func Verify(storedHash, secret string) error {
	const op = "password.Verify"
	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(secret)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
