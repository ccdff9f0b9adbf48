package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// OperatorClaims описывает данные, хранящиеся в токене оператора.
type OperatorClaims struct {
	Username             string `json:"username"` // Имя оператора
	jwt.RegisteredClaims        // Стандартные claims (ExpiresAt, IssuedAt, ID и пр.)
}

// GenerateToken создает JWT токен для оператора, подписывая его секретным ключом.
//
// Время жизни токена определяется полем tokenTTL, ID токена — случайный UUID.
func (j *MakerImpl) GenerateToken(username string) (string, error) {
	claims := OperatorClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken парсит JWT токен, проверяет его подпись и срок действия,
// возвращает OperatorClaims, если токен корректен.
func (j *MakerImpl) ParseToken(tokenStr string) (*OperatorClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &OperatorClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*OperatorClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}
