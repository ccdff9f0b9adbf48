// Package services содержит логику бизнес-уровня для аутентификации
// и проверки действительности подписки.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/password"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/validity"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/storage/repository"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его ID.
	CreateUser(ctx context.Context, user models.User) (int64, error)

	// GetUserByUsername возвращает пользователя по имени или ошибку, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// UpdateUserSubscription атомарно выставляет статус и дату окончания подписки.
	UpdateUserSubscription(ctx context.Context, id int64, status string, expiry *time.Time) error
}

// DecisionKind — вид решения аутентификации.
type DecisionKind string

// Пять видов решений внешнего интерфейса.
const (
	DecisionInvalidInput       DecisionKind = "invalid_input"
	DecisionInvalidCredentials DecisionKind = "invalid_credentials"
	DecisionInactive           DecisionKind = "authenticated_but_inactive"
	DecisionActive             DecisionKind = "authenticated_and_active"
	DecisionStoreUnavailable   DecisionKind = "store_unavailable"
)

// Decision — структурированное решение об авторизации.
// User заполнен для обоих Authenticated-видов, в том числе при
// недействующей подписке: клиент показывает, почему доступ закрыт.
type Decision struct {
	Kind               DecisionKind
	Message            string
	User               *models.User
	SubscriptionActive bool
}

// Authenticated сообщает, что учётные данные подтверждены
// (независимо от состояния подписки).
func (d *Decision) Authenticated() bool {
	return d.Kind == DecisionActive || d.Kind == DecisionInactive
}

// ErrInvalidCredentials возвращается операциями, где неверный пароль —
// ошибка, а не вид решения (продление, вход оператора).
var ErrInvalidCredentials = errors.New("invalid username or password")

// AuthService отвечает за аутентификацию, регистрацию, продление подписки
// и вход оператора.
type AuthService struct {
	users             UserRepository
	jwtMaker          jwt.Maker
	adminUsername     string
	adminPasswordHash string
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, adminUsername, adminPasswordHash string) *AuthService {
	return &AuthService{
		users:             users,
		jwtMaker:          jwtMaker,
		adminUsername:     adminUsername,
		adminPasswordHash: adminPasswordHash,
	}
}

// Authenticate проверяет учётные данные и действительность подписки на дату today.
//
// Неизвестный пользователь и неверный пароль дают одно и то же решение
// с одним и тем же сообщением: по ответу нельзя перечислять имена.
// Недоступность хранилища — отдельный вид решения, никогда не
// маскируется под неверные учётные данные.
func (s *AuthService) Authenticate(ctx context.Context, username, secret string, today time.Time) *Decision {
	username = strings.TrimSpace(username)
	secret = strings.TrimSpace(secret)

	if username == "" || secret == "" {
		return &Decision{
			Kind:    DecisionInvalidInput,
			Message: "username and password cannot be empty",
		}
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return &Decision{
				Kind:    DecisionInvalidCredentials,
				Message: "invalid username or password",
			}
		}
		return &Decision{
			Kind:    DecisionStoreUnavailable,
			Message: "storage unavailable",
		}
	}

	if err := password.Verify(user.PasswordHash, secret); err != nil {
		return &Decision{
			Kind:    DecisionInvalidCredentials,
			Message: "invalid username or password",
		}
	}

	if validity.IsValid(user.Status, user.Expiry, today) {
		return &Decision{
			Kind:               DecisionActive,
			Message:            "authentication successful - active subscription",
			User:               user,
			SubscriptionActive: true,
		}
	}
	return &Decision{
		Kind:               DecisionInactive,
		Message:            "subscription inactive or expired",
		User:               user,
		SubscriptionActive: false,
	}
}

// Register создает нового пользователя с хэшированием пароля.
// Новая учётная запись создаётся без подписки: статус inactive, без даты окончания.
func (s *AuthService) Register(ctx context.Context, username, rawPassword string) (int64, error) {
	hashed, err := password.Hash(rawPassword)
	if err != nil {
		return 0, err
	}
	user := models.User{
		Username:     strings.TrimSpace(username),
		PasswordHash: hashed,
		Status:       models.StatusInactive,
	}
	return s.users.CreateUser(ctx, user)
}

// Renew продлевает подписку после проверки учётных данных: статус становится
// active, дата окончания — today плюс months месяцев. months == 0 означает
// бессрочную подписку (без даты окончания).
func (s *AuthService) Renew(ctx context.Context, username, secret string, months int, today time.Time) (*models.User, error) {
	// Учётные данные нормализуются так же, как при аутентификации.
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := password.Verify(user.PasswordHash, strings.TrimSpace(secret)); err != nil {
		return nil, ErrInvalidCredentials
	}

	var expiry *time.Time
	if months > 0 {
		e := validity.Day(today).AddDate(0, months, 0)
		expiry = &e
	}
	if err := s.users.UpdateUserSubscription(ctx, user.ID, models.StatusActive, expiry); err != nil {
		return nil, err
	}

	user.Status = models.StatusActive
	user.Expiry = expiry
	return user, nil
}

// AdminLogin проверяет учётные данные оператора, заданные конфигурацией,
// и выпускает JWT для операторской панели.
func (s *AuthService) AdminLogin(_ context.Context, username, secret string) (string, error) {
	if s.adminUsername == "" || username != s.adminUsername {
		return "", ErrInvalidCredentials
	}
	if err := password.Verify(s.adminPasswordHash, secret); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.jwtMaker.GenerateToken(username)
}
