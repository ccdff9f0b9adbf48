// Package client реализует консольного клиента сервиса проверки подписок:
// HTTP-вызовы и интерактивный сценарий входа.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/config"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/response"
)

// APIClient выполняет запросы к HTTP API сервиса.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient создает новый экземпляр APIClient.
func NewAPIClient(cfg config.Client) *APIClient {
	return &APIClient{
		baseURL: cfg.APIURL,
		httpClient: &http.Client{
			Timeout: cfg.ClientTimeout,
		},
	}
}

// Result — разобранный ответ сервера на запрос аутентификации.
type Result struct {
	StatusCode         int
	Success            bool
	Message            string
	User               *response.UserProfile
	SubscriptionActive bool
}

// CheckStatus проверяет доступность сервера перед интерактивным сценарием.
func (c *APIClient) CheckStatus(ctx context.Context) error {
	const op = "client.CheckStatus"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/status", nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: server returned status %d", op, resp.StatusCode)
	}
	return nil
}

// Authenticate отправляет учётные данные и возвращает решение сервера.
// Отказ в доступе — не ошибка вызова: ошибка возвращается только при
// сетевых сбоях или неразбираемом ответе.
func (c *APIClient) Authenticate(ctx context.Context, username, password string) (*Result, error) {
	const op = "client.Authenticate"

	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/authenticate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var parsed response.Response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", op, err)
	}

	result := &Result{
		StatusCode: resp.StatusCode,
		Success:    parsed.Success,
		Message:    parsed.Message,
		User:       parsed.User,
	}
	if parsed.SubscriptionActive != nil {
		result.SubscriptionActive = *parsed.SubscriptionActive
	}
	return result, nil
}
