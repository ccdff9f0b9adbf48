package renew

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
	services "github.com/magabrotheeeer/subscription-gatekeeper/internal/services/auth"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Renew(ctx context.Context, username, secret string, months int, today time.Time) (*models.User, error) {
	args := m.Called(ctx, username, secret, months, today)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRenewHandler_ServeHTTP(t *testing.T) {
	serviceMock := new(AuthServiceMock)
	handler := New(newNoopLogger(), serviceMock)

	expiry := time.Date(2026, 9, 28, 0, 0, 0, 0, time.UTC)
	renewedUser := &models.User{ID: 7, Username: "user1", Status: models.StatusActive, Expiry: &expiry}
	lifetimeUser := &models.User{ID: 7, Username: "user1", Status: models.StatusActive}

	tests := []struct {
		name           string
		requestBody    interface{}
		wantMonths     int
		mockUser       *models.User
		mockErr        error
		callService    bool
		wantStatusCode int
		wantSuccess    bool
		wantMessage    string
		wantExpiry     any
	}{
		{
			name:           "one month plan",
			requestBody:    Request{Username: "user1", Password: "password123", Plan: "1m"},
			wantMonths:     1,
			mockUser:       renewedUser,
			callService:    true,
			wantStatusCode: http.StatusOK,
			wantSuccess:    true,
			wantMessage:    "subscription renewed",
			wantExpiry:     "2026-09-28",
		},
		{
			name:           "lifetime plan",
			requestBody:    Request{Username: "user1", Password: "password123", Plan: "lifetime"},
			wantMonths:     0,
			mockUser:       lifetimeUser,
			callService:    true,
			wantStatusCode: http.StatusOK,
			wantSuccess:    true,
			wantMessage:    "subscription renewed",
			wantExpiry:     nil,
		},
		{
			name:           "invalid credentials",
			requestBody:    Request{Username: "user1", Password: "wrongpass", Plan: "6m"},
			wantMonths:     6,
			mockErr:        services.ErrInvalidCredentials,
			callService:    true,
			wantStatusCode: http.StatusUnauthorized,
			wantSuccess:    false,
			wantMessage:    "invalid username or password",
		},
		{
			name:           "storage error",
			requestBody:    Request{Username: "user1", Password: "password123", Plan: "12m"},
			wantMonths:     12,
			mockErr:        errors.New("storage error"),
			callService:    true,
			wantStatusCode: http.StatusInternalServerError,
			wantSuccess:    false,
			wantMessage:    "failed to renew subscription",
		},
		{
			name:           "unknown plan",
			requestBody:    Request{Username: "user1", Password: "password123", Plan: "2w"},
			wantStatusCode: http.StatusBadRequest,
			wantSuccess:    false,
			wantMessage:    "field Plan has an unsupported value",
		},
		{
			name:           "missing plan",
			requestBody:    Request{Username: "user1", Password: "password123"},
			wantStatusCode: http.StatusBadRequest,
			wantSuccess:    false,
			wantMessage:    "field Plan is a required field",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantSuccess:    false,
			wantMessage:    "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock.ExpectedCalls = nil
			serviceMock.Calls = nil

			if tt.callService {
				reqBody := tt.requestBody.(Request)
				serviceMock.On("Renew", mock.Anything, reqBody.Username, reqBody.Password, tt.wantMonths, mock.Anything).
					Return(tt.mockUser, tt.mockErr).Once()
			}

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/renew", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			assert.Equal(t, tt.wantSuccess, got["success"])
			assert.Equal(t, tt.wantMessage, got["message"])

			if tt.mockUser != nil {
				user, ok := got["user"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, tt.wantExpiry, user["expiry"])
			}

			if tt.callService {
				serviceMock.AssertExpectations(t)
			}
		})
	}
}
