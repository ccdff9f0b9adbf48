package status

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type PingerMock struct {
	mock.Mock
}

func (m *PingerMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestStatusHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		pingErr        error
		wantStatusCode int
		wantSuccess    bool
		wantMessage    string
	}{
		{
			name:           "storage reachable",
			pingErr:        nil,
			wantStatusCode: http.StatusOK,
			wantSuccess:    true,
			wantMessage:    "server is running",
		},
		{
			name:           "storage unreachable",
			pingErr:        errors.New("connection refused"),
			wantStatusCode: http.StatusServiceUnavailable,
			wantSuccess:    false,
			wantMessage:    "storage unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pingerMock := new(PingerMock)
			pingerMock.On("Ping", mock.Anything).Return(tt.pingErr).Once()

			handler := New(newNoopLogger(), pingerMock)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err := json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			assert.Equal(t, tt.wantSuccess, got["success"])
			assert.Equal(t, tt.wantMessage, got["message"])

			pingerMock.AssertExpectations(t)
		})
	}
}
