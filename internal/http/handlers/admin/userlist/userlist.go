// Package userlist реализует HTTP-обработчик списка пользователей для оператора.
package userlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/validity"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Entry — строка списка пользователей с вычисленной действительностью подписки.
type Entry struct {
	ID                 int64   `json:"id"`
	Username           string  `json:"username"`
	Status             string  `json:"status"`
	Expiry             *string `json:"expiry"`
	SubscriptionActive bool    `json:"subscription_active"`
	DaysLeft           *int    `json:"days_left,omitempty"`
}

// UserProvider описывает доступ к списку пользователей.
type UserProvider interface {
	ListUsers(ctx context.Context, limit, offset int) ([]models.User, error)
	CountUsers(ctx context.Context) (int, error)
}

// Handler обрабатывает запросы списка пользователей.
type Handler struct {
	log   *slog.Logger
	users UserProvider
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, users UserProvider) *Handler {
	return &Handler{
		log:   log,
		users: users,
	}
}

// ServeHTTP обрабатывает GET /api/v1/admin/users.
//
// Параметры limit и offset управляют страницей выборки. Для каждой строки
// действительность подписки вычисляется на текущую дату, а не читается из
// сохранённого статуса.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit := parseQueryInt(r, "limit", defaultLimit)
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	offset := parseQueryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	users, err := h.users.ListUsers(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list users"))
		return
	}

	total, err := h.users.CountUsers(r.Context())
	if err != nil {
		log.Error("failed to count users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list users"))
		return
	}

	today := time.Now()
	entries := make([]Entry, 0, len(users))
	for _, u := range users {
		entries = append(entries, newEntry(u, today))
	}
	log.Info("users listed", slog.Int("count", len(entries)), slog.Int("total", total))

	render.JSON(w, r, response.OKWithData("users listed", map[string]any{
		"users":  entries,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	}))
}

func newEntry(u models.User, today time.Time) Entry {
	entry := Entry{
		ID:                 u.ID,
		Username:           u.Username,
		Status:             u.Status,
		SubscriptionActive: validity.IsValid(u.Status, u.Expiry, today),
	}
	if u.Expiry != nil {
		formatted := u.Expiry.Format(time.DateOnly)
		entry.Expiry = &formatted
		days := validity.DaysLeft(*u.Expiry, today)
		entry.DaysLeft = &days
	}
	return entry
}

func parseQueryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
