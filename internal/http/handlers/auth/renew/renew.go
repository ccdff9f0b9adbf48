// Package renew реализует HTTP-обработчик оформления и продления подписки.
package renew

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
	services "github.com/magabrotheeeer/subscription-gatekeeper/internal/services/auth"
)

// Request — входные данные для продления подписки.
type Request struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Plan     string `json:"plan" validate:"required,oneof=lifetime 1m 6m 12m"`
}

// planMonths переводит тарифный план в срок подписки в месяцах.
// Ноль месяцев означает бессрочную подписку.
var planMonths = map[string]int{
	"lifetime": 0,
	"1m":       1,
	"6m":       6,
	"12m":      12,
}

// Service описывает интерфейс бизнес-логики продления.
type Service interface {
	Renew(ctx context.Context, username, secret string, months int, today time.Time) (*models.User, error)
}

// Handler обрабатывает HTTP-запросы продления подписки.
type Handler struct {
	log         *slog.Logger
	authService Service
	validate    *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, authService Service) *Handler {
	return &Handler{
		log:         log,
		authService: authService,
		validate:    validator.New(),
	}
}

// ServeHTTP обрабатывает POST /api/v1/renew.
//
// Продление требует действующих учётных данных: перед изменением статуса
// пользователь проходит ту же проверку пароля, что и при аутентификации.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.renew"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("username", req.Username), slog.String("plan", req.Plan))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	user, err := h.authService.Renew(r.Context(), req.Username, req.Password, planMonths[req.Plan], time.Now())
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Info("invalid credentials", slog.String("username", req.Username))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid username or password"))
			return
		}
		log.Error("failed to renew subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to renew subscription"))
		return
	}
	log.Info("subscription renewed",
		slog.String("username", user.Username),
		slog.String("plan", req.Plan))

	render.JSON(w, r, response.Decision(true, "subscription renewed", user, true))
}
