// Package authenticate реализует HTTP-обработчик проверки учётных данных
// и действительности подписки.
//
// Обработчик декодирует JSON, делегирует решение сервису аутентификации
// и отображает вид решения на HTTP-статус. Никакой сессии или токена
// не выпускается: это одиночная самодостаточная проверка.
package authenticate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/metrics"
	services "github.com/magabrotheeeer/subscription-gatekeeper/internal/services/auth"
)

// Request — структура входных данных для проверки.
type Request struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Authenticate(ctx context.Context, username, secret string, today time.Time) *services.Decision
}

// Handler обрабатывает HTTP-запросы проверки учётных данных.
type Handler struct {
	log         *slog.Logger
	authService Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, authService Service) *Handler {
	return &Handler{
		log:         log,
		authService: authService,
	}
}

// ServeHTTP обрабатывает POST /api/v1/authenticate.
//
// Отображение решения на статусы: некорректный ввод — 400, неверные
// учётные данные — 401, подписка недействительна — 403 (с данными профиля
// в теле: отказ авторизации, а не аутентификации), подписка действует — 200,
// хранилище недоступно — 503.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.authenticate"

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
	log.Info("authentication requested", slog.String("username", req.Username))

	decision := h.authService.Authenticate(r.Context(), req.Username, req.Password, time.Now())
	metrics.AuthDecisions.WithLabelValues(string(decision.Kind)).Inc()

	switch decision.Kind {
	case services.DecisionInvalidInput:
		log.Info("rejected invalid input")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(decision.Message))
	case services.DecisionInvalidCredentials:
		// Неизвестное имя и неверный пароль неразличимы в ответе.
		log.Info("invalid credentials", slog.String("username", req.Username))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error(decision.Message))
	case services.DecisionStoreUnavailable:
		log.Error("credential store unavailable")
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error(decision.Message))
	case services.DecisionInactive:
		log.Info("subscription inactive", slog.String("username", req.Username))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Decision(false, decision.Message, decision.User, false))
	case services.DecisionActive:
		log.Info("subscription active", slog.String("username", req.Username))
		render.JSON(w, r, response.Decision(true, decision.Message, decision.User, true))
	default:
		log.Error("unknown decision kind", slog.String("kind", string(decision.Kind)))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
	}
}
