// Package useredit реализует HTTP-обработчик правки подписки оператором.
package useredit

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/validity"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/storage/repository"
)

// Request — входные данные для правки подписки.
//
// Пустая дата окончания означает бессрочную подписку.
type Request struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
	Expiry string `json:"expiry,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// UserEditor описывает доступ к изменению пользователей.
type UserEditor interface {
	UpdateUserSubscription(ctx context.Context, id int64, status string, expiry *time.Time) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// Handler обрабатывает запросы правки подписки.
type Handler struct {
	log      *slog.Logger
	users    UserEditor
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, users UserEditor) *Handler {
	return &Handler{
		log:      log,
		users:    users,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает PUT /api/v1/admin/users/{id}.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.useredit"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("invalid user id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid user id"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	var expiry *time.Time
	if req.Expiry != "" {
		parsed, err := time.Parse(time.DateOnly, req.Expiry)
		if err != nil {
			log.Error("failed to parse expiry", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid expiry date"))
			return
		}
		expiry = &parsed
	}

	if err := h.users.UpdateUserSubscription(r.Context(), id, req.Status, expiry); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Info("user not found", slog.Int64("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to update user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update user"))
		return
	}

	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		log.Error("failed to read updated user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update user"))
		return
	}
	log.Info("user updated",
		slog.Int64("id", id),
		slog.String("status", req.Status))

	render.JSON(w, r, response.Decision(true, "user updated", user,
		validity.IsValid(user.Status, user.Expiry, time.Now())))
}
