package gatekeeper

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminlogin "github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/admin/login"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/admin/useredit"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/admin/userlist"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/auth/authenticate"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/auth/renew"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/handlers/status"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/jwt"
	authservice "github.com/magabrotheeeer/subscription-gatekeeper/internal/services/auth"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, authService *authservice.AuthService, db *repository.Storage, jwtMaker jwt.Maker) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/status", status.New(logger, db).ServeHTTP)
		r.Post("/authenticate", authenticate.New(logger, authService).ServeHTTP)
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/renew", renew.New(logger, authService).ServeHTTP)
		r.Post("/admin/login", adminlogin.New(logger, authService).ServeHTTP)

		// Операторская панель за JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Get("/admin/users", userlist.New(logger, db).ServeHTTP)
			r.Put("/admin/users/{id}", useredit.New(logger, db).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
}
