package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/octotrack/octotrack-api/internal/auth"
	"github.com/octotrack/octotrack-api/internal/dashboard"
	"github.com/octotrack/octotrack-api/internal/goal"
	"github.com/octotrack/octotrack-api/internal/middlewares"
	"github.com/octotrack/octotrack-api/internal/user"
)

type RouterConfig struct {
	UserHandler      *user.Handler
	GoalHandler      *goal.Handler
	DashboardHandler *dashboard.Handler
}

func New(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.CorsMiddleware)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", cfg.UserHandler.GithubLogin)
		r.Post("/refresh", cfg.UserHandler.RefreshToken)
		r.Post("/logout", auth.NewHandler().Logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware)

		r.Mount("/users", user.Routes(cfg.UserHandler))
		r.Mount("/goals", goal.Routes(cfg.GoalHandler))
		r.Mount("/github", dashboard.Routes(cfg.DashboardHandler))
	})

	return r
}
