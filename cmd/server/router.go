package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/accesskit/modules/application"
	"github.com/dmitrymomot/accesskit/modules/auth"
	"github.com/dmitrymomot/accesskit/modules/permission"
	"github.com/dmitrymomot/accesskit/modules/role"
	"github.com/dmitrymomot/accesskit/modules/user"
	"github.com/dmitrymomot/accesskit/pkg/httpserver"
	"github.com/dmitrymomot/accesskit/pkg/metrics"
	"github.com/dmitrymomot/accesskit/pkg/pg"
	"github.com/dmitrymomot/accesskit/pkg/requestid"
)

// newRouter assembles the full HTTP surface: the public auth routes, the
// cookie-guarded registries, and the operational endpoints.
func newRouter(pool *pgxpool.Pool, authSvc *auth.Service, authCfg auth.Config, permSvc *permission.Service, roleSvc *role.Service, log *slog.Logger) http.Handler {
	appSvc := application.NewService(application.NewRepository(pool), log)
	userSvc := user.NewService(user.NewRepository(pool), log)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(metrics.Instrument)

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", auth.NewHandler(authSvc, authCfg).Routes())

		r.Group(func(r chi.Router) {
			r.Use(authSvc.Authenticate)
			r.Mount("/applications", application.NewHandler(appSvc).Routes(func(r chi.Router) {
				r.Mount("/permissions", permission.NewHandler(permSvc).Routes())
				r.Mount("/roles", role.NewHandler(roleSvc).Routes())
				r.Mount("/users", user.NewHandler(userSvc).Routes())
			}))
		})
	})

	r.Get("/health", httpserver.HealthCheckHandler(log, pg.Healthcheck(pool)))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}
