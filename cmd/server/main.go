package main

import (
	"context"
	"os"

	"github.com/dmitrymomot/accesskit/modules/auth"
	"github.com/dmitrymomot/accesskit/modules/permission"
	"github.com/dmitrymomot/accesskit/modules/role"
	"github.com/dmitrymomot/accesskit/modules/seed"
	"github.com/dmitrymomot/accesskit/pkg/config"
	"github.com/dmitrymomot/accesskit/pkg/environment"
	"github.com/dmitrymomot/accesskit/pkg/httpserver"
	"github.com/dmitrymomot/accesskit/pkg/logger"
	"github.com/dmitrymomot/accesskit/pkg/pg"
)

type appConfig struct {
	Environment environment.Environment `env:"ENVIRONMENT" envDefault:"development"`

	DB   pg.Config
	HTTP httpserver.Config
	Auth auth.Config
	Seed seed.Config
}

func main() {
	ctx := context.Background()

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(logger.WithEnvironment(cfg.Environment, "accesskit"))
	logger.SetAsDefault(log)

	if environment.IsDevelopment(cfg.Environment) {
		cfg.Auth.CookieSecure = false
	}

	pool, err := pg.Connect(ctx, cfg.DB)
	if err != nil {
		log.ErrorContext(ctx, "database connection failed", logger.Error(err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.DB, log); err != nil {
		log.ErrorContext(ctx, "migrations failed", logger.Error(err))
		os.Exit(1)
	}

	authSvc := auth.NewService(auth.NewRepository(pool), cfg.Auth, log)
	permSvc := permission.NewService(permission.NewRepository(pool), log)
	roleSvc := role.NewService(role.NewRepository(pool), log)

	seeder := seed.NewService(cfg.Seed, seed.NewRepository(pool), permSvc, roleSvc, log)
	if err := seeder.EnsureSeeded(ctx); err != nil {
		log.ErrorContext(ctx, "seeding failed", logger.Error(err))
		os.Exit(1)
	}

	srv := httpserver.New(cfg.HTTP, httpserver.WithLogger(log))
	if err := srv.Run(ctx, newRouter(pool, authSvc, cfg.Auth, permSvc, roleSvc, log)); err != nil {
		log.ErrorContext(ctx, "server stopped with error", logger.Error(err))
		os.Exit(1)
	}
}
