package main

import (
	"context"

	"github.com/membercircle/compliments/internal/app"
	"github.com/membercircle/compliments/internal/cache"
	"github.com/membercircle/compliments/internal/config"
	"github.com/membercircle/compliments/internal/db"
	"github.com/membercircle/compliments/internal/events"
	"github.com/membercircle/compliments/internal/logger"
	"github.com/membercircle/compliments/internal/mailer"
	"github.com/membercircle/compliments/internal/server"
	"github.com/membercircle/compliments/internal/service/activity"
	"github.com/membercircle/compliments/internal/service/compliments"
	"github.com/membercircle/compliments/internal/service/notify"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L() // slog.Logger pointer

	// Init DB (includes the idempotent install)
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	// Inject logger into app context
	appCtx := app.New(database, redisCache, log)

	// Fan-out consumers, registered in a defined order: activity first,
	// then notifications — matching the original hook sequence.
	bus := events.NewBus(log)
	recorder := activity.NewRecorder(appCtx, cfg.Compliments.ActivityEnabled)
	dispatcher := notify.NewDispatcher(appCtx, cfg, mailer.NewFromConfig(cfg, log))
	bus.Subscribe(recorder)
	bus.Subscribe(dispatcher)

	complimentSvc := compliments.NewService(appCtx, cfg, bus)

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	srv := server.New(appCtx, cfg, complimentSvc, dispatcher, recorder)

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := srv.Router().Run(addr); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
