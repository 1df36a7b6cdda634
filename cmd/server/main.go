package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"                        // Request IDs
	"github.com/joho/godotenv"                      // .env loader
	"github.com/labstack/echo/v4"                   // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Echo built-in middleware
	"github.com/robfig/cron/v3"                     // Calendar sync scheduler

	"github.com/iliyamo/cabin-booking/internal/config"
	"github.com/iliyamo/cabin-booking/internal/database"
	"github.com/iliyamo/cabin-booking/internal/handler"
	"github.com/iliyamo/cabin-booking/internal/jobs"
	"github.com/iliyamo/cabin-booking/internal/logger"
	"github.com/iliyamo/cabin-booking/internal/middleware"
	"github.com/iliyamo/cabin-booking/internal/queue"
	"github.com/iliyamo/cabin-booking/internal/repository"
	"github.com/iliyamo/cabin-booking/internal/router"
	"github.com/iliyamo/cabin-booking/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()
	log := logger.NewDefaultLogger(logger.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Storage ----
	db, err := database.Open(ctx, cfg.DSN())
	if err != nil {
		log.Error("database: %v", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		log.Error("migrate: %v", err)
		os.Exit(1)
	}

	units := repository.NewUnitRepo(db)
	clients := repository.NewClientRepo(db)
	reservations := repository.NewReservationRepo(db)
	audit := repository.NewAuditRepo(db)
	messages := repository.NewMessageRepo(db)
	users := repository.NewUserRepo(db)

	rdb := config.NewRedisClient() // nil when Redis is unreachable; cache and rate limit then pass through
	if rdb != nil {
		defer rdb.Close()
	}

	// ---- Events ----
	var events service.Publisher = service.NopPublisher{}
	if cfg.RabbitURL != "" {
		events = service.NewAMQPPublisher(cfg.RabbitURL, log)
		consumer := queue.NewConsumer(cfg.RabbitURL, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("reservation-consumer: %v", err)
			}
		}()
	} else {
		log.Info("RABBITMQ_URL not set, reservation events disabled")
	}

	// ---- Services ----
	booker := service.NewReservationService(units, clients, reservations, events, log, cfg.Location())
	calendar := service.NewCalendarService(units, reservations, booker, nil, log)

	scheduler := cron.New(cron.WithLocation(cfg.Location()))
	if err := jobs.InitCronJobs(scheduler, cfg.SyncCron, calendar, log); err != nil {
		log.Error("cron: %v", err)
		os.Exit(1)
	}
	defer scheduler.Stop()

	// ---- HTTP ----
	cacheCfg := config.LoadCacheConfig()
	purge := func(ctx context.Context) {
		if rdb == nil || !cacheCfg.Enabled {
			return
		}
		if err := middleware.PurgeCache(ctx, rdb, cacheCfg.Prefix); err != nil {
			log.Error("cache purge: %v", err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: splitList(cfg.CORSOrigins)}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Info("%s %s %d %s id=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	}))

	today := booker.Today
	router.RegisterRoutes(e, db, handler.NewCalendarHandler(calendar))
	router.RegisterAuth(e, handler.NewAuthHandler(users, cfg.JWTSecret, cfg.AccessTTLMin), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(units, booker),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		middleware.NewRedisCache(cacheCfg, rdb))
	router.RegisterAdmin(e, router.Admin{
		Reservations: handler.NewReservationHandler(booker, reservations, audit),
		Grid:         handler.NewGridHandler(units, reservations, today, cfg.GridDays),
		Units:        handler.NewUnitHandler(units, purge),
		Clients:      handler.NewClientHandler(clients),
		Messages:     handler.NewMessageHandler(messages),
		Reports:      handler.NewReportHandler(reservations, today),
		Calendar:     handler.NewCalendarHandler(calendar),
	}, cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown: %v", err)
	}
	log.Info("server stopped")
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
