package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/man7ober/natours/internal/api"
	"github.com/man7ober/natours/internal/core/service"
	"github.com/man7ober/natours/internal/infrastructure/config"
	natmongo "github.com/man7ober/natours/internal/infrastructure/db/mongo"
	natredis "github.com/man7ober/natours/internal/infrastructure/db/redis"
	"github.com/man7ober/natours/internal/infrastructure/email"
	"github.com/man7ober/natours/internal/infrastructure/images"
	"github.com/man7ober/natours/internal/infrastructure/payment"
	"github.com/man7ober/natours/internal/infrastructure/queue"
	"github.com/man7ober/natours/pkg/logger"
)

const shutdownGrace = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Development(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Mongo ---
	mongoClient, db, err := natmongo.Connect(ctx, natmongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	tourRepo := natmongo.NewTourRepository(db)
	userRepo := natmongo.NewUserRepository(db)
	reviewRepo := natmongo.NewReviewRepository(db)
	bookingRepo := natmongo.NewBookingRepository(db)

	for _, idx := range []interface {
		EnsureIndexes(context.Context) error
	}{tourRepo, userRepo, reviewRepo, bookingRepo} {
		if err := idx.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("index creation failed")
		}
	}

	// --- Redis ---
	rdb, err := natredis.Connect(ctx, natredis.Config{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	limiter := natredis.NewRateLimiter(rdb, cfg.RateLimit.Max, cfg.RateLimit.Window)

	// --- Collaborators ---
	mailer := email.NewMailer(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	checkout := payment.NewStripeProvider(cfg.Stripe.SecretKey)
	resizer := images.NewResizer()

	// --- Services ---
	maintainer := service.NewRatingMaintainer(reviewRepo, tourRepo, log)
	recalculator := queue.NewRatingRecalculator(0, maintainer, log)
	recalculator.Start(ctx)

	cookieTTL := time.Duration(cfg.JWT.CookieDays) * 24 * time.Hour
	authService := service.NewAuthService(userRepo, mailer, log, cfg.JWT.Secret, cfg.JWT.ExpiresIn, cookieTTL)
	tourService := service.NewTourService(tourRepo, reviewRepo, userRepo, log)
	userService := service.NewUserService(userRepo, log)
	reviewService := service.NewReviewService(reviewRepo, tourRepo, recalculator, log)
	bookingService := service.NewBookingService(bookingRepo, tourRepo, checkout, cfg.BaseURL, log)

	// --- HTTP ---
	e, err := api.NewRouter(api.Deps{
		Tours:       tourService,
		Users:       userService,
		Auth:        authService,
		Reviews:     reviewService,
		Bookings:    bookingService,
		Resizer:     resizer,
		Mongo:       db,
		Redis:       rdb,
		Limiter:     limiter,
		Log:         log,
		Development: cfg.Development(),
		TemplateDir: "web/templates",
		PublicDir:   "public",
		ImageDir:    "public/img",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("router setup failed")
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
}
