package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"simbooking/internal/api"
	"simbooking/internal/canceltoken"
	"simbooking/internal/config"
	"simbooking/internal/db"
	"simbooking/internal/httpx"
	"simbooking/internal/repository"
	"simbooking/internal/scheduling"
	"simbooking/internal/service"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database unavailable", zap.Error(err))
	}
	defer conn.Close()

	loc := cfg.Timezone
	grid := scheduling.DefaultGrid()

	bookingRepo := repository.NewBookingRepository(conn, loc)
	blackoutRepo := repository.NewBlackoutRepository(conn)
	hoursRepo := repository.NewWeeklyHoursRepository(conn)
	maestroRepo := repository.NewMaestroRepository(conn, loc)
	adminRepo := repository.NewAdminAuthRepository(conn)

	sender := service.NewSenderService(
		service.NewEmailSender(service.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFrom,
			FromName:  cfg.SendGridFromName,
		}, log),
		service.NewSMSSender(service.TwilioConfig{
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			FromNumber: cfg.TwilioFromNumber,
		}, log),
		cfg.AdminNotifyEmail,
		log,
	)

	availabilitySvc := service.NewAvailabilityService(bookingRepo, blackoutRepo, hoursRepo, scheduling.NewCalculator(grid), log)
	bookingSvc := service.NewBookingService(
		bookingRepo, blackoutRepo, hoursRepo,
		canceltoken.NewSigner(cfg.CancelTokenSecret),
		sender,
		service.BookingServiceConfig{Grid: grid, Location: loc, PublicBaseURL: cfg.PublicBaseURL},
		log,
	)
	blackoutSvc := service.NewBlackoutService(blackoutRepo, log)
	hoursSvc := service.NewWeeklyHoursService(hoursRepo, grid, log)
	maestroSvc := service.NewMaestroService(maestroRepo, cfg.MaestroHourlyRate, loc, log)
	adminAuthSvc := service.NewAdminAuthService(adminRepo, cfg.JWTSecret, log)
	exportSvc := service.NewExportService(bookingRepo, log)

	jobs, err := service.NewJobService(maestroSvc, log).Start(cfg.MaestroSyncSchedule)
	if err != nil {
		log.Fatal("cannot schedule maestro sync", zap.Error(err))
	}

	rateLimit, closeLimiter, err := httpx.NewRateLimitMiddleware(cfg.RedisURL, cfg.RateLimitPerMinute, log)
	if err != nil {
		log.Fatal("invalid rate limit configuration", zap.Error(err))
	}
	defer closeLimiter()

	router := api.NewRouter(api.Handlers{
		User:      api.NewUserHandler(availabilitySvc, bookingSvc, loc),
		AdminAuth: api.NewAdminAuthHandler(adminAuthSvc, cfg.CookieSecure),
		Admin:     api.NewAdminHandler(bookingSvc, exportSvc, log),
		Schedule:  api.NewScheduleHandler(blackoutSvc, hoursSvc),
		Maestri:   api.NewMaestroHandler(maestroSvc),
	}, api.RouterOptions{Tokens: adminAuthSvc, RateLimit: rateLimit})

	handler := httpx.Chain(router,
		httpx.WithRequestID,
		httpx.WithProxyHeaders(cfg.TrustProxy),
		httpx.WithAccessLog(log),
		httpx.WithRecovery(log),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "Authorization", httpx.RequestIDHeader},
			MaxAge:         10 * time.Minute,
		}),
		httpx.WithBodyLimit(1<<20),
		httpx.WithTimeout(45*time.Second),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		log.Info("server running", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	<-jobs.Stop().Done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
