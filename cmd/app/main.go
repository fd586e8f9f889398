package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salon-service/internal/config"
	bookingCancel "salon-service/internal/http-server/handlers/bookings/cancel"
	bookingComplete "salon-service/internal/http-server/handlers/bookings/complete"
	bookingConfirm "salon-service/internal/http-server/handlers/bookings/confirm"
	bookingCreate "salon-service/internal/http-server/handlers/bookings/create"
	bookingDecline "salon-service/internal/http-server/handlers/bookings/decline"
	bookingGet "salon-service/internal/http-server/handlers/bookings/get"
	bookingNoShow "salon-service/internal/http-server/handlers/bookings/noshow"
	bookingReschedule "salon-service/internal/http-server/handlers/bookings/reschedule"
	bookingRespond "salon-service/internal/http-server/handlers/bookings/respond"
	clientBookings "salon-service/internal/http-server/handlers/clients/bookings"
	masterConflict "salon-service/internal/http-server/handlers/masters/conflict"
	salonPending "salon-service/internal/http-server/handlers/salons/pending"
	"salon-service/internal/hooks"
	"salon-service/internal/lock"
	memorystorage "salon-service/internal/storage/memory"
	"salon-service/internal/storage/postgres"
	redisstorage "salon-service/internal/storage/redis"
	"salon-service/internal/workflow"
	"salon-service/pkg/clock"
	"salon-service/pkg/handlers/slogpretty"
	"salon-service/pkg/middleware/mwlogger"
	"salon-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting API", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	location, err := time.LoadLocation(cfg.Workflow.Timezone)
	if err != nil {
		log.Error("Unknown timezone", slog.String("timezone", cfg.Workflow.Timezone), sl.Err(err))
		os.Exit(1)
	}

	var store workflow.Store
	var closeStore func() error

	switch cfg.Storage {
	case "memory":
		s := memorystorage.New()
		store = s
		closeStore = s.Close
	case "redis":
		s, err := redisstorage.New(cfg.RedisAddr)
		if err != nil {
			log.Error("Failed to init redis storage", sl.Err(err))
			os.Exit(1)
		}
		store = s
		closeStore = s.Close
	case "postgres":
		s, err := postgres.New(cfg.StoragePath)
		if err != nil {
			log.Error("Failed to init postgres storage", sl.Err(err))
			os.Exit(1)
		}
		store = s
		closeStore = s.Close
	default:
		log.Error("Unknown storage backend", slog.String("storage", cfg.Storage))
		os.Exit(1)
	}

	var locker lock.Locker
	if cfg.Storage == "memory" {
		locker = lock.NewMemoryLock()
	} else {
		redisLock, err := lock.NewRedisLock(cfg.RedisAddr)
		if err != nil {
			log.Error("Failed to init redis lock", sl.Err(err))
			os.Exit(1)
		}
		locker = redisLock
	}

	engine := workflow.NewEngine(
		log,
		store,
		locker,
		clock.NewRealClock(),
		workflow.Config{
			TempHoldTTL:                cfg.Workflow.TempHoldTTL,
			ConfirmationDeadline:       cfg.Workflow.ConfirmationDeadline,
			RescheduleResponseDeadline: cfg.Workflow.RescheduleResponseDeadline,
			CancelNoticePeriod:         cfg.Workflow.CancelNoticePeriod,
			LockTTL:                    cfg.Workflow.LockTTL,
			Location:                   location,
		},
		&hooks.LogRefundExecutor{Log: log},
		&hooks.LogNotifier{Log: log},
	)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	sweeper := workflow.NewSweeper(log, engine, cfg.Workflow.SweepInterval)
	go sweeper.Run(sweepCtx)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(CORS)

	// Bookings
	router.Post("/bookings", bookingCreate.New(log, engine))
	router.Get("/bookings/{id}", bookingGet.New(log, engine))
	router.Post("/bookings/{id}/confirm", bookingConfirm.New(log, engine))
	router.Post("/bookings/{id}/decline", bookingDecline.New(log, engine))
	router.Post("/bookings/{id}/reschedule", bookingReschedule.New(log, engine))
	router.Post("/bookings/{id}/reschedule/respond", bookingRespond.New(log, engine))
	router.Post("/bookings/{id}/cancel", bookingCancel.New(log, engine))
	router.Post("/bookings/{id}/complete", bookingComplete.New(log, engine))
	router.Post("/bookings/{id}/no-show", bookingNoShow.New(log, engine))

	// Queues and calendars
	router.Get("/salons/{id}/bookings/pending", salonPending.New(log, engine))
	router.Get("/clients/{id}/bookings", clientBookings.New(log, engine))
	router.Get("/masters/{id}/conflicts", masterConflict.New(log, engine))

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	stopSweeper()

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	if err := closeStore(); err != nil {
		log.Error("Failed to close storage", sl.Err(err))
	} else {
		log.Info("Storage closed")
	}

	if err := locker.Close(); err != nil {
		log.Error("Failed to close locker", sl.Err(err))
	} else {
		log.Info("Locker closed")
	}

	log.Info("Shutdown finished, server stopped")

}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
