package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/mind-engage/mindengage-quiz/internal/api/http"
	auth "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/config"
	"github.com/mind-engage/mindengage-quiz/internal/course"
	"github.com/mind-engage/mindengage-quiz/internal/db"
	"github.com/mind-engage/mindengage-quiz/internal/lock"
	"github.com/mind-engage/mindengage-quiz/internal/logging"
	"github.com/mind-engage/mindengage-quiz/internal/metrics"
	"github.com/mind-engage/mindengage-quiz/internal/notify"
	"github.com/mind-engage/mindengage-quiz/internal/proctor"
	"github.com/mind-engage/mindengage-quiz/internal/question"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/storage"
	"github.com/mind-engage/mindengage-quiz/internal/submission"
	"github.com/mind-engage/mindengage-quiz/internal/user"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("gateway stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return err
	}
	defer dbh.Close()

	users := user.NewStore(dbh)
	if created, err := users.EnsureAdmin(ctx, cfg.AdminUser, cfg.AdminPassHash); err != nil {
		return err
	} else if created {
		logger.Info("bootstrap admin created", "username", cfg.AdminUser)
	}

	// --- Locks: Redis when configured, in-process otherwise ---
	var locker lock.Locker = lock.NewLocal()
	if cfg.RedisAddr != "" {
		rc, err := lock.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, using in-process locks", "err", err)
		} else {
			defer rc.Close()
			locker = lock.NewRedis(rc)
			logger.Info("using redis locks", "addr", cfg.RedisAddr)
		}
	}

	// --- Notifications: SQL inbox plus optional AMQP fan-out ---
	inbox := notify.NewSQLSink(dbh)
	pub, err := notify.NewAMQPPublisher(cfg.RabbitURI, cfg.RabbitExchange, logger)
	if err != nil {
		return err
	}
	defer pub.Close()
	sinks := []notify.Sink{inbox}
	if pub.Enabled() {
		sinks = append(sinks, pub)
	}
	fanout := notify.NewFanout(logger, sinks...)

	bs, err := storage.NewFSStore(cfg.BlobBasePath, "/assets")
	if err != nil {
		return err
	}

	loc := cfg.Location()
	deps := api.Deps{
		DB:      dbh,
		Auth:    auth.NewAuthService(cfg.AuthSecret, cfg.TokenTTL),
		Users:   users,
		Courses: course.NewSQLStore(dbh),
		Scheduler: quiz.NewScheduler(dbh, fanout,
			quiz.WithLocation(loc),
			quiz.WithLocker(locker),
			quiz.WithLogger(logger.With("component", "scheduler"))),
		Questions: question.NewService(dbh),
		Scorer: submission.NewScorer(dbh,
			submission.WithLocker(locker),
			submission.WithResubmission(cfg.AllowResubmission),
			submission.WithLogger(logger.With("component", "scorer"))),
		Inbox:  inbox,
		Events: proctor.NewEventRepo(dbh),
		Blobs:  bs,
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Handle("/metrics", metrics.Handler())
	api.Mount(r, deps)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr, "db", cfg.DBDriver, "timezone", loc.String(),
			"amqp", pub.Enabled(), "allow_resubmission", cfg.AllowResubmission)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}
