package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AlexandreFrancony/Bartending-Back/docs"
	"github.com/AlexandreFrancony/Bartending-Back/internal/config"
	"github.com/AlexandreFrancony/Bartending-Back/internal/logging"
	"github.com/AlexandreFrancony/Bartending-Back/internal/ratelimit"
	"github.com/AlexandreFrancony/Bartending-Back/internal/repository/postgres"
	"github.com/AlexandreFrancony/Bartending-Back/internal/service"
	transporthttp "github.com/AlexandreFrancony/Bartending-Back/internal/transport/http"
	"github.com/AlexandreFrancony/Bartending-Back/internal/transport/mail"
	"github.com/AlexandreFrancony/Bartending-Back/internal/util"
)

const shutdownTimeout = 10 * time.Second

// @title Bartending API
// @version 1.0
// @description Accounts, authentication and administration for the bar API.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, closeLogs, err := logging.New(logging.Options{
		Level:        cfg.LogLevel,
		Format:       cfg.LogFormat,
		LogstashAddr: cfg.LogstashTCPAddr,
	}, "bartending-api")
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(cfg.DatabaseURL, postgres.Options{
		Driver:          cfg.DBDriver,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		fatal(logger, "database init", err)
	}

	if cfg.RunMigrations {
		if err := postgres.Migrate(ctx, db); err != nil {
			fatal(logger, "migrations", err)
		}
		logger.Info("migrations applied")
	}

	tokens, err := util.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	if err != nil {
		fatal(logger, "token service", err)
	}

	users := postgres.NewUserRepo(db, cfg.DBQueryTimeout)
	resets := service.NewResetTokenStore(users, cfg.PasswordResetTTL)

	var resetSender service.PasswordResetSender
	mailer := mail.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, cfg.SMTPUseTLS)
	if mailer.Configured() {
		resetSender = mail.NewPasswordResetMailer(mailer, cfg.PasswordResetTTL)
	} else {
		logger.Warn("smtp not configured, password reset emails are disabled")
	}

	accounts := service.NewAccountService(users, tokens, resets, resetSender, cfg.ResetURLBase, logger)
	admin := service.NewUserAdminService(users, logger)

	var limitStore ratelimit.Store = ratelimit.NewMemoryStore()
	var redisClient *redis.Client
	if cfg.RateLimitRedisAddr != "" {
		redisClient = ratelimit.NewRedisClient(cfg.RateLimitRedisAddr, cfg.RateLimitRedisPassword, cfg.RateLimitRedisDB)
		redisStore := ratelimit.NewRedisStore(redisClient)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisStore.Ping(pingCtx); err != nil {
			logger.Warn("rate limit redis unreachable, requests pass until it recovers", "addr", cfg.RateLimitRedisAddr, "error", err)
		}
		cancel()
		limitStore = redisStore
	}
	limits := transporthttp.NewRateLimits(limitStore, logger)

	e := transporthttp.NewRouter(transporthttp.RouterConfig{
		AllowOrigins: cfg.AllowOrigins,
		TrustProxy:   cfg.TrustProxy,
		Logger:       logger,
	})
	transporthttp.RegisterAuth(e, accounts, tokens, limits, logger)
	transporthttp.RegisterAdmin(e, admin, tokens, limits, logger)
	transporthttp.RegisterPages(e, limits)
	if err := transporthttp.RegisterSwagger(e, docs.SwaggerYAML); err != nil {
		fatal(logger, "swagger", err)
	}

	addr := ":" + cfg.Port
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	if err := db.Close(); err != nil {
		logger.Error("close database", "error", err)
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis", "error", err)
		}
	}
	logger.Info("shutdown complete")
	if err := closeLogs(); err != nil {
		log.Printf("close log shipper: %v", err)
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
