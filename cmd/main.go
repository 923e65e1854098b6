package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	httpcontext "github.com/nexra/user-service/internal/api/http/context"
	"github.com/nexra/user-service/internal/api/http/handler"
	"github.com/nexra/user-service/internal/api/http/middleware"
	"github.com/nexra/user-service/internal/api/http/router"
	httpserver "github.com/nexra/user-service/internal/api/http/server"
	"github.com/nexra/user-service/internal/config"
	"github.com/nexra/user-service/internal/event"
	"github.com/nexra/user-service/internal/hash"
	"github.com/nexra/user-service/internal/logger"
	"github.com/nexra/user-service/internal/mail"
	"github.com/nexra/user-service/internal/model"
	"github.com/nexra/user-service/internal/repository/postgres"
	"github.com/nexra/user-service/internal/server"
	"github.com/nexra/user-service/internal/service"
	redisstore "github.com/nexra/user-service/internal/storage/redis"
	"github.com/nexra/user-service/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	kvStore, err := redisstore.NewClient(ctx, rdb)
	if err != nil {
		logger.Fatal("failed to initialize key-value store", "error", err)
	}
	defer rdb.Close()

	mailSender, err := mail.NewSMTPSender(cfg.SMTP)
	if err != nil {
		logger.Fatal("failed to initialize mail sender", "error", err)
	}

	userRepo := postgres.NewUserRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	hasher := hash.NewBcrypt(bcrypt.DefaultCost)

	dispatcher := event.NewDispatcher(rdb, cfg.Events.Stream, logger)
	consumer := event.NewConsumer(rdb, cfg.Events, mailSender, logger)

	tokenService := service.NewTokenService(tokenManager, kvStore, logger)
	otpService := service.NewOTP(kvStore, logger, cfg.OTP.TTL, cfg.OTP.MaxAttempts)
	authService := service.NewAuth(userRepo, hasher, tokenService, otpService, dispatcher, logger)
	userService := service.NewUser(userRepo, logger)

	ctxMgr := httpcontext.NewManager()
	httpServer := buildHTTPServer(logger, authService, userService, tokenService, ctxMgr, fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := consumer.Run(ctx); err != nil {
			logger.Error("event consumer stopped", "error", err)
		}
	}()

	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(httpServer)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

func buildHTTPServer(
	logger *logger.Logger,
	authService *service.Auth,
	userService *service.User,
	tokenService *service.TokenService,
	ctxMgr model.ContextManager,
	addr string,
) *httpserver.HTTPServer {
	authHandler := handler.NewAuth(authService, logger)
	userHandler := handler.NewUser(userService, ctxMgr, logger)
	authenticate := middleware.NewAuthenticate(tokenService, ctxMgr, logger)
	logging := middleware.NewLogging(logger)

	r := router.New(authHandler, userHandler, authenticate, logging)

	return httpserver.NewHTTPServer(r, addr)
}
