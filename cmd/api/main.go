package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httpadp "github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/adapter/http"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/adapter/middleware"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/adapter/repository/gormrepo"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/audittrail"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/authz"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/config"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/infrastructure/cache"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/infrastructure/db"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/infrastructure/observability"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/infrastructure/session"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/tenancy"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/usecase/auth"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/usecase/guard"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/usecase/negotiation"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/usecase/quote"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		panic(err)
	}
	cfg := config.Load()

	logger := observability.NewLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		logger.Fatal("init tracer", zap.Error(err))
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(sctx)
	}()

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), cfg.DBLogLevel)
	if err != nil {
		logger.Fatal("open database", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(gdb); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
		logger.Info("schema migrated")
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		logger.Fatal("database handle", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := cache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatal("open redis", zap.Error(err))
	}
	defer rdb.Close()

	metrics := observability.NewMetrics()

	// repositories
	quotes := gormrepo.NewQuoteRepository(gdb)
	users := gormrepo.NewUserRepository(gdb)
	tx := gormrepo.NewGormUoW(gdb)
	security := audittrail.New(gormrepo.NewAuditRepository(gdb))

	// core
	sessions := session.NewManager(cfg.SessionSecret, cfg.SessionTTL, cfg.SessionIssuer)
	resolver := tenancy.NewResolver(sessions, users, authz.NewEvaluator(authz.DefaultTable()))
	g := guard.New(quotes, security, logger, metrics)

	authUC := auth.NewUsecase(gormrepo.NewTenantRepository(gdb), users, tx, sessions, security, logger, metrics, bcrypt.DefaultCost)
	quoteUC := quote.NewUsecase(quotes, gormrepo.NewClientRepository(gdb), tx, g, logger, metrics)
	negoUC := negotiation.NewUsecase(quotes, gormrepo.NewClaimRepository(gdb), tx, g, logger, metrics)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Recover(), echomw.RequestID(), middleware.AccessLog(logger, metrics))

	httpadp.Register(e, httpadp.Routes{
		Health: httpadp.NewHandler(metrics.Registry,
			httpadp.Check{Name: "database", Ping: sqlDB.PingContext},
			httpadp.Check{Name: "redis", Ping: func(ctx context.Context) error { return cache.Ping(ctx, rdb) }},
		),
		Auth:         httpadp.NewAuthHandler(authUC, logger),
		Quotes:       httpadp.NewQuoteHandler(quoteUC, logger),
		Claims:       httpadp.NewClaimHandler(negoUC, logger),
		Authenticate: middleware.Authenticate(resolver, logger),
		Idempotency:  middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, logger),
	})

	addr := ":" + cfg.AppPort
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
