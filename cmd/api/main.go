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

	httpadp "chama-ledger/internal/adapter/http"
	"chama-ledger/internal/adapter/middleware"
	"chama-ledger/internal/adapter/repository/mysql"
	"chama-ledger/internal/config"
	"chama-ledger/internal/infrastructure/cache"
	"chama-ledger/internal/infrastructure/db"
	"chama-ledger/internal/infrastructure/logger"
	"chama-ledger/internal/usecase/approval"
	"chama-ledger/internal/usecase/contribution"
	"chama-ledger/internal/usecase/loan"
	"chama-ledger/internal/usecase/member"
	"chama-ledger/internal/usecase/performance"
	"chama-ledger/internal/usecase/rotation"
	"chama-ledger/internal/usecase/settings"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Dev:    cfg.LogDev,
		File:   cfg.LogFile,
		MaxAge: time.Duration(cfg.LogMaxAgeHours) * time.Hour,
	})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	gdb, err := db.OpenGorm(cfg, log)
	if err != nil {
		return err
	}
	if cfg.DBAutoMigrate {
		if err := mysql.Migrate(gdb); err != nil {
			return err
		}
	}
	rdb, err := cache.FromConfig(cfg)
	if err != nil {
		return err
	}
	defer rdb.Close()

	tx := mysql.NewGormUoW(gdb)
	repos := mysql.Repos(gdb)

	rot := rotation.NewUsecase(tx, log)
	h := httpadp.Handlers{
		Health:        httpadp.NewHandler(),
		Loans:         httpadp.NewLoanHandler(loan.NewUsecase(tx, log), log),
		Repayments:    httpadp.NewRepaymentHandler(approval.NewUsecase(tx, log), log),
		Settings:      httpadp.NewSettingsHandler(settings.NewUsecase(repos.Settings, log), log),
		Rotation:      httpadp.NewRotationHandler(rot, log),
		Contributions: httpadp.NewContributionHandler(contribution.NewUsecase(tx, log).WithNotifier(rot), log),
		Members: httpadp.NewMemberHandler(
			member.NewUsecase(repos.Members, repos.Contributions, log),
			performance.NewUsecase(tx, log), log),
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())
	httpadp.Register(e, h,
		middleware.Auth([]byte(cfg.JWTSecret), log),
		middleware.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, log),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.AppPort
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("db", cfg.DBDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
