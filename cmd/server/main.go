package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/example/pandol/internal/config"
	"github.com/example/pandol/internal/database"
	"github.com/example/pandol/internal/handlers"
	"github.com/example/pandol/internal/logger"
	"github.com/example/pandol/internal/middleware"
	"github.com/example/pandol/internal/repository"
	"github.com/example/pandol/internal/routes"
	"github.com/example/pandol/internal/scheduler"
	"github.com/example/pandol/internal/services"
	"github.com/example/pandol/internal/session"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}

	log := logger.New(os.Stdout, cfg.LogLevel, cfg.IsProduction())

	db, err := database.Connect(cfg.DatabaseURL, log, !cfg.IsProduction() && cfg.LogLevel == "debug")
	if err != nil {
		log.WithError(err).Fatal("connect database")
	}

	if cfg.SeedData {
		if err := database.Seed(db, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			log.WithError(err).Fatal("seed database")
		}
	}

	var logo []byte
	if cfg.Report.LogoPath != "" {
		logo, err = os.ReadFile(cfg.Report.LogoPath)
		if err != nil {
			log.WithError(err).WithField("path", cfg.Report.LogoPath).Warn("read report logo, using bundled logo")
			logo = nil
		}
	}

	memberRepo := repository.NewMemberRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	creditRepo := repository.NewCreditRepository(db)
	resolver := session.ContextResolver{}

	notifier := services.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramAdminChat, log)
	svc := routes.Services{
		Auth: services.NewAuthService(
			repository.NewUserRepository(db),
			memberRepo,
			repository.NewTokenRepository(db),
			services.AuthConfig{Secret: cfg.JWTSecret, TokenTTL: cfg.TokenExpires, ResetTTL: cfg.ResetTTL},
			log,
		),
		Members:    services.NewMemberService(memberRepo, transactionRepo, creditRepo, resolver, log),
		Credits:    services.NewCreditService(memberRepo, creditRepo, notifier, log),
		Sales:      services.NewSaleService(memberRepo, transactionRepo, resolver, log),
		Reports:    services.NewReportService(repository.NewReportSource(db), repository.NewLetterheadRepository(db), cfg.Report.Source, logo, log),
		MemberRepo: memberRepo,
	}

	jobs := scheduler.New(scheduler.Config{
		Enabled:        cfg.Scheduler.Enabled,
		ReconcileCron:  cfg.Scheduler.ReconcileCron,
		TokenPurgeCron: cfg.Scheduler.TokenPurgeCron,
	}, svc.Credits, svc.Auth, log)
	svc.Reconciles = jobs

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		BodyLimit:    8 << 20,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: handlers.ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID(log))
	app.Use(fiberlogger.New(fiberlogger.Config{Output: log.Writer()}))

	routes.Register(app, db, cfg, svc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := jobs.Start(ctx); err != nil {
		log.WithError(err).Fatal("start scheduler")
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.WithError(err).Error("shutdown server")
		}
	}()

	log.WithField("port", cfg.AppPort).Info("starting server")
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.WithError(err).Fatal("fiber.Listen error")
	}
}
