package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/static"
	"github.com/rs/zerolog/log"

	"github.com/kayceejenz/mtop/internal/auth"
	"github.com/kayceejenz/mtop/internal/config"
	"github.com/kayceejenz/mtop/internal/db"
	"github.com/kayceejenz/mtop/internal/handler"
	"github.com/kayceejenz/mtop/internal/messaging"
	"github.com/kayceejenz/mtop/internal/middleware"
	"github.com/kayceejenz/mtop/internal/repository"
	"github.com/kayceejenz/mtop/internal/router"
	"github.com/kayceejenz/mtop/internal/service"
	"github.com/kayceejenz/mtop/internal/storage"
)

func main() {
	config.LoadDotEnv(".env")
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "mtop-api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid session token configuration")
	}

	handler.InitMetrics(pool)

	cache := service.NewCacheService(cfg.RedisURL)
	cache.OnHit = handler.RecordCacheHit
	cache.OnMiss = handler.RecordCacheMiss
	defer cache.Close()

	// Repositories
	ledger := repository.NewLedger(pool)
	accounts := repository.NewAccountRepo(ledger)
	prompts := repository.NewPromptRepo(ledger)
	memes := repository.NewMemeRepo(ledger)
	votes := repository.NewVoteRepo(ledger)
	purchases := repository.NewPurchaseRepo(ledger)
	shares := repository.NewShareRepo(ledger)
	comments := repository.NewCommentRepo(ledger)

	// Object storage: FTP when configured, local disk otherwise.
	var objects service.ObjectStore
	localStorage := cfg.FTPHost == ""
	if localStorage {
		local, err := storage.NewLocalStore(cfg.StorageDir, cfg.StorageBaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to prepare local storage")
		}
		objects = local
		log.Info().Str("dir", cfg.StorageDir).Msg("storing images on local disk")
	} else {
		ftpStore := storage.NewFTPStore(cfg.FTPHost, cfg.FTPPort, cfg.FTPUser, cfg.FTPPassword, cfg.StorageBaseURL)
		defer ftpStore.Close()
		objects = ftpStore
		log.Info().Str("host", cfg.FTPHost).Msg("storing images over FTP")
	}

	// Services
	accountSvc := service.NewAccountService(accounts)
	promptSvc := service.NewPromptService(prompts, cache)
	memeSvc := service.NewMemeService(memes, prompts, accounts, objects, cache, cfg.MaxImageBytes)
	voteSvc := service.NewVoteService(votes, cache)
	purchaseSvc := service.NewPurchaseService(purchases)
	shareSvc := service.NewShareService(shares)
	commentSvc := service.NewCommentService(comments, memes, accounts)
	syncSvc := service.NewSyncService(memes, comments)
	reconcileSvc := service.NewReconcileService(memes)
	reconcileSvc.Observe = handler.ObserveReconcile

	// Background workers
	promptWorker := service.NewPromptWorker(promptSvc, cfg.PromptWorkerInterval)
	go promptWorker.Start(ctx)
	defer promptWorker.Stop()

	counterWorker := service.NewCounterWorker(pool, reconcileSvc, cache, cfg.CounterBatchWindow)
	go counterWorker.Start(ctx)

	if cfg.RabbitMQURL != "" {
		consumer := messaging.NewPurchaseConsumer(cfg.RabbitMQURL, cfg.PurchaseQueue, purchaseSvc)
		consumer.OnOutcome = handler.RecordQueuedPurchase
		go consumer.Start(ctx)
	}

	app := fiber.New(fiber.Config{
		AppName:      "mtop API",
		ServerHeader: "mtop",
		BodyLimit:    cfg.MaxImageBytes + 1<<20,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	router.Setup(app, &router.Handlers{
		Account:  handler.NewAccountHandler(accountSvc, issuer),
		Prompt:   handler.NewPromptHandler(promptSvc),
		Meme:     handler.NewMemeHandler(memeSvc, cfg.MaxImageBytes),
		Vote:     handler.NewVoteHandler(voteSvc),
		Share:    handler.NewShareHandler(shareSvc),
		Comment:  handler.NewCommentHandler(commentSvc),
		Purchase: handler.NewPurchaseHandler(purchaseSvc),
		Sync:     handler.NewSyncHandler(syncSvc),
		Health:   handler.NewHealthHandler(pool, cache.Client()),
	}, issuer, cfg.CORSOrigins)

	if localStorage {
		app.Get("/uploads/*", static.New(cfg.StorageDir))
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("mtop backend starting")
	if err := app.Listen(":"+cfg.Port, fiber.ListenConfig{DisableStartupMessage: cfg.IsProduction()}); err != nil {
		log.Error().Err(err).Msg("server stopped")
	}
}
