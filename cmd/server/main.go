package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpAdapter "github.com/snap2code/creditledger/internal/adapter/http"
	"github.com/snap2code/creditledger/internal/adapter/http/handler"
	postgresRepo "github.com/snap2code/creditledger/internal/adapter/repository/postgres"
	redisRepo "github.com/snap2code/creditledger/internal/adapter/repository/redis"
	"github.com/snap2code/creditledger/internal/infrastructure/auth"
	"github.com/snap2code/creditledger/internal/infrastructure/config"
	"github.com/snap2code/creditledger/internal/infrastructure/converter"
	"github.com/snap2code/creditledger/internal/infrastructure/logger"
	"github.com/snap2code/creditledger/internal/infrastructure/metrics"
	"github.com/snap2code/creditledger/internal/infrastructure/notify"
	"github.com/snap2code/creditledger/internal/infrastructure/payment"
	"github.com/snap2code/creditledger/internal/infrastructure/postgres"
	"github.com/snap2code/creditledger/internal/infrastructure/redis"
	"github.com/snap2code/creditledger/internal/usecase"
	"github.com/snap2code/creditledger/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if cfg.MigrationsPath != "" {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	orderRepo := postgresRepo.NewOrderRepository(pool)
	promoRepo := postgresRepo.NewPromoRepository(pool)
	conversionRepo := postgresRepo.NewConversionRepository(pool)
	packageRepo := redisRepo.NewCachedPackageRepository(
		postgresRepo.NewPackageRepository(pool),
		redisRepo.NewCache(redisClient),
	)
	eventStore := redisRepo.NewEventStore(redisClient)
	retrier := postgresRepo.NewRetrier(log)
	idGen := postgresRepo.NewULIDGenerator()

	// External services
	paymentClient := payment.NewClient(payment.ClientConfig{
		APIKey:     cfg.PaymentAPIKey,
		BaseURL:    cfg.PaymentAPIBaseURL,
		SuccessURL: cfg.CheckoutSuccessURL,
		CancelURL:  cfg.CheckoutCancelURL,
	})
	verifier := payment.NewVerifier(cfg.PaymentWebhookSecret)
	notifier := notify.NewLogNotifier(log)
	converterClient := converter.NewClient(cfg.ConverterURL)

	// Use cases
	accountUC := usecase.NewAccountUseCase(accountRepo, idGen, log)
	creditUC := usecase.NewCreditUseCase(txManager, accountRepo, entryRepo, idGen, notifier, m, log)
	orderUC := usecase.NewOrderUseCase(txManager, orderRepo, packageRepo, accountRepo, creditUC, paymentClient, idGen, m, log)
	webhookUC := usecase.NewWebhookUseCase(orderUC, eventStore, retrier, m, log)
	promoUC := usecase.NewPromoUseCase(txManager, promoRepo, creditUC, idGen, m, log)
	conversionUC := usecase.NewConversionUseCase(txManager, conversionRepo, creditUC, idGen, m, log)
	reconciliationUC := usecase.NewReconciliationUseCase(accountRepo, entryRepo)

	// Background conversion worker
	conversionWorker := worker.NewConversionWorker(worker.Config{
		Converter:   converterClient,
		Processor:   conversionUC,
		QueueSize:   cfg.ConverterQueueSize,
		MaxRetries:  cfg.ConverterMaxRetries,
		CallTimeout: cfg.ConverterTimeout,
		Metrics:     m,
		Logger:      log,
	})
	go func() {
		if err := conversionWorker.Start(ctx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("conversion worker stopped")
		}
	}()

	// Admin JWT is optional; without a secret the admin routes stay open,
	// which is only acceptable behind a trusted proxy.
	var jwtManager *auth.JWTManager
	if cfg.AdminJWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.AdminJWTSecret, cfg.AdminJWTExpiration)
	} else {
		log.Warn().Msg("ADMIN_JWT_SECRET is not set; admin routes are unauthenticated")
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:    handler.NewAccountHandler(accountUC, creditUC),
		CreditHandler:     handler.NewCreditHandler(creditUC, reconciliationUC),
		CheckoutHandler:   handler.NewCheckoutHandler(orderUC),
		PromoHandler:      handler.NewPromoHandler(promoUC),
		ConversionHandler: handler.NewConversionHandler(conversionUC, conversionWorker),
		WebhookHandler:    handler.NewWebhookHandler(webhookUC, verifier, log),
		HealthHandler:     handler.NewHealthHandler(pool, redisClient),
		JWTManager:        jwtManager,
		Logger:            log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
