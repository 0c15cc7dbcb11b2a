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

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"staybook/internal/app/commands"
	bookingapp "staybook/internal/app/handlers/booking"
	"staybook/internal/app/handlers/expiry"
	listingapp "staybook/internal/app/handlers/listings"
	meapp "staybook/internal/app/handlers/me"
	paymentapp "staybook/internal/app/handlers/payment"
	"staybook/internal/app/middleware"
	appoutbox "staybook/internal/app/outbox"
	"staybook/internal/app/queries"
	authsvc "staybook/internal/app/services/auth"
	"staybook/internal/app/uow"
	domainauth "staybook/internal/domain/auth"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/broker/kafka"
	"staybook/internal/infra/config"
	mongodb "staybook/internal/infra/db/mongo"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/obs"
	outboxinfra "staybook/internal/infra/outbox"
	"staybook/internal/infra/schedule"
	"staybook/internal/infra/security"
	"staybook/internal/infra/storage/memory"
	"staybook/internal/infra/storage/s3"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	deps, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("storage init failed", "error", err)
		os.Exit(1)
	}

	uploader := buildUploader(cfg, logger)
	app := buildApplication(cfg, deps, uploader, logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: deps.ready}, app)

	if deps.outboxStore != nil && len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			logger.Error("kafka producer init failed", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		worker := &outboxinfra.Worker{
			Store:       deps.outboxStore,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Source:      "app://staybook",
			ID:          uuid.NewString(),
			Backoff:     cfg.RetryBackoff,
			Logger:      logger,
		}
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	sweeper := &expiry.Sweeper{
		UoWFactory: deps.uowFactory,
		Outbox:     deps.outbox,
		Logger:     logger,
	}
	scheduler := schedule.NewScheduler(ctx, logger)
	if err := scheduler.AddJob(cfg.ExpirySweepSpec, "booking-expiry", sweeper.Run); err != nil {
		logger.Error("cannot schedule booking expiry sweep", "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

// storageDeps groups everything the chosen storage mode provides.
type storageDeps struct {
	uowFactory  uow.UoWFactory
	users       domainuser.Repository
	sessions    domainauth.SessionStore
	outbox      appoutbox.Outbox
	outboxStore *outboxinfra.Store
	idempotency middleware.IdempotencyStore
	ready       func() error
}

func buildStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (storageDeps, error) {
	if cfg.StorageMode == "memory" {
		users := memory.NewUserRepository()
		factory := memory.Factory{
			ListingRepo:    memory.NewListingRepository(),
			BookingRepo:    memory.NewBookingRepository(),
			AccountingRepo: memory.NewAccountingRepository(),
			UserRepo:       users,
		}
		return storageDeps{
			uowFactory:  factory,
			users:       users,
			sessions:    memory.NewSessionStore(),
			outbox:      memory.NewOutbox(),
			idempotency: memory.NewIdempotencyStore(),
			ready:       func() error { return nil },
		}, nil
	}

	client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return storageDeps{}, err
	}
	logger.Info("mongo connected", "database", cfg.MongoDB)
	db := client.DB
	users := mongodb.NewUserRepository(db)
	factory := mongodb.Factory{
		DB:             db,
		ListingRepo:    mongodb.NewListingRepository(db),
		BookingRepo:    mongodb.NewBookingRepository(db),
		AccountingRepo: mongodb.NewAccountingRepository(db),
		UserRepo:       users,
	}
	store := outboxinfra.NewStore(db)
	return storageDeps{
		uowFactory:  factory,
		users:       users,
		sessions:    mongodb.NewSessionStore(db),
		outbox:      store,
		outboxStore: store,
		idempotency: mongodb.NewIdempotencyStore(db, cfg.IdempotencyTTL),
		ready: func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		},
	}, nil
}

func buildUploader(cfg config.Config, logger *slog.Logger) s3.Uploader {
	client, err := s3.NewClient(s3.Options{
		Endpoint:       cfg.S3Endpoint,
		PublicEndpoint: cfg.S3PublicEndpoint,
		AccessKey:      cfg.S3AccessKey,
		SecretKey:      cfg.S3SecretKey,
		Bucket:         cfg.S3Bucket,
		UseSSL:         cfg.S3UseSSL,
		Logger:         logger,
	})
	if err != nil {
		logger.Warn("object storage unavailable, photo uploads disabled", "error", err)
		return s3.NoopUploader{}
	}
	return client
}

func buildApplication(cfg config.Config, deps storageDeps, uploader s3.Uploader, logger *slog.Logger) ginserver.Handlers {
	authService := &authsvc.Service{
		Users:      deps.users,
		Sessions:   deps.sessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.CreateBookingCommand{}.Key(), &bookingapp.CreateBookingHandler{
		UoWFactory: deps.uowFactory,
		Outbox:     deps.outbox,
	})
	commands.RegisterHandler(commandBus, bookingapp.DeleteBookingCommand{}.Key(), &bookingapp.DeleteBookingHandler{
		UoWFactory: deps.uowFactory,
		Outbox:     deps.outbox,
	})
	commands.RegisterHandler(commandBus, paymentapp.ConfirmPaymentCommand{}.Key(), &paymentapp.ConfirmPaymentHandler{
		UoWFactory: deps.uowFactory,
		Outbox:     deps.outbox,
	})
	commands.RegisterHandler(commandBus, paymentapp.UnpayCommand{}.Key(), &paymentapp.UnpayHandler{
		UoWFactory: deps.uowFactory,
		Outbox:     deps.outbox,
	})
	commands.RegisterHandler(commandBus, listingapp.CreateListingCommand{}.Key(), &listingapp.CreateListingHandler{
		UoWFactory: deps.uowFactory,
		Outbox:     deps.outbox,
	})
	commands.RegisterHandler(commandBus, listingapp.UploadPhotoCommand{}.Key(), &listingapp.UploadPhotoHandler{
		Logger:   logger,
		Uploader: uploader,
		Outbox:   deps.outbox,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, listingapp.SearchQuery{}.Key(), &listingapp.SearchHandler{UoWFactory: deps.uowFactory})
	queries.RegisterHandler(queryBus, listingapp.BookingFormQuery{}.Key(), &listingapp.BookingFormHandler{UoWFactory: deps.uowFactory})
	queries.RegisterHandler(queryBus, paymentapp.BreakdownQuery{}.Key(), &paymentapp.BreakdownHandler{UoWFactory: deps.uowFactory})
	queries.RegisterHandler(queryBus, paymentapp.MyPaymentsQuery{}.Key(), &paymentapp.MyPaymentsHandler{UoWFactory: deps.uowFactory})
	queries.RegisterHandler(queryBus, meapp.MyBookingsQuery{}.Key(), &meapp.MyBookingsHandler{UoWFactory: deps.uowFactory})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(deps.idempotency, nil),
		middleware.Transaction(deps.uowFactory, nil),
		middleware.OutboxFlush(deps.outbox),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	authMiddleware := ginserver.AuthMiddleware{Service: authService, Logger: logger}

	return ginserver.Handlers{
		Auth:           ginserver.AuthHandler{Service: authService, Logger: logger},
		Listing:        ginserver.ListingHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware, Logger: logger},
		Booking:        ginserver.BookingHandler{Commands: commandBusWithMiddleware, Logger: logger},
		Payment:        ginserver.PaymentHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware, Logger: logger},
		Me:             ginserver.MeHandler{Queries: queryBusWithMiddleware, Logger: logger},
		AuthMiddleware: authMiddleware.Handle,
	}
}
