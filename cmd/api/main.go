package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/phonebook/internal/api/http"
	"github.com/spec-kit/phonebook/internal/api/http/handlers"
	"github.com/spec-kit/phonebook/internal/auth"
	"github.com/spec-kit/phonebook/internal/config"
	"github.com/spec-kit/phonebook/internal/events"
	"github.com/spec-kit/phonebook/internal/observability"
	"github.com/spec-kit/phonebook/internal/persistence"
	"github.com/spec-kit/phonebook/internal/repository"
	"github.com/spec-kit/phonebook/internal/service"
	"github.com/spec-kit/phonebook/internal/worker"
)

type stores struct {
	identities repository.IdentityRepository
	contacts   repository.ContactRepository
	addresses  repository.AddressRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg != nil && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	st := buildStores(pg)
	st.addresses = repository.NewCachedAddressRepository(st.addresses, redis.ClientHandle(), cfg.Cache.AddressTTL(), logger)

	signingKey, err := auth.NewSigningKey(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
	if err != nil {
		logger.Fatal("invalid signing key", zap.Error(err))
	}
	tokens := auth.NewTokenCodec(signingKey)

	authService, err := service.NewAuthService(st.identities, tokens, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to init auth service", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger, cfg.Audit))

	contactService := service.NewContactService(service.ContactDependencies{
		ContactRepo: st.contacts,
		AddressRepo: st.addresses,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	addressService := service.NewAddressService(st.addresses)

	metrics := observability.NewMetrics()
	app := httptransport.NewServer(httptransport.ServerConfig{
		AppName:        cfg.App.Name,
		RequestTimeout: cfg.App.RequestTimeout(),
		Logger:         logger,
		Metrics:        metrics,
	}, httptransport.RouteConfig{
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:          handlers.NewAuthHandler(authService),
		Contacts:      handlers.NewContactsHandler(contactService),
		Addresses:     handlers.NewAddressesHandler(addressService),
		Authenticator: auth.NewAuthenticator(authService.Tokens(), authService.Resolver(), logger),
		Title:         cfg.App.Name,
		Version:       cfg.App.Version,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func buildStores(pg *persistence.Postgres) stores {
	if pg == nil {
		contacts := repository.NewMemoryContactRepository()
		return stores{
			identities: repository.NewMemoryIdentityRepository(),
			contacts:   contacts,
			addresses:  repository.NewMemoryAddressRepository(contacts),
		}
	}
	return stores{
		identities: repository.NewIdentityRepository(pg.Pool),
		contacts:   repository.NewContactRepository(pg.Pool),
		addresses:  repository.NewAddressRepository(pg.Pool),
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
