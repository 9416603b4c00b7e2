package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"bakery/internal/cart"
	"bakery/internal/config"
	"bakery/internal/handler"
	"bakery/internal/infra/broker"
	"bakery/internal/infra/catalog"
	"bakery/internal/infra/db"
	"bakery/internal/infra/kv"
	infraRepo "bakery/internal/infra/repository"
	"bakery/internal/logger"
	repo "bakery/internal/repository"
	"bakery/internal/server"
	"bakery/internal/tracing"
	"bakery/internal/usecase"
	"bakery/internal/validator"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	// .env is optional; real deployments use the environment
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}

	log := logger.New(cfg.LogLevel)
	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("bakery api stopped")
	}
}

func run(cfg config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.WithError(err).Warn("tracer shutdown")
		}
	}()

	//カタログ
	var (
		products   repo.ProductRepository
		categories repo.CategoryRepository
		gormDB     *gorm.DB
	)
	switch cfg.CatalogSource {
	case config.CatalogPostgres:
		gormDB, err = db.Connect(cfg.DatabaseDSN, cfg.IsDev())
		if err != nil {
			return err
		}
		if err := db.Migrate(gormDB); err != nil {
			return err
		}
		if cfg.CatalogSeed {
			seeded, err := db.SeedCatalog(ctx, gormDB, catalog.SeedCategories(), catalog.SeedProducts())
			if err != nil {
				return err
			}
			if seeded {
				log.Info("catalog seeded with the default menu")
			}
		}
		products = infraRepo.NewProductGormRepository(gormDB)
		categories = infraRepo.NewCategoryGormRepository(gormDB)
	default:
		menu := catalog.NewMemoryCatalog(catalog.SeedProducts(), catalog.SeedCategories())
		products, categories = menu, menu
		log.Warn("no database configured: serving the built-in menu, orders and profile disabled")
	}

	//カート保存先
	storage, closeStorage, err := openCartStorage(ctx, cfg, logger.Component(log, "cart-storage"))
	if err != nil {
		return err
	}
	defer closeStorage()

	// outlives the signal context so in-flight requests can settle during shutdown
	carts := cart.NewRegistry(context.Background(), products, storage, cart.Config{
		Key:           cfg.CartKey,
		LookupTimeout: cfg.CartLookupTimeout,
		Concurrency:   cfg.CartPricingConcurrency,
		IdleTTL:       cfg.CartIdleTTL,
	}, logger.Component(log, "cart"))
	defer carts.Close()

	//Handler生成
	h := server.Handlers{
		Products:   handler.NewProductHandler(usecase.NewProductUsecase(products)),
		Categories: handler.NewCategoryHandler(usecase.NewCategoryUsecase(categories)),
		Cart:       handler.NewCartHandler(usecase.NewCartUsecase(carts, products, 0)),
	}

	if gormDB != nil {
		events, closeEvents, err := openPublisher(cfg, log)
		if err != nil {
			return err
		}
		defer closeEvents()

		h.Orders = handler.NewOrderHandler(usecase.NewOrderUsecase(
			infraRepo.NewTxManagerGorm(gormDB),
			products,
			carts,
			validator.NewCheckoutValidator(),
			events,
			logger.Component(log, "orders"),
		))
		h.Profile = handler.NewProfileHandler(usecase.NewProfileUsecase(infraRepo.NewProfileGormRepository(gormDB)))
	}

	//Server起動
	e := server.New(cfg, logger.Component(log, "http"))
	server.RegisterRoutes(e, cfg, h)

	log.WithField("port", cfg.Port).Info("bakery api listening")
	return server.Start(ctx, e, ":"+cfg.Port)
}

func openCartStorage(ctx context.Context, cfg config.Config, log *logrus.Entry) (repo.CartStorage, func(), error) {
	switch cfg.CartStorage {
	case config.StorageRedis:
		rs := kv.NewRedisStorage(cfg.RedisAddr, cfg.CartTTL, log)
		if err := rs.Initialize(ctx, 5); err != nil {
			return nil, nil, err
		}
		return rs, func() { _ = rs.Close() }, nil
	case config.StorageFile:
		fs, err := kv.NewFileStorage(cfg.CartStorageDir)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	default:
		return kv.NewMemoryStorage(), func() {}, nil
	}
}

func openPublisher(cfg config.Config, log *logrus.Logger) (repo.OrderEventPublisher, func(), error) {
	if cfg.RabbitMQURI == "" {
		return broker.NoopPublisher{Log: logger.Component(log, "events")}, func() {}, nil
	}
	p, err := broker.DialAMQP(cfg.RabbitMQURI, cfg.OrderEventsQueue)
	if err != nil {
		return nil, nil, err
	}
	return p, func() { _ = p.Close() }, nil
}
