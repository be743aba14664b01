package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gigmatch/config"
	"gigmatch/internal/database"
	"gigmatch/internal/events"
	"gigmatch/internal/geo"
	"gigmatch/internal/services"
	"gigmatch/internal/storage"
	"gigmatch/internal/storage/memory"
	"gigmatch/internal/storage/postgres"
	"gigmatch/internal/telemetry"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Application holds core application dependencies.
type Application struct {
	Config    *config.Config
	Store     storage.Store
	Index     geo.Index
	Events    events.Publisher
	Validator *validator.Validate

	Users        services.UserService
	Jobs         services.JobService
	Applications services.ApplicationService
	Ledger       services.LedgerService
	Reviews      services.ReviewService
	Matching     services.MatchingService

	redis         *redis.Client
	traceShutdown func(context.Context) error
}

// New connects the backends named by cfg and builds the services on top of them.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	settings, err := Settings(cfg)
	if err != nil {
		return nil, err
	}

	a := &Application{Config: cfg}
	if a.traceShutdown, err = telemetry.Setup(ctx, cfg.Tracing); err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}
	if err := a.connect(ctx); err != nil {
		a.Close()
		return nil, err
	}
	a.wire(settings)
	return a, nil
}

// NewWithBackends builds the services over already constructed backends.
func NewWithBackends(cfg *config.Config, store storage.Store, index geo.Index, pub events.Publisher) (*Application, error) {
	settings, err := Settings(cfg)
	if err != nil {
		return nil, err
	}
	a := &Application{Config: cfg, Store: store, Index: index, Events: pub}
	a.wire(settings)
	return a, nil
}

// Settings derives the service tunables from configuration.
func Settings(cfg *config.Config) (services.Settings, error) {
	rate, err := decimal.NewFromString(cfg.Ledger.FeeRate)
	if err != nil {
		return services.Settings{}, fmt.Errorf("ledger.fee_rate: %w", err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return services.Settings{}, fmt.Errorf("ledger.fee_rate must be in [0, 1), got %s", rate)
	}
	s := services.DefaultSettings()
	s.FeeRate = rate
	s.MinWithdrawal = cfg.Ledger.MinWithdrawal
	s.DefaultRadiusKm = cfg.Geo.DefaultRadiusKm
	return s, nil
}

func (a *Application) connect(ctx context.Context) error {
	cfg := a.Config

	switch cfg.Storage.Driver {
	case "memory":
		a.Store = memory.New()
		zap.L().Warn("using in-memory storage; data is lost on restart")
	default:
		pool, err := database.NewConnectionPool(ctx, cfg.DB)
		if err != nil {
			return err
		}
		a.Store = postgres.NewStore(pool)
	}

	switch cfg.Geo.Backend {
	case "redis":
		rdb, err := database.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		a.redis = rdb
		a.Index = geo.NewRedisIndex(rdb, cfg.Geo.KeyPrefix)
	default:
		a.Index = geo.NewMemoryIndex()
	}

	if len(cfg.Kafka.Brokers) > 0 {
		a.Events = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		zap.L().Info("publishing events to kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	} else {
		a.Events = events.NewLogPublisher(zap.L())
	}
	return nil
}

func (a *Application) wire(settings services.Settings) {
	a.Validator = validator.New()
	a.Users = services.NewUserService(a.Store, a.Index, settings)
	a.Jobs = services.NewJobService(a.Store, a.Index, a.Events, settings)
	a.Applications = services.NewApplicationService(a.Store, a.Index, a.Events, settings)
	a.Ledger = services.NewLedgerService(a.Store, a.Events, settings)
	a.Reviews = services.NewReviewService(a.Store, settings)
	a.Matching = services.NewMatchingService(a.Store, a.Index, settings)
}

// Close releases the backends. It is safe on a partially built Application.
func (a *Application) Close() error {
	var errs []error
	if a.Events != nil {
		errs = append(errs, a.Events.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.Store != nil {
		a.Store.Close()
	}
	if a.traceShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		errs = append(errs, a.traceShutdown(ctx))
	}
	return errors.Join(errs...)
}
